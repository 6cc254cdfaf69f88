package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// Metadata keys consulted when building audit request metadata.
const (
	ForwardedForHeaderName = "x-forwarded-for"
	UserAgentHeaderName    = "user-agent"
)

// Audit action tags.
const (
	ActionAuthLogin             = "AUTH_LOGIN"
	ActionAuthRefresh           = "AUTH_REFRESH"
	ActionAuthLogout            = "AUTH_LOGOUT"
	ActionVaultCreate           = "VAULT_CREATE"
	ActionVaultUpdate           = "VAULT_UPDATE"
	ActionVaultDelete           = "VAULT_DELETE"
	ActionVaultReveal           = "VAULT_REVEAL"
	ActionSecurityProfileSetup  = "SECURITY_PROFILE_SETUP"
	ActionSecurityProfileVerify = "SECURITY_PROFILE_VERIFY"
)
