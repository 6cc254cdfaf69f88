package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/cryptox"
	"github.com/dmitrijs2005/secretvault/internal/logging"
	"github.com/dmitrijs2005/secretvault/internal/server/audit"
	"github.com/dmitrijs2005/secretvault/internal/server/auth"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/repomanager"
	"github.com/pquerna/otp/totp"
)

// dummyPasswordHash keeps login timing similar for unknown emails.
var dummyPasswordHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashSecret("secretvault-dummy-password", 10)
	return h
})

// UserService handles login, token refresh, logout and the current-user
// lookup. Users themselves are provisioned elsewhere.
type UserService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	tokens       *auth.TokenManager
	audit        audit.Recorder
	logger       logging.Logger
	validateTOTP func(passcode, secret string) bool
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenManager,
	rec audit.Recorder, logger logging.Logger) *UserService {
	return &UserService{
		db:           db,
		repomanager:  m,
		tokens:       tokens,
		audit:        rec,
		logger:       logger.With("module", "users"),
		validateTOTP: totp.Validate,
	}
}

// Login checks email, password and the TOTP code. All credential failures
// return ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password, totpCode string, meta models.RequestMeta) (pair *auth.TokenPair, err error) {
	var userID string
	defer func() {
		s.audit.Record(ctx, audit.Event{
			ActorID: userID, Action: common.ActionAuthLogin, Success: err == nil, Meta: meta,
		})
	}()

	if email == "" || password == "" || totpCode == "" {
		return nil, common.ErrInvalidInput
	}

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.CompareSecret(dummyPasswordHash(), password)
			return nil, common.ErrorUnauthorized
		}
		return nil, internalError(ctx, s.logger, "user lookup failed", err)
	}
	userID = user.ID

	if !user.IsActive {
		s.logger.Info(ctx, "login denied", "reason", "inactive", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}

	ok, err := cryptox.CompareSecret(user.PasswordHash, password)
	if err != nil {
		return nil, internalError(ctx, s.logger, "password comparison failed", err)
	}
	if !ok {
		s.logger.Info(ctx, "login denied", "reason", "password", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}

	if !s.validateTOTP(totpCode, user.TOTPSecret) {
		s.logger.Info(ctx, "login denied", "reason", "totp", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}

	pair, err = s.tokens.IssuePair(user)
	if err != nil {
		return nil, internalError(ctx, s.logger, "token issue failed", err)
	}
	return pair, nil
}

// Refresh rotates the refresh token. The presented token is revoked even
// when the account has been deactivated meanwhile.
func (s *UserService) Refresh(ctx context.Context, refreshToken string, meta models.RequestMeta) (pair *auth.TokenPair, err error) {
	var userID string
	defer func() {
		s.audit.Record(ctx, audit.Event{
			ActorID: userID, Action: common.ActionAuthRefresh, Success: err == nil, Meta: meta,
		})
	}()

	if refreshToken == "" {
		return nil, common.ErrInvalidInput
	}

	pair, old, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return nil, common.ErrorUnauthorized
		}
		return nil, internalError(ctx, s.logger, "token refresh failed", err)
	}
	userID = old.Subject

	user, err := s.repomanager.Users(s.db).FindByID(ctx, old.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, internalError(ctx, s.logger, "user lookup failed", err)
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}
	return pair, nil
}

// Logout revokes whichever tokens the caller still holds.
func (s *UserService) Logout(ctx context.Context, userID, accessToken, refreshToken string, meta models.RequestMeta) (err error) {
	defer func() {
		s.audit.Record(ctx, audit.Event{
			ActorID: userID, Action: common.ActionAuthLogout, Success: err == nil, Meta: meta,
		})
	}()

	if err := s.tokens.Logout(ctx, userID, accessToken, refreshToken); err != nil {
		return internalError(ctx, s.logger, "logout failed", err)
	}
	return nil
}

// Authenticate verifies an access token for the transport layer.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*auth.Payload, error) {
	p, err := s.tokens.Verify(ctx, accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	return p, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, internalError(ctx, s.logger, "user lookup failed", err)
	}
	return u, nil
}
