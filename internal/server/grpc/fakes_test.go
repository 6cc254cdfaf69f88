package grpc

import (
	"context"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/server/auth"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/services"
)

type fakeUsers struct {
	loginResp *auth.TokenPair
	loginErr  error
	lastMeta  models.RequestMeta

	refreshResp *auth.TokenPair
	refreshErr  error

	logoutErr     error
	loggedOut     []string
	tokens        map[string]string
	me            *models.User
	meErr         error
	lastLoginCode string
}

func (f *fakeUsers) Login(_ context.Context, email, password, totpCode string, meta models.RequestMeta) (*auth.TokenPair, error) {
	f.lastMeta = meta
	f.lastLoginCode = totpCode
	return f.loginResp, f.loginErr
}

func (f *fakeUsers) Refresh(_ context.Context, refreshToken string, meta models.RequestMeta) (*auth.TokenPair, error) {
	f.lastMeta = meta
	return f.refreshResp, f.refreshErr
}

func (f *fakeUsers) Logout(_ context.Context, userID, accessToken, refreshToken string, meta models.RequestMeta) error {
	f.loggedOut = append(f.loggedOut, userID, accessToken, refreshToken)
	return f.logoutErr
}

// Authenticate accepts the tokens listed in f.tokens, mapping token to user id.
func (f *fakeUsers) Authenticate(_ context.Context, accessToken string) (*auth.Payload, error) {
	id, ok := f.tokens[accessToken]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return &auth.Payload{Subject: id, Email: id + "@example.com", Type: auth.TokenTypeAccess}, nil
}

func (f *fakeUsers) Me(_ context.Context, userID string) (*models.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.me != nil {
		return f.me, nil
	}
	return &models.User{ID: userID, Email: userID + "@example.com"}, nil
}

type fakeVault struct {
	created    services.CreateEntryInput
	createResp *models.PublicEntry
	createErr  error

	list    []*models.PublicEntry
	listErr error

	updated    services.UpdateEntryInput
	updateResp *models.PublicEntry
	updateErr  error

	deleted   string
	deleteErr error

	revealReq  services.RevealRequest
	revealResp string
	revealErr  error
}

func (f *fakeVault) Create(_ context.Context, userID string, in services.CreateEntryInput, meta models.RequestMeta) (*models.PublicEntry, error) {
	f.created = in
	return f.createResp, f.createErr
}

func (f *fakeVault) List(_ context.Context, userID string) ([]*models.PublicEntry, error) {
	return f.list, f.listErr
}

func (f *fakeVault) Update(_ context.Context, userID, entryID string, in services.UpdateEntryInput, meta models.RequestMeta) (*models.PublicEntry, error) {
	f.updated = in
	return f.updateResp, f.updateErr
}

func (f *fakeVault) Delete(_ context.Context, userID, entryID string, meta models.RequestMeta) error {
	f.deleted = entryID
	return f.deleteErr
}

func (f *fakeVault) Reveal(_ context.Context, req services.RevealRequest) (string, error) {
	f.revealReq = req
	return f.revealResp, f.revealErr
}

type fakeProfiles struct {
	configured bool
	statusErr  error
	setup      services.Answers
	setupErr   error
	verified   services.Answers
	verifyErr  error
}

func (f *fakeProfiles) Status(context.Context, string) (bool, error) {
	return f.configured, f.statusErr
}

func (f *fakeProfiles) Setup(_ context.Context, _ string, answers services.Answers, _ models.RequestMeta) error {
	f.setup = answers
	return f.setupErr
}

func (f *fakeProfiles) Verify(_ context.Context, _ string, answers services.Answers, _ models.RequestMeta) error {
	f.verified = answers
	return f.verifyErr
}
