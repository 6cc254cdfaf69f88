package grpc

import (
	"context"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errNoUserInContext = status.Error(codes.Internal, "internal error")

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {

	tokens, err := s.users.Login(ctx, req.Email, req.Password, req.TOTPCode, requestMeta(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	return &TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *RefreshRequest) (*TokenResponse, error) {

	tokens, err := s.users.Refresh(ctx, req.RefreshToken, requestMeta(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	return &TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *LogoutRequest) (*Empty, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	accessToken := firstMetadataValue(ctx, common.AccessTokenHeaderName)
	if err := s.users.Logout(ctx, userID, accessToken, req.RefreshToken, requestMeta(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *Empty) (*MeResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	u, err := s.users.Me(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &MeResponse{UserID: u.ID, Email: u.Email}, nil
}

func (s *GRPCServer) CreateEntry(ctx context.Context, req *CreateEntryRequest) (*Entry, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	e, err := s.vault.Create(ctx, userID, services.CreateEntryInput{
		PlatformName:      req.PlatformName,
		AccountIdentifier: req.AccountIdentifier,
		Description:       req.Description,
		Secret:            req.Secret,
		Password:          req.Password,
	}, requestMeta(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return entryToMessage(e), nil
}

func (s *GRPCServer) ListEntries(ctx context.Context, _ *Empty) (*ListEntriesResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	list, err := s.vault.List(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &ListEntriesResponse{Entries: make([]*Entry, 0, len(list))}
	for _, e := range list {
		resp.Entries = append(resp.Entries, entryToMessage(e))
	}
	return resp, nil
}

func (s *GRPCServer) UpdateEntry(ctx context.Context, req *UpdateEntryRequest) (*Entry, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	e, err := s.vault.Update(ctx, userID, req.ID, services.UpdateEntryInput{
		PlatformName:      req.PlatformName,
		AccountIdentifier: req.AccountIdentifier,
		Description:       req.Description,
		Secret:            req.Secret,
		Password:          req.Password,
	}, requestMeta(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return entryToMessage(e), nil
}

func (s *GRPCServer) DeleteEntry(ctx context.Context, req *DeleteEntryRequest) (*Empty, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	if err := s.vault.Delete(ctx, userID, req.ID, requestMeta(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) RevealEntry(ctx context.Context, req *RevealEntryRequest) (*RevealEntryResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	// A malformed answer list still goes through the gate so the attempt is
	// rate limited and audited; blank answers never pass the challenge.
	var answers *services.Answers
	if req.Answers != nil {
		a, err := answersFromMessage(req.Answers)
		if err != nil {
			a = services.Answers{}
		}
		answers = &a
	}

	secret, err := s.vault.Reveal(ctx, services.RevealRequest{
		UserID:   userID,
		EntryID:  req.ID,
		Answers:  answers,
		Password: req.Password,
		Meta:     requestMeta(ctx),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &RevealEntryResponse{Secret: secret}, nil
}

func (s *GRPCServer) SecurityProfileStatus(ctx context.Context, _ *Empty) (*SecurityProfileStatusResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	configured, err := s.profiles.Status(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SecurityProfileStatusResponse{Configured: configured}, nil
}

func (s *GRPCServer) SetupSecurityProfile(ctx context.Context, req *SecurityProfileAnswersRequest) (*Empty, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	answers, err := answersFromMessage(req.Answers)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.profiles.Setup(ctx, userID, answers, requestMeta(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) VerifySecurityProfile(ctx context.Context, req *SecurityProfileAnswersRequest) (*Empty, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, errNoUserInContext
	}

	answers, err := answersFromMessage(req.Answers)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.profiles.Verify(ctx, userID, answers, requestMeta(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func answersFromMessage(in []string) (services.Answers, error) {
	if len(in) != len(services.Answers{}) {
		return services.Answers{}, common.ErrInvalidInput
	}
	return services.Answers{in[0], in[1], in[2]}, nil
}

func entryToMessage(e *models.PublicEntry) *Entry {
	return &Entry{
		ID:                e.ID,
		PlatformName:      e.PlatformName,
		AccountIdentifier: e.AccountIdentifier,
		Description:       e.Description,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
