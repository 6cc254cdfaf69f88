// Package auth issues, verifies and revokes HS256-signed access and refresh
// tokens. Every verification failure surfaces as common.ErrInvalidToken;
// the precise reason is only logged.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/logging"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/revocation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      revocation.Store
	logger     logging.Logger
	now        func() time.Time

	// refreshMu makes verify-then-revoke of a refresh token a single step
	// within this process.
	refreshMu sync.Mutex
}

func NewTokenManager(secret []byte, accessTTL, refreshTTL time.Duration, store revocation.Store, logger logging.Logger) *TokenManager {
	return &TokenManager{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		logger:     logger.With("module", "auth"),
		now:        time.Now,
	}
}

func (m *TokenManager) IssueAccessToken(user *models.User) (string, error) {
	return m.issue(user, TokenTypeAccess, m.accessTTL)
}

func (m *TokenManager) IssueRefreshToken(user *models.User) (string, error) {
	return m.issue(user, TokenTypeRefresh, m.refreshTTL)
}

func (m *TokenManager) IssuePair(user *models.User) (*TokenPair, error) {
	access, err := m.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := m.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) issue(user *models.User, typ TokenType, ttl time.Duration) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: user.Email,
		Type:  typ,
	})

	s, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify checks signature, expiry and type, then consults the revocation
// store. A store failure rejects the token.
func (m *TokenManager) Verify(ctx context.Context, tokenString string, expected TokenType) (*Payload, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		reason := "malformed"
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			reason = "expired"
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			reason = "bad signature"
		}
		m.logger.Debug(ctx, "token rejected", "reason", reason)
		return nil, common.ErrInvalidToken
	}

	if claims.Type != expected {
		m.logger.Debug(ctx, "token rejected", "reason", "wrong type", "type", string(claims.Type))
		return nil, common.ErrInvalidToken
	}
	if claims.ID == "" || claims.Subject == "" {
		m.logger.Debug(ctx, "token rejected", "reason", "missing claims")
		return nil, common.ErrInvalidToken
	}

	revoked, err := m.store.Exists(ctx, claims.ID)
	if err != nil {
		m.logger.Error(ctx, "revocation lookup failed", "error", err)
		return nil, common.ErrInvalidToken
	}
	if revoked {
		m.logger.Debug(ctx, "token rejected", "reason", "revoked", "jti", claims.ID)
		return nil, common.ErrInvalidToken
	}

	return claims.payload(), nil
}

// Revoke records the token id until the token's own expiry. Payloads
// without an id or expiry have nothing to track.
func (m *TokenManager) Revoke(ctx context.Context, p *Payload) error {
	if p == nil || p.ID == "" || p.ExpiresAt.IsZero() {
		return nil
	}
	if err := m.store.Upsert(ctx, p.ID, p.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new pair and revokes the
// presented token, so each refresh token works once.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *Payload, error) {
	m.refreshMu.Lock()
	p, err := m.Verify(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		m.refreshMu.Unlock()
		return nil, nil, err
	}
	err = m.Revoke(ctx, p)
	m.refreshMu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	pair, err := m.IssuePair(&models.User{ID: p.Subject, Email: p.Email})
	if err != nil {
		return nil, nil, err
	}
	return pair, p, nil
}

// Logout revokes whichever of the two tokens is present, still valid and
// issued to userID. Anything else is skipped.
func (m *TokenManager) Logout(ctx context.Context, userID, accessToken, refreshToken string) error {
	for _, t := range []struct {
		token string
		typ   TokenType
	}{
		{accessToken, TokenTypeAccess},
		{refreshToken, TokenTypeRefresh},
	} {
		if t.token == "" {
			continue
		}
		p, err := m.Verify(ctx, t.token, t.typ)
		if err != nil {
			continue
		}
		if p.Subject != userID {
			m.logger.Warn(ctx, "logout skipped foreign token", "user_id", userID, "type", string(t.typ))
			continue
		}
		if err := m.Revoke(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
