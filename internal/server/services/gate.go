package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/cryptox"
	"github.com/dmitrijs2005/secretvault/internal/logging"
	"github.com/dmitrijs2005/secretvault/internal/server/audit"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/ratelimit"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/repomanager"
)

type RevealRequest struct {
	UserID   string
	EntryID  string
	Answers  *Answers
	Password string
	Meta     models.RequestMeta
}

// DisclosureGate authorizes a single decrypt of one entry. Checks run in a
// fixed order: rate limit, entry ownership, security profile (when the user
// has it enabled), then the password-derived key.
type DisclosureGate struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limiter     ratelimit.Limiter
	engine      *cryptox.Engine
	profiles    *SecurityProfileService
	audit       audit.Recorder
	logger      logging.Logger
	now         func() time.Time
}

func NewDisclosureGate(db *sql.DB, m repomanager.RepositoryManager, limiter ratelimit.Limiter, engine *cryptox.Engine,
	profiles *SecurityProfileService, rec audit.Recorder, logger logging.Logger) *DisclosureGate {
	return &DisclosureGate{
		db:          db,
		repomanager: m,
		limiter:     limiter,
		engine:      engine,
		profiles:    profiles,
		audit:       rec,
		logger:      logger.With("module", "disclosure-gate"),
		now:         time.Now,
	}
}

// Reveal returns the plaintext secret. Every outcome is audited. The
// plaintext is neither cached nor logged.
func (g *DisclosureGate) Reveal(ctx context.Context, req RevealRequest) (secret string, err error) {
	defer func() {
		g.audit.Record(ctx, audit.Event{
			ActorID:  req.UserID,
			Action:   common.ActionVaultReveal,
			TargetID: req.EntryID,
			Success:  err == nil,
			Meta:     req.Meta,
		})
	}()

	if req.UserID == "" {
		return "", common.ErrInvalidInput
	}

	// Every attempt counts, malformed ones included.
	decision, err := g.limiter.Allow(ctx, req.UserID, g.now())
	if err != nil {
		return "", internalError(ctx, g.logger, "rate limiter failed", err)
	}
	if !decision.Allowed {
		g.logger.Info(ctx, "reveal denied", "reason", "rate limited", "user_id", req.UserID,
			"retry_after", decision.RetryAfter(g.now()).String())
		return "", common.ErrRateLimited
	}

	if req.EntryID == "" || req.Password == "" {
		return "", common.ErrInvalidInput
	}

	entry, err := g.repomanager.Entries(g.db).FindByID(ctx, req.EntryID, req.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", internalError(ctx, g.logger, "entry lookup failed", err)
	}

	required, err := g.challengeRequired(ctx, req.UserID)
	if err != nil {
		return "", err
	}
	if required {
		var answers Answers
		if req.Answers != nil {
			answers = *req.Answers
		}
		if err := g.profiles.check(ctx, req.UserID, answers); err != nil {
			g.logger.Info(ctx, "reveal denied", "reason", "challenge", "user_id", req.UserID)
			return "", err
		}
	}

	plaintext, err := g.open(req.UserID, req.Password, entry.Envelope)
	if err != nil {
		g.logger.Info(ctx, "reveal denied", "reason", "decrypt", "user_id", req.UserID)
		return "", common.ErrInvalidCredentials
	}
	secret = string(plaintext)
	common.WipeByteArray(plaintext)
	return secret, nil
}

// challengeRequired treats an unknown user as having the profile enabled.
func (g *DisclosureGate) challengeRequired(ctx context.Context, userID string) (bool, error) {
	u, err := g.repomanager.Users(g.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return true, nil
		}
		return false, internalError(ctx, g.logger, "user lookup failed", err)
	}
	return u.SecurityProfileEnabled, nil
}

func (g *DisclosureGate) open(userID, password string, env models.Envelope) ([]byte, error) {
	if env.Algorithm != cryptox.AlgorithmAES256GCM {
		return nil, cryptox.ErrAuthenticationFailure
	}
	key := g.engine.DeriveKey([]byte(password), userID)
	defer common.WipeByteArray(key)
	return g.engine.Decrypt(env.Ciphertext, key, env.Nonce, env.Tag)
}
