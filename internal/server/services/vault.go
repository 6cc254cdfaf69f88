package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/cryptox"
	"github.com/dmitrijs2005/secretvault/internal/dbx"
	"github.com/dmitrijs2005/secretvault/internal/logging"
	"github.com/dmitrijs2005/secretvault/internal/server/audit"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type CreateEntryInput struct {
	PlatformName      string
	AccountIdentifier string
	Description       *string
	Secret            string
	Password          string
}

// UpdateEntryInput changes only the non-nil fields. A nil Description leaves
// it as is, a pointer to "" clears it. A new Secret requires Password.
type UpdateEntryInput struct {
	PlatformName      *string
	AccountIdentifier *string
	Description       *string
	Secret            *string
	Password          string
}

func (in UpdateEntryInput) touchesDisplay() bool {
	return in.PlatformName != nil || in.AccountIdentifier != nil || in.Description != nil
}

type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	engine      *cryptox.Engine
	gate        *DisclosureGate
	audit       audit.Recorder
	logger      logging.Logger
	now         func() time.Time
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, engine *cryptox.Engine, gate *DisclosureGate,
	rec audit.Recorder, logger logging.Logger) *VaultService {
	return &VaultService{
		db:          db,
		repomanager: m,
		engine:      engine,
		gate:        gate,
		audit:       rec,
		logger:      logger.With("module", "vault"),
		now:         time.Now,
	}
}

// Create encrypts the secret under a key derived from the caller's account
// password and stores the new entry.
func (s *VaultService) Create(ctx context.Context, userID string, in CreateEntryInput, meta models.RequestMeta) (out *models.PublicEntry, err error) {
	var entryID string
	defer func() {
		s.audit.Record(ctx, audit.Event{
			ActorID: userID, Action: common.ActionVaultCreate, TargetID: entryID, Success: err == nil, Meta: meta,
		})
	}()

	if in.PlatformName == "" || in.AccountIdentifier == "" || in.Secret == "" || in.Password == "" {
		return nil, common.ErrInvalidInput
	}
	if err := s.checkPassword(ctx, userID, in.Password); err != nil {
		return nil, err
	}

	env, err := s.seal(userID, in.Password, in.Secret)
	if err != nil {
		return nil, internalError(ctx, s.logger, "encrypt failed", err)
	}

	now := s.now()
	entry := &models.VaultEntry{
		ID:                uuid.NewString(),
		UserID:            userID,
		PlatformName:      in.PlatformName,
		AccountIdentifier: in.AccountIdentifier,
		Description:       descriptionPtr(in.Description),
		Envelope:          env,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repomanager.Entries(s.db).Create(ctx, entry); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, internalError(ctx, s.logger, "entry create failed", err)
	}
	entryID = entry.ID

	return entry.Public(), nil
}

// List returns the caller's entries, newest first, without envelopes.
func (s *VaultService) List(ctx context.Context, userID string) ([]*models.PublicEntry, error) {
	list, err := s.repomanager.Entries(s.db).ListByOwner(ctx, userID)
	if err != nil {
		return nil, internalError(ctx, s.logger, "entry list failed", err)
	}

	out := make([]*models.PublicEntry, 0, len(list))
	for _, e := range list {
		out = append(out, e.Public())
	}
	return out, nil
}

// Update applies display changes and, when a new secret is given, replaces
// the whole envelope with a fresh one. Both happen in one transaction.
func (s *VaultService) Update(ctx context.Context, userID, entryID string, in UpdateEntryInput, meta models.RequestMeta) (out *models.PublicEntry, err error) {
	defer func() {
		s.audit.Record(ctx, audit.Event{
			ActorID: userID, Action: common.ActionVaultUpdate, TargetID: entryID, Success: err == nil, Meta: meta,
		})
	}()

	if entryID == "" || (!in.touchesDisplay() && in.Secret == nil) {
		return nil, common.ErrInvalidInput
	}
	if (in.PlatformName != nil && *in.PlatformName == "") || (in.AccountIdentifier != nil && *in.AccountIdentifier == "") {
		return nil, common.ErrInvalidInput
	}

	var env *models.Envelope
	if in.Secret != nil {
		if *in.Secret == "" || in.Password == "" {
			return nil, common.ErrInvalidInput
		}
		if err := s.checkPassword(ctx, userID, in.Password); err != nil {
			return nil, err
		}
		sealed, err := s.seal(userID, in.Password, *in.Secret)
		if err != nil {
			return nil, internalError(ctx, s.logger, "encrypt failed", err)
		}
		env = &sealed
	}

	now := s.now()
	var updated *models.VaultEntry
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entries(tx)

		e, err := repo.FindByID(ctx, entryID, userID)
		if err != nil {
			return err
		}

		if in.touchesDisplay() {
			if in.PlatformName != nil {
				e.PlatformName = *in.PlatformName
			}
			if in.AccountIdentifier != nil {
				e.AccountIdentifier = *in.AccountIdentifier
			}
			if in.Description != nil {
				e.Description = descriptionPtr(in.Description)
			}
			if err := repo.UpdateDisplay(ctx, entryID, userID, e.PlatformName, e.AccountIdentifier, e.Description, now); err != nil {
				return err
			}
		}

		if env != nil {
			if err := repo.UpdateEnvelope(ctx, entryID, userID, *env, now); err != nil {
				return err
			}
			e.Envelope = *env
		}

		e.UpdatedAt = now
		updated = e
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internalError(ctx, s.logger, "entry update failed", err)
	}

	return updated.Public(), nil
}

func (s *VaultService) Delete(ctx context.Context, userID, entryID string, meta models.RequestMeta) (err error) {
	defer func() {
		s.audit.Record(ctx, audit.Event{
			ActorID: userID, Action: common.ActionVaultDelete, TargetID: entryID, Success: err == nil, Meta: meta,
		})
	}()

	if entryID == "" {
		return common.ErrInvalidInput
	}
	if err := s.repomanager.Entries(s.db).Delete(ctx, entryID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internalError(ctx, s.logger, "entry delete failed", err)
	}
	return nil
}

// Reveal passes the request through the disclosure gate.
func (s *VaultService) Reveal(ctx context.Context, req RevealRequest) (string, error) {
	return s.gate.Reveal(ctx, req)
}

// checkPassword makes sure new envelopes are sealed with the account
// password, so a later reveal with that password can open them.
func (s *VaultService) checkPassword(ctx context.Context, userID, password string) error {
	u, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return internalError(ctx, s.logger, "user lookup failed", err)
	}

	ok, err := cryptox.CompareSecret(u.PasswordHash, password)
	if err != nil {
		return internalError(ctx, s.logger, "password comparison failed", err)
	}
	if !ok {
		return common.ErrInvalidCredentials
	}
	return nil
}

func (s *VaultService) seal(userID, password, secret string) (models.Envelope, error) {
	key := s.engine.DeriveKey([]byte(password), userID)
	defer common.WipeByteArray(key)

	plaintext := []byte(secret)
	defer common.WipeByteArray(plaintext)

	nonce, tag, ciphertext, err := s.engine.Encrypt(plaintext, key)
	if err != nil {
		return models.Envelope{}, err
	}
	return models.Envelope{
		Algorithm:  cryptox.AlgorithmAES256GCM,
		Nonce:      nonce,
		Tag:        tag,
		Ciphertext: ciphertext,
	}, nil
}

func descriptionPtr(d *string) *string {
	if d == nil {
		return nil
	}
	return common.StringPtr(*d)
}
