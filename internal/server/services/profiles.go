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
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// SecurityProfileService manages the three-answer challenge. A profile is
// written once and never updated.
type SecurityProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	audit       audit.Recorder
	logger      logging.Logger
	hashCost    int
	now         func() time.Time
}

func NewSecurityProfileService(db *sql.DB, m repomanager.RepositoryManager, rec audit.Recorder,
	logger logging.Logger, hashCost int) *SecurityProfileService {
	return &SecurityProfileService{
		db:          db,
		repomanager: m,
		audit:       rec,
		logger:      logger.With("module", "security-profile"),
		hashCost:    hashCost,
		now:         time.Now,
	}
}

// Status reports whether the user has configured a profile.
func (s *SecurityProfileService) Status(ctx context.Context, userID string) (bool, error) {
	_, err := s.repomanager.Profiles(s.db).FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, internalError(ctx, s.logger, "profile lookup failed", err)
	}
	return true, nil
}

func (s *SecurityProfileService) Setup(ctx context.Context, userID string, answers Answers, meta models.RequestMeta) (err error) {
	defer func() {
		s.audit.Record(ctx, audit.Event{
			ActorID: userID, Action: common.ActionSecurityProfileSetup, Success: err == nil, Meta: meta,
		})
	}()

	if !answers.complete() {
		return common.ErrInvalidInput
	}

	repo := s.repomanager.Profiles(s.db)
	if _, err := repo.FindByUserID(ctx, userID); err == nil {
		return common.ErrAlreadyConfigured
	} else if !errors.Is(err, common.ErrorNotFound) {
		return internalError(ctx, s.logger, "profile lookup failed", err)
	}

	var hashes [3]string
	var g errgroup.Group
	for i := range answers {
		g.Go(func() error {
			h, err := cryptox.HashSecret(answers[i], s.hashCost)
			hashes[i] = h
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return internalError(ctx, s.logger, "answer hashing failed", err)
	}

	err = repo.Create(ctx, &models.SecurityProfile{
		UserID:          userID,
		AnswerOneHash:   hashes[0],
		AnswerTwoHash:   hashes[1],
		AnswerThreeHash: hashes[2],
		CreatedAt:       s.now(),
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyConfigured) {
			return err
		}
		return internalError(ctx, s.logger, "profile create failed", err)
	}
	return nil
}

// Verify checks answers without revealing anything.
func (s *SecurityProfileService) Verify(ctx context.Context, userID string, answers Answers, meta models.RequestMeta) (err error) {
	defer func() {
		s.audit.Record(ctx, audit.Event{
			ActorID: userID, Action: common.ActionSecurityProfileVerify, Success: err == nil, Meta: meta,
		})
	}()

	if !answers.complete() {
		return common.ErrInvalidInput
	}
	return s.check(ctx, userID, answers)
}

// check returns ErrProfileNotConfigured, ErrChallengeFailed, ErrorInternal
// or nil. Which answer mismatched is never reported.
func (s *SecurityProfileService) check(ctx context.Context, userID string, answers Answers) error {
	p, err := s.repomanager.Profiles(s.db).FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrProfileNotConfigured
		}
		return internalError(ctx, s.logger, "profile lookup failed", err)
	}

	ok, err := verifyAnswers(p, answers)
	if err != nil {
		return internalError(ctx, s.logger, "answer comparison failed", err)
	}
	if !ok {
		return common.ErrChallengeFailed
	}
	return nil
}

// verifyAnswers compares all three answers concurrently. Every comparison
// runs to completion even after a mismatch.
func verifyAnswers(p *models.SecurityProfile, answers Answers) (bool, error) {
	hashes := [3]string{p.AnswerOneHash, p.AnswerTwoHash, p.AnswerThreeHash}

	var matched [3]bool
	var g errgroup.Group
	for i := range hashes {
		g.Go(func() error {
			ok, err := cryptox.CompareSecret(hashes[i], answers[i])
			matched[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return matched[0] && matched[1] && matched[2], nil
}
