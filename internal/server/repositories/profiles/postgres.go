package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/dbx"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByUserID(ctx context.Context, userID string) (*models.SecurityProfile, error) {
	query := `
		SELECT user_id, answer_one_hash, answer_two_hash, answer_three_hash, created_at
		FROM security_profile
		WHERE user_id = $1
	`
	p := &models.SecurityProfile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.AnswerOneHash, &p.AnswerTwoHash, &p.AnswerThreeHash, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.SecurityProfile) error {
	query := `
		INSERT INTO security_profile (user_id, answer_one_hash, answer_two_hash, answer_three_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.AnswerOneHash, p.AnswerTwoHash, p.AnswerThreeHash, p.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyConfigured
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
