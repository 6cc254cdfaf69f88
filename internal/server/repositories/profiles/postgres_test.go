package profiles

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestFindByUserID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)SELECT.*FROM\s+security_profile\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "answer_one_hash", "answer_two_hash", "answer_three_hash", "created_at"}).
			AddRow("u1", "h1", "h2", "h3", created))

	got, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)

	want := &models.SecurityProfile{UserID: "u1", AnswerOneHash: "h1", AnswerTwoHash: "h2", AnswerThreeHash: "h3", CreatedAt: created}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestFindByUserID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+security_profile`).WithArgs("u1").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUserID(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByUserID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+security_profile`).WithArgs("u1").WillReturnError(errors.New("conn reset"))

	_, err := repo.FindByUserID(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "conn reset")
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "ok"},
		{name: "second setup", execErr: &pgconn.PgError{Code: "23505"}, wantErr: common.ErrAlreadyConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(`(?s)INSERT\s+INTO\s+security_profile\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)`).
				WithArgs("u1", "h1", "h2", "h3", sqlmock.AnyArg())
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.Create(context.Background(), &models.SecurityProfile{
				UserID: "u1", AnswerOneHash: "h1", AnswerTwoHash: "h2", AnswerThreeHash: "h3", CreatedAt: time.Now(),
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
