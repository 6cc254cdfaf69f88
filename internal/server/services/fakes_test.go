package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/cryptox"
	"github.com/dmitrijs2005/secretvault/internal/dbx"
	"github.com/dmitrijs2005/secretvault/internal/server/audit"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

var testKDF = cryptox.KDFParams{Time: 1, Memory: 8 * 1024, Threads: 1}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func mustHash(t *testing.T, s string) string {
	t.Helper()
	h, err := cryptox.HashSecret(s, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

// --- users ---

type fakeUsersRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User
	err  error
}

func newFakeUsers(us ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{byID: map[string]*models.User{}}
	for _, u := range us {
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeUsersRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsersRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- entries ---

type memEntriesRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.VaultEntry
	findCalls int
	err       error
}

func newMemEntries() *memEntriesRepo {
	return &memEntriesRepo{byID: map[string]*models.VaultEntry{}}
}

func cloneEntry(e *models.VaultEntry) *models.VaultEntry {
	cp := *e
	cp.Envelope.Nonce = append([]byte(nil), e.Envelope.Nonce...)
	cp.Envelope.Tag = append([]byte(nil), e.Envelope.Tag...)
	cp.Envelope.Ciphertext = append([]byte(nil), e.Envelope.Ciphertext...)
	return &cp
}

func (r *memEntriesRepo) Create(_ context.Context, e *models.VaultEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byID[e.ID]; ok {
		return common.ErrConflict
	}
	r.byID[e.ID] = cloneEntry(e)
	return nil
}

func (r *memEntriesRepo) FindByID(_ context.Context, id, ownerID string) (*models.VaultEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.err != nil {
		return nil, r.err
	}
	e, ok := r.byID[id]
	if !ok || e.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	return cloneEntry(e), nil
}

func (r *memEntriesRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.VaultEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*models.VaultEntry
	for _, e := range r.byID {
		if e.UserID == ownerID {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memEntriesRepo) UpdateEnvelope(_ context.Context, id, ownerID string, env models.Envelope, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.UserID != ownerID {
		return common.ErrorNotFound
	}
	e.Envelope = env
	e.UpdatedAt = updatedAt
	return nil
}

func (r *memEntriesRepo) UpdateDisplay(_ context.Context, id, ownerID, platformName, accountIdentifier string, description *string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.UserID != ownerID {
		return common.ErrorNotFound
	}
	e.PlatformName = platformName
	e.AccountIdentifier = accountIdentifier
	e.Description = description
	e.UpdatedAt = updatedAt
	return nil
}

func (r *memEntriesRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.UserID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memEntriesRepo) get(id string) *models.VaultEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		return cloneEntry(e)
	}
	return nil
}

func (r *memEntriesRepo) finds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findCalls
}

// --- profiles ---

type memProfilesRepo struct {
	mu     sync.Mutex
	byUser map[string]*models.SecurityProfile
	err    error
}

func newMemProfiles() *memProfilesRepo {
	return &memProfilesRepo{byUser: map[string]*models.SecurityProfile{}}
}

func (r *memProfilesRepo) FindByUserID(_ context.Context, userID string) (*models.SecurityProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.byUser[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProfilesRepo) Create(_ context.Context, p *models.SecurityProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUser[p.UserID]; ok {
		return common.ErrAlreadyConfigured
	}
	cp := *p
	r.byUser[p.UserID] = &cp
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	users    *fakeUsersRepo
	entries  *memEntriesRepo
	profiles *memProfilesRepo
}

func newFakeRepoManager(us ...*models.User) *fakeRepoManager {
	return &fakeRepoManager{users: newFakeUsers(us...), entries: newMemEntries(), profiles: newMemProfiles()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository             { return m.entries }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return m.profiles }
func (m *fakeRepoManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository { return nil }
func (m *fakeRepoManager) AuditLog(dbx.DBTX) auditlog.Repository           { return nil }

// --- audit ---

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Record(_ context.Context, ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingAudit) all() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}

func (r *recordingAudit) last() audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return audit.Event{}
	}
	return r.events[len(r.events)-1]
}
