package services

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ebalodis/shellvault/internal/common"
	"github.com/ebalodis/shellvault/internal/dbx"
	"github.com/ebalodis/shellvault/internal/logging"
	"github.com/ebalodis/shellvault/internal/server/models"
	accountsrepo "github.com/ebalodis/shellvault/internal/server/repositories/accounts"
	specimensrepo "github.com/ebalodis/shellvault/internal/server/repositories/specimens"
)

// --- shared test helpers and fakes ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard)
}

func strPtr(s string) *string { return &s }

type fakeAccountsRepo struct {
	byEmail map[string]*models.Account
	byID    map[string]*models.Account

	createOut *models.Account
	createErr error

	updated []string
}

func (f *fakeAccountsRepo) Create(ctx context.Context, email, passwordHash string, fullName *string) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return &models.Account{ID: "a1", Email: email, PasswordHash: passwordHash, FullName: fullName, IsActive: true}, nil
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeAccountsRepo) SetActive(ctx context.Context, id string, active bool) (*models.Account, error) {
	a, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsActive = active
	f.updated = append(f.updated, id)
	return a, nil
}

func (f *fakeAccountsRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) (*models.Account, error) {
	a, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.PasswordHash = passwordHash
	f.updated = append(f.updated, id)
	return a, nil
}

func (f *fakeAccountsRepo) UpdateFullName(ctx context.Context, id string, fullName *string) (*models.Account, error) {
	a, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.FullName = fullName
	f.updated = append(f.updated, id)
	return a, nil
}

func (f *fakeAccountsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeSpecimensRepo struct {
	byID map[string]*models.Specimen

	createOut *models.Specimen
	createErr error

	listOut []*models.Specimen
	listErr error

	countOut int64

	distinctOut []string
	distinctErr error

	updateErr error
	setRefErr error
	deleteErr error

	deleted []string
	setRefs []*string
}

func (f *fakeSpecimensRepo) Create(ctx context.Context, data models.SpecimenCreate, ownerID *string) (*models.Specimen, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	sp := &models.Specimen{ID: "s1", Name: data.Name, Species: data.Species, OwnerID: ownerID}
	if f.byID == nil {
		f.byID = map[string]*models.Specimen{}
	}
	f.byID[sp.ID] = sp
	return sp, nil
}

func (f *fakeSpecimensRepo) GetByID(ctx context.Context, id string) (*models.Specimen, error) {
	if sp, ok := f.byID[id]; ok {
		return sp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeSpecimensRepo) List(ctx context.Context, filter models.SpecimenFilter, skip, limit int) ([]*models.Specimen, error) {
	return f.listOut, f.listErr
}

func (f *fakeSpecimensRepo) Count(ctx context.Context, filter models.SpecimenFilter) (int64, error) {
	return f.countOut, nil
}

func (f *fakeSpecimensRepo) DistinctValues(ctx context.Context, field string) ([]string, error) {
	return f.distinctOut, f.distinctErr
}

func (f *fakeSpecimensRepo) Update(ctx context.Context, id string, patch models.SpecimenPatch) (*models.Specimen, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	sp, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		sp.Name = *patch.Name
	}
	if patch.Color != nil {
		sp.Color = patch.Color
	}
	if patch.Notes != nil {
		sp.Notes = patch.Notes
	}
	return sp, nil
}

func (f *fakeSpecimensRepo) SetImageRef(ctx context.Context, id string, ref *string) (*models.Specimen, error) {
	if f.setRefErr != nil {
		return nil, f.setRefErr
	}
	sp, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sp.ImageRef = ref
	f.setRefs = append(f.setRefs, ref)
	return sp, nil
}

func (f *fakeSpecimensRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRepoManager struct {
	a *fakeAccountsRepo
	s *fakeSpecimensRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository { return m.a }

func (m *fakeRepoManager) Specimens(db dbx.DBTX) specimensrepo.Repository { return m.s }

type fakeBlobStore struct {
	saveRef string
	saveErr error

	savedOwners []string
	savedNames  []string

	deletedAll   []string
	deleteAllErr error

	deletedOne   []string
	deleteOneErr error
}

func (f *fakeBlobStore) Save(ctx context.Context, ownerID string, content []byte, originalName string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.savedOwners = append(f.savedOwners, ownerID)
	f.savedNames = append(f.savedNames, originalName)
	if f.saveRef != "" {
		return f.saveRef, nil
	}
	return "/uploads/specimens/" + ownerID + "/blob.jpg", nil
}

func (f *fakeBlobStore) DeleteAll(ctx context.Context, ownerID string) error {
	if f.deleteAllErr != nil {
		return f.deleteAllErr
	}
	f.deletedAll = append(f.deletedAll, ownerID)
	return nil
}

func (f *fakeBlobStore) DeleteOne(ctx context.Context, ref string) (bool, error) {
	if f.deleteOneErr != nil {
		return false, f.deleteOneErr
	}
	f.deletedOne = append(f.deletedOne, ref)
	return true, nil
}
