package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ebalodis/shellvault/internal/blobstore"
	"github.com/ebalodis/shellvault/internal/logging"
	"github.com/ebalodis/shellvault/internal/server/models"
	"github.com/ebalodis/shellvault/internal/server/repositories/repomanager"
)

// ImageUpload is a fully buffered image file received from the transport.
type ImageUpload struct {
	Content  []byte
	Filename string
}

// SpecimenService implements the specimen lifecycle: plain CRUD, listing
// with filters, and the two-phase create/update flows that keep the record
// store and the blob store consistent.
//
// There is no cross-store transaction; the only consistency mechanism is the
// compensating delete in CreateWithImage. Concurrent updates to one specimen
// are last-writer-wins at the record store.
type SpecimenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
}

// NewSpecimenService constructs a SpecimenService.
func NewSpecimenService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger) *SpecimenService {
	return &SpecimenService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "specimens"),
	}
}

// Create persists a new specimen with no image reference. ownerID, when
// present, attributes the specimen to an account.
func (s *SpecimenService) Create(ctx context.Context, data models.SpecimenCreate, ownerID *string) (*models.Specimen, error) {
	sp, err := s.repomanager.Specimens(s.db).Create(ctx, data, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error creating specimen: %w", err)
	}
	return sp, nil
}

// CreateWithImage persists a new specimen and, when upload is non-nil,
// stores its image. The record is created first so the blob namespace has an
// owner id; if the blob save or the reference update then fails, the record
// is deleted again and the original error is returned. The caller never
// observes a specimen that claims an image it does not have.
func (s *SpecimenService) CreateWithImage(ctx context.Context, data models.SpecimenCreate, ownerID *string, upload *ImageUpload) (*models.Specimen, error) {
	repo := s.repomanager.Specimens(s.db)

	sp, err := repo.Create(ctx, data, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error creating specimen: %w", err)
	}
	if upload == nil {
		return sp, nil
	}

	id := sp.ID

	ref, err := s.blobs.Save(ctx, id, upload.Content, upload.Filename)
	if err != nil {
		s.compensateCreate(ctx, id, false)
		return nil, err
	}

	sp, err = repo.SetImageRef(ctx, id, &ref)
	if err != nil {
		s.compensateCreate(ctx, id, true)
		return nil, fmt.Errorf("error attaching image: %w", err)
	}
	return sp, nil
}

// compensateCreate undoes a half-finished CreateWithImage. Failures here are
// logged, not returned: the caller already holds the original error.
func (s *SpecimenService) compensateCreate(ctx context.Context, id string, blobSaved bool) {
	if blobSaved {
		if err := s.blobs.DeleteAll(ctx, id); err != nil {
			s.logger.Error(ctx, "compensation: deleting blob namespace failed", "id", id, "error", err)
		}
	}
	if err := s.repomanager.Specimens(s.db).Delete(ctx, id); err != nil {
		s.logger.Error(ctx, "compensation: deleting specimen record failed", "id", id, "error", err)
	}
}

// Get returns the specimen or common.ErrNotFound.
func (s *SpecimenService) Get(ctx context.Context, id string) (*models.Specimen, error) {
	return s.repomanager.Specimens(s.db).GetByID(ctx, id)
}

// List returns specimens matching filter, paginated with skip/limit after
// filtering.
func (s *SpecimenService) List(ctx context.Context, filter models.SpecimenFilter, skip, limit int) ([]*models.Specimen, error) {
	return s.repomanager.Specimens(s.db).List(ctx, filter, skip, limit)
}

// Count returns the number of specimens matching filter, ignoring
// pagination.
func (s *SpecimenService) Count(ctx context.Context, filter models.SpecimenFilter) (int64, error) {
	return s.repomanager.Specimens(s.db).Count(ctx, filter)
}

// DistinctValues returns the distinct non-null values of one of the
// filterable text fields: species, color, condition, storage_location.
func (s *SpecimenService) DistinctValues(ctx context.Context, field string) ([]string, error) {
	return s.repomanager.Specimens(s.db).DistinctValues(ctx, field)
}

// Update applies a partial update; fields not carried by patch stay
// untouched.
func (s *SpecimenService) Update(ctx context.Context, id string, patch models.SpecimenPatch) (*models.Specimen, error) {
	return s.repomanager.Specimens(s.db).Update(ctx, id, patch)
}

// UpdateWithImage applies the field update and, when upload is non-nil,
// replaces the image: the new blob is saved first, the reference is swapped,
// and only then is the old blob deleted best-effort. A failed save therefore
// leaves the previous image intact.
func (s *SpecimenService) UpdateWithImage(ctx context.Context, id string, patch models.SpecimenPatch, upload *ImageUpload) (*models.Specimen, error) {
	repo := s.repomanager.Specimens(s.db)

	sp, err := repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if upload == nil {
		return sp, nil
	}

	ref, err := s.blobs.Save(ctx, id, upload.Content, upload.Filename)
	if err != nil {
		return nil, err
	}

	oldRef := sp.ImageRef
	sp, err = repo.SetImageRef(ctx, id, &ref)
	if err != nil {
		if _, derr := s.blobs.DeleteOne(ctx, ref); derr != nil {
			s.logger.Error(ctx, "removing orphaned blob failed", "ref", ref, "error", derr)
		}
		return nil, fmt.Errorf("error attaching image: %w", err)
	}

	if oldRef != nil && *oldRef != ref {
		if _, err := s.blobs.DeleteOne(ctx, *oldRef); err != nil {
			s.logger.Warn(ctx, "deleting replaced blob failed", "ref", *oldRef, "error", err)
		}
	}
	return sp, nil
}

// SetImageRef is the low-level reference setter used after an out-of-band
// blob save.
func (s *SpecimenService) SetImageRef(ctx context.Context, id string, ref *string) (*models.Specimen, error) {
	return s.repomanager.Specimens(s.db).SetImageRef(ctx, id, ref)
}

// DeleteImage removes the specimen's image blob best-effort and clears the
// reference. When no image is attached it returns the current record
// unchanged.
func (s *SpecimenService) DeleteImage(ctx context.Context, id string) (*models.Specimen, error) {
	repo := s.repomanager.Specimens(s.db)

	sp, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp.ImageRef == nil {
		return sp, nil
	}

	if _, err := s.blobs.DeleteOne(ctx, *sp.ImageRef); err != nil {
		s.logger.Warn(ctx, "deleting blob failed", "ref", *sp.ImageRef, "error", err)
	}
	return repo.SetImageRef(ctx, id, nil)
}

// Delete removes every blob in the specimen's namespace and then the record
// itself. The namespace purge is idempotent, so an empty or absent namespace
// is fine; a missing record yields common.ErrNotFound.
func (s *SpecimenService) Delete(ctx context.Context, id string) error {
	repo := s.repomanager.Specimens(s.db)

	if _, err := repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.blobs.DeleteAll(ctx, id); err != nil {
		return fmt.Errorf("error deleting specimen images: %w", err)
	}

	return repo.Delete(ctx, id)
}
