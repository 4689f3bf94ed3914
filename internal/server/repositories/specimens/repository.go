package specimens

import (
	"context"

	"github.com/ebalodis/shellvault/internal/server/models"
)

// Repository persists specimens. Operations on an absent id return
// common.ErrNotFound. List and Count share one filter vocabulary; List
// paginates after filtering over a stable (created_at, id) ordering.
// A non-negative limit bounds the page (limit 0 yields an empty page);
// a negative limit disables the bound.
type Repository interface {
	Create(ctx context.Context, data models.SpecimenCreate, ownerID *string) (*models.Specimen, error)
	GetByID(ctx context.Context, id string) (*models.Specimen, error)
	List(ctx context.Context, filter models.SpecimenFilter, skip, limit int) ([]*models.Specimen, error)
	Count(ctx context.Context, filter models.SpecimenFilter) (int64, error)
	DistinctValues(ctx context.Context, field string) ([]string, error)
	Update(ctx context.Context, id string, patch models.SpecimenPatch) (*models.Specimen, error)
	SetImageRef(ctx context.Context, id string, ref *string) (*models.Specimen, error)
	Delete(ctx context.Context, id string) error
}
