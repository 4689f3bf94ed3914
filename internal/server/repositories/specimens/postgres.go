package specimens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/ebalodis/shellvault/internal/common"
	"github.com/ebalodis/shellvault/internal/dbx"
	"github.com/ebalodis/shellvault/internal/server/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const specimenColumns = `id, name, species, description, color, size_mm, found_on, found_at, ` +
	`storage_location, condition, notes, image_ref, owner_id, created_at, updated_at`

// distinctColumns maps filter-vocabulary field names to columns eligible for
// DistinctValues. Acts as an allow-list: anything else is rejected.
var distinctColumns = map[string]string{
	"species":          "species",
	"color":            "color",
	"condition":        "condition",
	"storage_location": "storage_location",
}

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpecimen(row rowScanner) (*models.Specimen, error) {
	s := &models.Specimen{}
	err := row.Scan(&s.ID, &s.Name, &s.Species, &s.Description, &s.Color, &s.SizeMM,
		&s.FoundOn, &s.FoundAt, &s.StorageLocation, &s.Condition, &s.Notes,
		&s.ImageRef, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, data models.SpecimenCreate, ownerID *string) (*models.Specimen, error) {
	query, args, err := psql.Insert("specimens").
		Columns("name", "species", "description", "color", "size_mm", "found_on",
			"found_at", "storage_location", "condition", "notes", "owner_id").
		Values(data.Name, data.Species, data.Description, data.Color, data.SizeMM,
			data.FoundOn, data.FoundAt, data.StorageLocation, data.Condition,
			data.Notes, ownerID).
		Suffix("RETURNING " + specimenColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert: %w", err)
	}

	return scanSpecimen(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Specimen, error) {
	query := `SELECT ` + specimenColumns + ` FROM specimens WHERE id = $1`
	return scanSpecimen(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context, filter models.SpecimenFilter, skip, limit int) ([]*models.Specimen, error) {
	q := psql.Select(strings.Split(specimenColumns, ", ")...).
		From("specimens").
		OrderBy("created_at", "id")

	if conds := conditions(filter); len(conds) > 0 {
		q = q.Where(conds)
	}
	if skip > 0 {
		q = q.Offset(uint64(skip))
	}
	if limit >= 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Specimen
	for rows.Next() {
		s, err := scanSpecimen(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, filter models.SpecimenFilter) (int64, error) {
	q := psql.Select("COUNT(*)").From("specimens")
	if conds := conditions(filter); len(conds) > 0 {
		q = q.Where(conds)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count: %w", err)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	col, ok := distinctColumns[field]
	if !ok {
		return nil, fmt.Errorf("unsupported field %q", field)
	}

	query := fmt.Sprintf(`SELECT DISTINCT %s FROM specimens WHERE %s IS NOT NULL`, col, col)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return values, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.SpecimenPatch) (*models.Specimen, error) {
	q := psql.Update("specimens").Set("updated_at", sq.Expr("now()"))

	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
	}
	if patch.Species != nil {
		q = q.Set("species", *patch.Species)
	}
	if patch.Description != nil {
		q = q.Set("description", *patch.Description)
	}
	if patch.Color != nil {
		q = q.Set("color", *patch.Color)
	}
	if patch.SizeMM != nil {
		q = q.Set("size_mm", *patch.SizeMM)
	}
	if patch.FoundOn != nil {
		q = q.Set("found_on", *patch.FoundOn)
	}
	if patch.FoundAt != nil {
		q = q.Set("found_at", *patch.FoundAt)
	}
	if patch.StorageLocation != nil {
		q = q.Set("storage_location", *patch.StorageLocation)
	}
	if patch.Condition != nil {
		q = q.Set("condition", *patch.Condition)
	}
	if patch.Notes != nil {
		q = q.Set("notes", *patch.Notes)
	}

	query, args, err := q.Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + specimenColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update: %w", err)
	}

	return scanSpecimen(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) SetImageRef(ctx context.Context, id string, ref *string) (*models.Specimen, error) {
	query := `UPDATE specimens SET image_ref = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + specimenColumns
	return scanSpecimen(r.db.QueryRowContext(ctx, query, id, ref))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM specimens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
