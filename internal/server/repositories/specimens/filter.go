package specimens

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/ebalodis/shellvault/internal/server/models"
)

// conditions translates a filter into a squirrel predicate set. Every
// specified criterion is AND-combined; the search term forms one OR-group
// over name, species, and description, matched as a case-insensitive
// substring.
func conditions(f models.SpecimenFilter) sq.And {
	and := sq.And{}

	if f.Species != nil {
		and = append(and, sq.Eq{"species": *f.Species})
	}
	if f.Color != nil {
		and = append(and, sq.Eq{"color": *f.Color})
	}
	if f.Condition != nil {
		and = append(and, sq.Eq{"condition": *f.Condition})
	}
	if f.StorageLocation != nil {
		and = append(and, sq.Eq{"storage_location": *f.StorageLocation})
	}
	if f.MinSizeMM != nil {
		and = append(and, sq.GtOrEq{"size_mm": *f.MinSizeMM})
	}
	if f.MaxSizeMM != nil {
		and = append(and, sq.LtOrEq{"size_mm": *f.MaxSizeMM})
	}
	if f.FoundAfter != nil {
		and = append(and, sq.GtOrEq{"found_on": *f.FoundAfter})
	}
	if f.FoundBefore != nil {
		and = append(and, sq.LtOrEq{"found_on": *f.FoundBefore})
	}
	if f.Search != nil && *f.Search != "" {
		term := "%" + *f.Search + "%"
		and = append(and, sq.Or{
			sq.ILike{"name": term},
			sq.ILike{"species": term},
			sq.ILike{"description": term},
		})
	}

	return and
}
