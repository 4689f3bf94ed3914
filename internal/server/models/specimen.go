package models

import "time"

// Specimen is a single catalogued physical specimen. Name and Species are
// always present; the remaining descriptive fields are optional.
//
// ImageRef, when set, is a blobstore reference inside the namespace owned by
// this specimen's ID. OwnerID is a weak reference to the account that added
// the specimen: deleting the account does not cascade here.
type Specimen struct {
	ID              string
	Name            string
	Species         string
	Description     *string
	Color           *string
	SizeMM          *int
	FoundOn         *time.Time
	FoundAt         *string
	StorageLocation *string
	Condition       *string
	Notes           *string
	ImageRef        *string
	OwnerID         *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SpecimenCreate carries the fields accepted when adding a specimen.
type SpecimenCreate struct {
	Name            string
	Species         string
	Description     *string
	Color           *string
	SizeMM          *int
	FoundOn         *time.Time
	FoundAt         *string
	StorageLocation *string
	Condition       *string
	Notes           *string
}

// SpecimenPatch is a partial update: nil fields are left untouched.
type SpecimenPatch struct {
	Name            *string
	Species         *string
	Description     *string
	Color           *string
	SizeMM          *int
	FoundOn         *time.Time
	FoundAt         *string
	StorageLocation *string
	Condition       *string
	Notes           *string
}

// IsEmpty reports whether the patch carries no field at all.
func (p SpecimenPatch) IsEmpty() bool {
	return p.Name == nil && p.Species == nil && p.Description == nil &&
		p.Color == nil && p.SizeMM == nil && p.FoundOn == nil &&
		p.FoundAt == nil && p.StorageLocation == nil && p.Condition == nil &&
		p.Notes == nil
}

// SpecimenFilter is the criteria set for listing and counting specimens.
// Exact-match and range criteria are AND-combined; Search matches as a
// case-insensitive substring of name, species, or description and is
// AND-combined with the rest as one OR-group.
type SpecimenFilter struct {
	Species         *string
	Color           *string
	Condition       *string
	StorageLocation *string
	MinSizeMM       *int
	MaxSizeMM       *int
	FoundAfter      *time.Time
	FoundBefore     *time.Time
	Search          *string
}
