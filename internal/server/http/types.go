package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ebalodis/shellvault/internal/server/models"
)

const dateLayout = "2006-01-02"

type accountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type specimenResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Species         string    `json:"species"`
	Description     *string   `json:"description"`
	Color           *string   `json:"color"`
	SizeMM          *int      `json:"size_mm"`
	FoundOn         *string   `json:"found_on"`
	FoundAt         *string   `json:"found_at"`
	StorageLocation *string   `json:"storage_location"`
	Condition       *string   `json:"condition"`
	Notes           *string   `json:"notes"`
	ImageURL        *string   `json:"image_url"`
	OwnerID         *string   `json:"owner_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toSpecimenResponse(sp *models.Specimen) specimenResponse {
	var foundOn *string
	if sp.FoundOn != nil {
		v := sp.FoundOn.Format(dateLayout)
		foundOn = &v
	}
	return specimenResponse{
		ID:              sp.ID,
		Name:            sp.Name,
		Species:         sp.Species,
		Description:     sp.Description,
		Color:           sp.Color,
		SizeMM:          sp.SizeMM,
		FoundOn:         foundOn,
		FoundAt:         sp.FoundAt,
		StorageLocation: sp.StorageLocation,
		Condition:       sp.Condition,
		Notes:           sp.Notes,
		ImageURL:        sp.ImageRef,
		OwnerID:         sp.OwnerID,
		CreatedAt:       sp.CreatedAt,
		UpdatedAt:       sp.UpdatedAt,
	}
}

type specimenListResponse struct {
	Items []specimenResponse `json:"items"`
	Total int64              `json:"total"`
	Skip  int                `json:"skip"`
	Limit int                `json:"limit"`
}

// parseSpecimenFilter reads the filter criteria from the query string.
func parseSpecimenFilter(r *http.Request) (models.SpecimenFilter, error) {
	q := r.URL.Query()
	var f models.SpecimenFilter

	strParam := func(name string) *string {
		if v := q.Get(name); v != "" {
			return &v
		}
		return nil
	}

	f.Species = strParam("species")
	f.Color = strParam("color")
	f.Condition = strParam("condition")
	f.StorageLocation = strParam("storage_location")
	f.Search = strParam("search")

	for name, dst := range map[string]**int{
		"min_size_mm": &f.MinSizeMM,
		"max_size_mm": &f.MaxSizeMM,
	} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return f, fmt.Errorf("invalid %s: %q", name, v)
			}
			*dst = &n
		}
	}

	for name, dst := range map[string]**time.Time{
		"found_after":  &f.FoundAfter,
		"found_before": &f.FoundBefore,
	} {
		if v := q.Get(name); v != "" {
			d, err := time.Parse(dateLayout, v)
			if err != nil {
				return f, fmt.Errorf("invalid %s: %q", name, v)
			}
			*dst = &d
		}
	}

	return f, nil
}

// parsePagination reads skip/limit with the defaults the API documents.
func parsePagination(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()
	skip, limit = 0, 100

	if v := q.Get("skip"); v != "" {
		if skip, err = strconv.Atoi(v); err != nil || skip < 0 {
			return 0, 0, fmt.Errorf("invalid skip: %q", v)
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, fmt.Errorf("invalid limit: %q", v)
		}
	}
	return skip, limit, nil
}
