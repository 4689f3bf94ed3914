package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/ebalodis/shellvault/internal/blobstore"
	"github.com/ebalodis/shellvault/internal/server/models"
	"github.com/ebalodis/shellvault/internal/server/services"
)

type specimenCreateRequest struct {
	Name            string  `json:"name"`
	Species         string  `json:"species"`
	Description     *string `json:"description"`
	Color           *string `json:"color"`
	SizeMM          *int    `json:"size_mm"`
	FoundOn         *string `json:"found_on"`
	FoundAt         *string `json:"found_at"`
	StorageLocation *string `json:"storage_location"`
	Condition       *string `json:"condition"`
	Notes           *string `json:"notes"`
}

func (req *specimenCreateRequest) toModel() (models.SpecimenCreate, error) {
	data := models.SpecimenCreate{
		Name:            req.Name,
		Species:         req.Species,
		Description:     req.Description,
		Color:           req.Color,
		SizeMM:          req.SizeMM,
		FoundAt:         req.FoundAt,
		StorageLocation: req.StorageLocation,
		Condition:       req.Condition,
		Notes:           req.Notes,
	}
	if req.FoundOn != nil {
		d, err := time.Parse(dateLayout, *req.FoundOn)
		if err != nil {
			return data, fmt.Errorf("invalid found_on: %q", *req.FoundOn)
		}
		data.FoundOn = &d
	}
	return data, nil
}

// isMultipart reports whether the request carries a multipart form, which is
// how image uploads arrive.
func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// readUpload buffers the optional "image" part. Oversized content is not cut
// off here; one extra byte past the cap is read so the size validation in the
// blob store sees the violation.
func readUpload(r *http.Request) (*services.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, blobstore.MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	return &services.ImageUpload{Content: content, Filename: header.Filename}, nil
}

// formValue returns a pointer to the named form field, nil when absent.
func formValue(r *http.Request, name string) *string {
	if vs, ok := r.MultipartForm.Value[name]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

func (s *Server) handleCreateSpecimen(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := accountIDFromContext(r.Context())

	var req specimenCreateRequest
	var upload *services.ImageUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(blobstore.MaxFileSize + 1<<20); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		var err error
		if upload, err = readUpload(r); err != nil {
			writeError(w, http.StatusBadRequest, "invalid image upload")
			return
		}
		if v := formValue(r, "name"); v != nil {
			req.Name = *v
		}
		if v := formValue(r, "species"); v != nil {
			req.Species = *v
		}
		req.Description = formValue(r, "description")
		req.Color = formValue(r, "color")
		req.FoundOn = formValue(r, "found_on")
		req.FoundAt = formValue(r, "found_at")
		req.StorageLocation = formValue(r, "storage_location")
		req.Condition = formValue(r, "condition")
		req.Notes = formValue(r, "notes")
		if v := formValue(r, "size_mm"); v != nil {
			n, err := strconv.Atoi(*v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid size_mm")
				return
			}
			req.SizeMM = &n
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.Name == "" || req.Species == "" {
		writeError(w, http.StatusBadRequest, "name and species are required")
		return
	}

	data, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sp, err := s.specimens.CreateWithImage(r.Context(), data, &ownerID, upload)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSpecimenResponse(sp))
}

func (s *Server) handleListSpecimens(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSpecimenFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	skip, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.specimens.List(r.Context(), filter, skip, limit)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	total, err := s.specimens.Count(r.Context(), filter)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	resp := specimenListResponse{
		Items: make([]specimenResponse, 0, len(items)),
		Total: total,
		Skip:  skip,
		Limit: limit,
	}
	for _, sp := range items {
		resp.Items = append(resp.Items, toSpecimenResponse(sp))
	}
	writeJSON(w, http.StatusOK, resp)
}

var filterableFields = map[string]struct{}{
	"species":          {},
	"color":            {},
	"condition":        {},
	"storage_location": {},
}

func (s *Server) handleDistinctValues(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	if _, ok := filterableFields[field]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported field %q", field))
		return
	}

	values, err := s.specimens.DistinctValues(r.Context(), field)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"values": values})
}

func (s *Server) handleGetSpecimen(w http.ResponseWriter, r *http.Request) {
	sp, err := s.specimens.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSpecimenResponse(sp))
}

type specimenPatchRequest struct {
	Name            *string `json:"name"`
	Species         *string `json:"species"`
	Description     *string `json:"description"`
	Color           *string `json:"color"`
	SizeMM          *int    `json:"size_mm"`
	FoundOn         *string `json:"found_on"`
	FoundAt         *string `json:"found_at"`
	StorageLocation *string `json:"storage_location"`
	Condition       *string `json:"condition"`
	Notes           *string `json:"notes"`
}

func (req *specimenPatchRequest) toModel() (models.SpecimenPatch, error) {
	patch := models.SpecimenPatch{
		Name:            req.Name,
		Species:         req.Species,
		Description:     req.Description,
		Color:           req.Color,
		SizeMM:          req.SizeMM,
		FoundAt:         req.FoundAt,
		StorageLocation: req.StorageLocation,
		Condition:       req.Condition,
		Notes:           req.Notes,
	}
	if req.FoundOn != nil {
		d, err := time.Parse(dateLayout, *req.FoundOn)
		if err != nil {
			return patch, fmt.Errorf("invalid found_on: %q", *req.FoundOn)
		}
		patch.FoundOn = &d
	}
	return patch, nil
}

func (s *Server) handleUpdateSpecimen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req specimenPatchRequest
	var upload *services.ImageUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(blobstore.MaxFileSize + 1<<20); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		var err error
		if upload, err = readUpload(r); err != nil {
			writeError(w, http.StatusBadRequest, "invalid image upload")
			return
		}
		req.Name = formValue(r, "name")
		req.Species = formValue(r, "species")
		req.Description = formValue(r, "description")
		req.Color = formValue(r, "color")
		req.FoundOn = formValue(r, "found_on")
		req.FoundAt = formValue(r, "found_at")
		req.StorageLocation = formValue(r, "storage_location")
		req.Condition = formValue(r, "condition")
		req.Notes = formValue(r, "notes")
		if v := formValue(r, "size_mm"); v != nil {
			n, err := strconv.Atoi(*v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid size_mm")
				return
			}
			req.SizeMM = &n
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	patch, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.IsEmpty() && upload == nil {
		writeError(w, http.StatusBadRequest, "empty update")
		return
	}

	sp, err := s.specimens.UpdateWithImage(r.Context(), id, patch, upload)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSpecimenResponse(sp))
}

func (s *Server) handleDeleteSpecimen(w http.ResponseWriter, r *http.Request) {
	if err := s.specimens.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSpecimenImage(w http.ResponseWriter, r *http.Request) {
	sp, err := s.specimens.DeleteImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSpecimenResponse(sp))
}
