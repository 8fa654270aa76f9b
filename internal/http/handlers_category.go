package http

import (
	"net/http"
	"strings"

	"tally/internal/core"
)

type categoryRequest struct {
	Name      *string `json:"name"`
	Type      *string `json:"type"`
	Icon      *string `json:"icon"`
	Color     *string `json:"color"`
	IsDefault *bool   `json:"isDefault"`
}

// apply overlays the provided fields on c.
func (req categoryRequest) apply(c *core.Category) error {
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		t, err := core.ParseCategoryType(*req.Type)
		if err != nil {
			return err
		}
		c.Type = t
	}
	if req.Icon != nil {
		c.Icon = strings.TrimSpace(*req.Icon)
	}
	if req.Color != nil {
		c.Color = strings.TrimSpace(*req.Color)
	}
	if req.IsDefault != nil {
		c.IsDefault = *req.IsDefault
	}
	return nil
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var typ core.CategoryType
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		parsed, err := core.ParseCategoryType(raw)
		if err != nil {
			respondError(w, r, err)
			return
		}
		typ = parsed
	}

	categories, err := s.storage.ListCategories(r.Context(), ownerFrom(r.Context()), typ)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := s.storage.GetCategory(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	category := core.Category{OwnerID: ownerFrom(r.Context())}
	if err := req.apply(&category); err != nil {
		respondError(w, r, err)
		return
	}
	if err := category.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.storage.CreateCategory(r.Context(), category)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	category, err := s.storage.GetCategory(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := req.apply(&category); err != nil {
		respondError(w, r, err)
		return
	}
	if err := category.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.storage.UpdateCategory(r.Context(), category)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.storage.DeleteCategory(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}
