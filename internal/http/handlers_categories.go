package http

import (
	"net/http"

	"fintrack/internal/core"
)

// Categories do not feed any projection, so writes leave cached views alone.

func (s *Server) handleCategoryChoices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.finance.CategoryChoices())
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.finance.ListCategories(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, s.finance.GetCategory)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	c.ID = 0
	created, err := s.finance.CreateCategory(r.Context(), userID(r), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateCategory applies only the fields present in the body.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	uid := userID(r)
	c, err := s.finance.GetCategory(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	c.ID = id
	updated, err := s.finance.UpdateCategory(r.Context(), uid, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.finance.DeleteCategory(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
