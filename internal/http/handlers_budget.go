package http

import (
	"net/http"

	"tally/internal/core"
)

type budgetRequest struct {
	Amount     *core.Money `json:"amount"`
	Month      *int        `json:"month"`
	Year       *int        `json:"year"`
	CategoryID *int64      `json:"categoryId"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, year, err := parseMonthYear(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	budgets, err := s.storage.ListBudgets(r.Context(), ownerFrom(r.Context()), month, year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	budget, err := s.storage.GetBudget(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// handleUpsertBudget creates the month's budget for a category, or
// overwrites its amount when one already exists. The client cannot tell
// the two apart and does not need to.
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Amount == nil || req.Month == nil || req.Year == nil || req.CategoryID == nil {
		writeError(w, http.StatusBadRequest, "amount, month, year and categoryId are required")
		return
	}

	budget := core.Budget{
		Amount:     *req.Amount,
		Month:      *req.Month,
		Year:       *req.Year,
		CategoryID: *req.CategoryID,
		OwnerID:    ownerFrom(r.Context()),
	}
	if err := budget.Validate(); err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := s.storage.GetCategory(r.Context(), budget.CategoryID); err != nil {
		respondError(w, r, err)
		return
	}

	saved, err := s.storage.UpsertBudget(r.Context(), budget)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleUpdateBudget changes the amount of an existing budget. Month,
// year and category are part of the budget's identity and cannot be
// changed here.
func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}
	if req.Amount.Cents < 0 {
		respondError(w, r, core.ErrInvalidAmount)
		return
	}

	updated, err := s.storage.UpdateBudgetAmount(r.Context(), id, *req.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.storage.DeleteBudget(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
