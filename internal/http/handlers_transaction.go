package http

import (
	"net/http"
	"strings"
	"time"

	"tally/internal/core"
)

type transactionRequest struct {
	Amount      *core.Money `json:"amount"`
	Description *string     `json:"description"`
	Date        *string     `json:"date"`
	CategoryID  *int64      `json:"categoryId"`
}

func (req transactionRequest) apply(t *core.Transaction) error {
	if req.Amount != nil {
		t.Amount = *req.Amount
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.Date != nil {
		parsed, err := parseDate(strings.TrimSpace(*req.Date))
		if err != nil {
			return err
		}
		t.Date = parsed
	}
	if req.CategoryID != nil {
		t.CategoryID = *req.CategoryID
	}
	return nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	window, _, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	transactions, err := s.transactions.ListInRange(r.Context(), ownerFrom(r.Context()), window.Start, window.End)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	transaction, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transaction)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	// An omitted date means "now".
	transaction := core.Transaction{
		OwnerID: ownerFrom(r.Context()),
		Date:    time.Now().UTC(),
	}
	if err := req.apply(&transaction); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := transaction.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), transaction)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	transaction, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := req.apply(&transaction); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := transaction.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.transactions.Update(r.Context(), transaction)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDerived()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}
