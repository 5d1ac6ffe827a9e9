package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"hearth/internal/core"
	"hearth/internal/services"
)

type transactionRequest struct {
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	CategoryID  string      `json:"category_id"`
	AccountID   string      `json:"account_id"`
	ToAccountID string      `json:"to_account_id"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("amount: %w", err))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("date: %w", err))
		return
	}

	tx, warning, err := s.transactions.Record(r.Context(), services.RecordTransactionInput{
		FamilyID:    id.FamilyID,
		UserID:      id.UserID,
		UserName:    id.UserName,
		UserIcon:    id.UserIcon,
		Type:        core.TransactionType(req.Type),
		Amount:      amount,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		Date:        date,
		Description: sanitizeInput(req.Description),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateFamily(id.FamilyID)
	s.structured.LogTransactionRecorded(r.Context(), tx.ID, tx.FamilyID, string(tx.Type), tx.Amount.Cents)

	writeJSON(w, http.StatusCreated, map[string]any{
		"transaction":    transactionView(tx),
		"budget_warning": warningView(warning),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	query := r.URL.Query()

	month, err := parseOptionalInt(query, "month")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	year, err := parseOptionalInt(query, "year")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	txType := core.TransactionType(query.Get("type"))
	if txType != "" && !txType.Valid() {
		writeDomainError(w, r, fmt.Errorf("%w: unknown transaction type %q", core.ErrInvalidArgument, txType))
		return
	}

	txs, err := s.transactions.List(r.Context(), services.ListTransactionsInput{
		FamilyID: id.FamilyID,
		UserID:   query.Get("user_id"),
		Type:     txType,
		Month:    month,
		Year:     year,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": transactionViews(txs),
		"count":        len(txs),
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	tx, err := s.transactions.Get(r.Context(), id.FamilyID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionView(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("amount: %w", err))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("date: %w", err))
		return
	}

	tx, err := s.transactions.Update(r.Context(), id.FamilyID, r.PathValue("id"), services.UpdateTransactionInput{
		Type:        core.TransactionType(req.Type),
		Amount:      amount,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		Date:        date,
		Description: sanitizeInput(req.Description),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateFamily(id.FamilyID)
	writeJSON(w, http.StatusOK, transactionView(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	txID := r.PathValue("id")

	if err := s.transactions.Delete(r.Context(), id.FamilyID, txID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateFamily(id.FamilyID)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": txID})
}
