package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"hearth/internal/core"
)

type createAccountRequest struct {
	Name           string      `json:"name"`
	Type           string      `json:"type"`
	OwnerType      string      `json:"owner_type"`
	OpeningBalance json.Number `json:"opening_balance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	opening, err := parseOptionalAmount(req.OpeningBalance)
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("opening_balance: %w", err))
		return
	}

	ownerType := core.OwnerType(req.OwnerType)
	if ownerType == "" {
		ownerType = core.OwnerFamily
	}

	a := core.Account{
		ID:             uuid.NewString(),
		FamilyID:       id.FamilyID,
		Name:           sanitizeInput(req.Name),
		Type:           core.AccountType(req.Type),
		OwnerType:      ownerType,
		OpeningBalance: opening,
		CurrentBalance: opening,
		CreatedAt:      time.Now().UTC(),
	}
	if ownerType == core.OwnerPersonal {
		a.UserID = id.UserID
	}
	if err := a.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.store.CreateAccount(r.Context(), a); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountView(a))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	accounts, err := s.store.ListAccounts(r.Context(), id.FamilyID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": views, "count": len(views)})
}
