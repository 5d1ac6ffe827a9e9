package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"hearth/internal/core"
)

type createCategoryRequest struct {
	Name             string      `json:"name"`
	Type             string      `json:"type"`
	Color            string      `json:"color"`
	BudgetLimit      json.Number `json:"budget_limit"`
	InvestmentTarget json.Number `json:"investment_target"`
	IsShared         bool        `json:"is_shared"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	limit, err := parseOptionalAmount(req.BudgetLimit)
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("budget_limit: %w", err))
		return
	}
	target, err := parseOptionalAmount(req.InvestmentTarget)
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("investment_target: %w", err))
		return
	}

	// Budget limits and shared categories are family-wide settings;
	// only admins may establish them.
	if (limit.Cents > 0 || req.IsShared) && !id.IsAdmin() {
		writeDomainError(w, r, fmt.Errorf("%w: admin role required to set budget limits or shared categories", core.ErrForbidden))
		return
	}

	c := core.Category{
		ID:               uuid.NewString(),
		FamilyID:         id.FamilyID,
		Name:             sanitizeInput(req.Name),
		Type:             core.CategoryType(req.Type),
		Color:            sanitizeInput(req.Color),
		BudgetLimit:      limit,
		InvestmentTarget: target,
		IsShared:         req.IsShared,
		CreatedAt:        time.Now().UTC(),
	}
	if !c.IsShared {
		c.UserID = id.UserID
	}
	if err := c.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.store.CreateCategory(r.Context(), c); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, categoryView(c))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	ctype := core.CategoryType(r.URL.Query().Get("type"))
	if ctype != "" && !ctype.Valid() {
		writeDomainError(w, r, fmt.Errorf("%w: unknown category type %q", core.ErrInvalidArgument, ctype))
		return
	}

	cats, err := s.store.ListCategories(r.Context(), id.FamilyID, ctype)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		views = append(views, categoryView(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": views, "count": len(views)})
}

// handleDeleteCategory removes a category unconditionally. Existing
// transactions keep their category id and surface under the "Unknown"
// bucket in aggregations.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	catID := r.PathValue("id")

	c, err := s.store.GetCategory(r.Context(), id.FamilyID, catID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if c.IsShared && !id.IsAdmin() {
		writeDomainError(w, r, fmt.Errorf("%w: admin role required to delete a shared category", core.ErrForbidden))
		return
	}

	if err := s.store.DeleteCategory(r.Context(), id.FamilyID, catID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateFamily(id.FamilyID)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": catID})
}
