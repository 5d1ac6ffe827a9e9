package http

import (
	"context"
	"net/http"
	"strings"
)

// Identity is the pre-validated caller context forwarded by the
// upstream gateway. Token issuance and verification happen before
// requests reach this service.
type Identity struct {
	UserID   string
	FamilyID string
	UserName string
	UserIcon string
	Role     string
}

// IsAdmin reports whether the caller holds the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == "admin"
}

type contextKey string

const identityKey contextKey = "identity"

// withIdentity reads the gateway identity headers and rejects requests
// missing the mandatory user/family pair.
func withIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			UserID:   strings.TrimSpace(r.Header.Get("X-User-ID")),
			FamilyID: strings.TrimSpace(r.Header.Get("X-Family-ID")),
			UserName: sanitizeInput(r.Header.Get("X-User-Name")),
			UserIcon: sanitizeInput(r.Header.Get("X-User-Icon")),
			Role:     strings.TrimSpace(r.Header.Get("X-Role")),
		}
		if id.UserID == "" || id.FamilyID == "" {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID or X-Family-ID header")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next(w, r.WithContext(ctx))
	}
}

// identityFrom returns the caller identity stored by withIdentity.
func identityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}
