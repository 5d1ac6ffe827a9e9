// Package export defines the outbound statement port: appending
// recorded transactions to a family statement document.
package export

import (
	"context"

	"hearth/internal/core"
)

// StatementWriter appends one journal row to the statement and returns
// an adapter-specific row reference.
type StatementWriter interface {
	Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
