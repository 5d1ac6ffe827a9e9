package services

import (
	"context"

	"hearth/internal/amqp"
)

// EventPublisher is the outbound event port. The AMQP client satisfies
// it; a nil publisher disables events without disabling writes.
type EventPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
	PublishStatementExport(ctx context.Context, msg *amqp.StatementExportMessage) error
}
