package worker

import (
	"context"
	"log/slog"

	"hearth/internal/amqp"
)

// TickerThreshold is the consumption percentage at or above which an
// alert is surfaced on the ticker. Alerts below it are acknowledged
// and dropped; the evaluator itself never filters.
const TickerThreshold = 90.0

// AlertWorker turns budget alert events into ticker lines.
type AlertWorker struct {
	threshold float64
}

func NewAlertWorker() *AlertWorker {
	return &AlertWorker{threshold: TickerThreshold}
}

// ShouldTick decides whether an alert is urgent enough for the ticker.
func (w *AlertWorker) ShouldTick(msg *amqp.BudgetAlertMessage) bool {
	return msg.Percentage >= w.threshold
}

// HandleAlertMessage processes a single budget alert.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if !w.ShouldTick(msg) {
		slog.DebugContext(ctx, "Budget alert below ticker threshold, dropping",
			"category", msg.CategoryName,
			"percentage", msg.Percentage)
		return nil
	}

	level := slog.LevelWarn
	if msg.Exceeded {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "BUDGET TICKER",
		"family_id", msg.FamilyID,
		"category", msg.CategoryName,
		"spent_cents", msg.SpentCents,
		"limit_cents", msg.LimitCents,
		"percentage", msg.Percentage,
		"exceeded", msg.Exceeded)
	return nil
}
