package amqp

import (
	"encoding/json"
	"time"
)

// BudgetAlertMessage is published when a recorded expense pushes a
// category to 80% or more of its budget limit. It carries the full
// evaluation so consumers do not need database access.
type BudgetAlertMessage struct {
	FamilyID     string    `json:"family_id"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	SpentCents   int64     `json:"spent_cents"`
	LimitCents   int64     `json:"limit_cents"`
	Percentage   float64   `json:"percentage"`
	Exceeded     bool      `json:"exceeded"`
	Timestamp    time.Time `json:"timestamp"`
}

// StatementExportMessage asks the worker to append one transaction to
// the family statement. Only the reference travels; the worker fetches
// the row from the database.
type StatementExportMessage struct {
	FamilyID      string    `json:"family_id"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewStatementExportMessage(familyID, transactionID string) *StatementExportMessage {
	return &StatementExportMessage{
		FamilyID:      familyID,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *StatementExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func StatementExportMessageFromJSON(data []byte) (*StatementExportMessage, error) {
	var msg StatementExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
