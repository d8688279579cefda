package events

import (
	"encoding/json"
	"time"

	"expensedash/internal/core"
)

// ExpenseCreatedMessage notifies downstream consumers that a new expense was
// accepted by the service. It carries the submitted fields, not the assigned
// identity; consumers needing the record re-query the service.
type ExpenseCreatedMessage struct {
	Header    string        `json:"header"`
	Category  core.Category `json:"category"`
	Cost      string        `json:"cost"`
	Date      string        `json:"date"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewExpenseCreatedMessage builds a message from a submitted draft.
func NewExpenseCreatedMessage(d core.Draft) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		Header:    d.Header,
		Category:  d.Category,
		Cost:      d.Cost,
		Date:      d.Date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseCreatedMessageFromJSON decodes a message from JSON bytes.
func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
