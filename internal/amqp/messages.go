package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Action is what happened to a transaction.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// TransactionEvent is published after the backend confirms a mutation.
// Deleted events only carry the transaction's ID and Type.
type TransactionEvent struct {
	ID          uuid.UUID        `json:"id"`
	Action      Action           `json:"action"`
	UserID      string           `json:"userId"`
	SessionID   string           `json:"sessionId,omitempty"`
	Transaction core.Transaction `json:"transaction"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

// NewTransactionEvent stamps a fresh event id and the current time.
func NewTransactionEvent(action Action, userID, sessionID string, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		ID:          uuid.New(),
		Action:      action,
		UserID:      userID,
		SessionID:   sessionID,
		Transaction: tx,
		OccurredAt:  time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity-checks an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Action.Valid() {
		return nil, fmt.Errorf("unknown action %q", e.Action)
	}
	if !e.Transaction.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidType, e.Transaction.Type)
	}
	if e.Transaction.ID == "" {
		return nil, fmt.Errorf("event %s has no transaction id", e.ID)
	}
	return &e, nil
}
