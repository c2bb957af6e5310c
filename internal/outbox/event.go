package outbox

import (
	"encoding/json"
	"time"
)

// ActivityEvent is the payload published for completed transfers and pool
// contributions. Amounts are minor units.
type ActivityEvent struct {
	EventType string    `json:"event_type"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient,omitempty"`
	PoolID    string    `json:"pool_id,omitempty"`
	Amount    int64     `json:"amount"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func PrepareTransferEventPayload(eventType, sender, recipient string, amount int64, message string, eventTime time.Time) ([]byte, error) {
	event := ActivityEvent{
		EventType: eventType,
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Message:   message,
		Timestamp: eventTime,
	}
	return json.Marshal(event)
}

func PrepareContributionEventPayload(eventType, contributor, poolID string, amount int64, eventTime time.Time) ([]byte, error) {
	event := ActivityEvent{
		EventType: eventType,
		Sender:    contributor,
		PoolID:    poolID,
		Amount:    amount,
		Timestamp: eventTime,
	}
	return json.Marshal(event)
}
