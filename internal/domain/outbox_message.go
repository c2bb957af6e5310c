package domain

import "time"

type OutboxMessageStatus string

const (
	OutboxStatusPending OutboxMessageStatus = "PENDING"
	OutboxStatusSent    OutboxMessageStatus = "SENT"
	OutboxStatusFailed  OutboxMessageStatus = "FAILED"
)

const (
	EventTypeTransferCompleted     = "transfer.completed"
	EventTypeContributionCompleted = "contribution.completed"
)

// OutboxMessage is an activity event waiting to be published to Kafka.
// It is written in the same transaction as the balance mutation it describes.
type OutboxMessage struct {
	ID        string
	EventType string
	Payload   []byte
	Status    OutboxMessageStatus
	CreatedAt time.Time
	SentAt    *time.Time
}
