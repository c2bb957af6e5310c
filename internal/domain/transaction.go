package domain

import (
	"errors"
	"time"
)

var ErrSenderNotFound = errors.New("sender account not found")
var ErrRecipientNotFound = errors.New("recipient account not found")

// DefaultTransferMessage is used when a transfer carries no message.
const DefaultTransferMessage = "Payment"

// Transaction is an immutable record of a completed transfer.
type Transaction struct {
	ID          int64
	SenderID    string
	RecipientID string
	Amount      int64
	Message     string
	CreatedAt   time.Time
}

// FeedItem is a transaction joined with the usernames on both sides,
// as served by the activity feed.
type FeedItem struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Amount    int64     `json:"amount"`
	Message   string    `json:"message"`
}
