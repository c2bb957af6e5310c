package domain

import (
	"errors"
	"time"
)

var ErrPoolNotFound = errors.New("pool not found")
var ErrInvalidPoolName = errors.New("pool name must not be empty")

// Pool is a shared pot. Balance is the aggregate of all contributions and
// is only ever updated in the same transaction that inserts a contribution.
type Pool struct {
	ID        string
	Name      string
	Balance   int64
	CreatedAt time.Time
}

// PoolContribution is an immutable record linking an account to a pool.
type PoolContribution struct {
	ID        int64
	AccountID string
	PoolID    string
	Amount    int64
	CreatedAt time.Time
}
