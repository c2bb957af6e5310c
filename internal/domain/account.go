package domain

import (
	"errors"
	"time"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrUsernameTaken = errors.New("username already taken")
var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrInvalidUsername = errors.New("username must not be empty")
var ErrPasswordTooShort = errors.New("password too short")
var ErrInvalidAmount = errors.New("amount must be positive")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidSession = errors.New("missing or invalid session token")
var ErrForbidden = errors.New("not allowed to act on this account")

// MinPasswordLength applies to password-based registration only;
// accounts without a password can be created but never logged into.
const MinPasswordLength = 4

// Account balances are in minor units (cents).
type Account struct {
	ID             string
	Username       string
	Balance        int64
	PasswordDigest string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
