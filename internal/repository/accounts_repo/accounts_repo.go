package accounts_repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CMGeorges/p2p-app-public/internal/domain"

	"github.com/lib/pq"
)

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateAccountTx(ctx context.Context, querier domain.Querier, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, username, balance, password_digest, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var digest sql.NullString
	if account.PasswordDigest != "" {
		digest = sql.NullString{String: account.PasswordDigest, Valid: true}
	}
	_, err := querier.ExecContext(ctx, query,
		account.ID, account.Username, account.Balance, digest, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create account %q: %w", account.Username, err)
	}
	return nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, querier domain.Querier, username string) (*domain.Account, error) {
	query := `
		SELECT id, username, balance, password_digest, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`
	return r.scanAccount(querier.QueryRowContext(ctx, query, username), username)
}

// LockByUsernameTx locks the account row so the read-check-write sequence in
// Transfer/Contribute is not subject to a lost-update race. Must run inside
// a transaction.
func (r *accountRepository) LockByUsernameTx(ctx context.Context, querier domain.Querier, username string) (*domain.Account, error) {
	query := `
		SELECT id, username, balance, password_digest, created_at, updated_at
		FROM accounts
		WHERE username = $1
		FOR UPDATE
	`
	return r.scanAccount(querier.QueryRowContext(ctx, query, username), username)
}

func (r *accountRepository) scanAccount(row *sql.Row, username string) (*domain.Account, error) {
	account := &domain.Account{}
	var digest sql.NullString
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Balance,
		&digest,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %q: %w", username, err)
	}
	if digest.Valid {
		account.PasswordDigest = digest.String
	}
	return account, nil
}

func (r *accountRepository) UpdateBalanceTx(ctx context.Context, querier domain.Querier, accountID string, amount int64) error {
	checkBalanceQuery := `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`
	var currentBalance int64
	err := querier.QueryRowContext(ctx, checkBalanceQuery, accountID).Scan(&currentBalance)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("failed to check current balance for account %s: %w", accountID, err)
	}
	if currentBalance+amount < 0 {
		return domain.ErrInsufficientFunds
	}

	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = $2
		WHERE id = $3
	`
	res, err := querier.ExecContext(ctx, query, amount, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update account balance for %s: %w", accountID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
