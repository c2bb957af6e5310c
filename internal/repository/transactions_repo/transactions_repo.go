package transactions_repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CMGeorges/p2p-app-public/internal/domain"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *transactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) CreateTx(ctx context.Context, querier domain.Querier, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (sender_id, recipient_id, amount, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := querier.QueryRowContext(ctx, query,
		transaction.SenderID,
		transaction.RecipientID,
		transaction.Amount,
		transaction.Message,
		transaction.CreatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListRecent returns the newest transactions first; the serial id breaks
// ties between records sharing a timestamp (later insertion first).
func (r *transactionRepository) ListRecent(ctx context.Context, querier domain.Querier, limit int) ([]domain.FeedItem, error) {
	query := `
		SELECT t.created_at, su.username, ru.username, t.amount, t.message
		FROM transactions t
		JOIN accounts su ON t.sender_id = su.id
		JOIN accounts ru ON t.recipient_id = ru.id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $1
	`
	rows, err := querier.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	defer rows.Close()

	var items []domain.FeedItem
	for rows.Next() {
		var item domain.FeedItem
		err := rows.Scan(
			&item.Timestamp,
			&item.Sender,
			&item.Recipient,
			&item.Amount,
			&item.Message,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed items: %w", err)
	}

	return items, nil
}
