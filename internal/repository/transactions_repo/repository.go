package transactions_repo

import (
	"context"

	"github.com/CMGeorges/p2p-app-public/internal/domain"
)

type TransactionRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, transaction *domain.Transaction) error
	ListRecent(ctx context.Context, querier domain.Querier, limit int) ([]domain.FeedItem, error)
}
