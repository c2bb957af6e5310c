package pools_repo

import (
	"context"

	"github.com/CMGeorges/p2p-app-public/internal/domain"
)

type PoolRepository interface {
	CreatePoolTx(ctx context.Context, querier domain.Querier, pool *domain.Pool) error
	GetPool(ctx context.Context, querier domain.Querier, id string) (*domain.Pool, error)
	LockPoolTx(ctx context.Context, querier domain.Querier, id string) (*domain.Pool, error)
	ListPools(ctx context.Context, querier domain.Querier) ([]domain.Pool, error)
	AddToBalanceTx(ctx context.Context, querier domain.Querier, id string, amount int64) error
	CreateContributionTx(ctx context.Context, querier domain.Querier, contribution *domain.PoolContribution) error
}
