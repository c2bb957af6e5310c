package accounts_repo

import (
	"context"

	"github.com/CMGeorges/p2p-app-public/internal/domain"
)

type AccountRepository interface {
	CreateAccountTx(ctx context.Context, querier domain.Querier, account *domain.Account) error
	GetByUsername(ctx context.Context, querier domain.Querier, username string) (*domain.Account, error)
	LockByUsernameTx(ctx context.Context, querier domain.Querier, username string) (*domain.Account, error)
	UpdateBalanceTx(ctx context.Context, querier domain.Querier, accountID string, amount int64) error
}
