package pools_repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CMGeorges/p2p-app-public/internal/domain"
)

type poolRepository struct {
	db *sql.DB
}

func NewPoolRepository(db *sql.DB) *poolRepository {
	return &poolRepository{db: db}
}

func (r *poolRepository) CreatePoolTx(ctx context.Context, querier domain.Querier, pool *domain.Pool) error {
	query := `
		INSERT INTO pools (id, name, balance, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := querier.ExecContext(ctx, query, pool.ID, pool.Name, pool.Balance, pool.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pool %q: %w", pool.Name, err)
	}
	return nil
}

func (r *poolRepository) GetPool(ctx context.Context, querier domain.Querier, id string) (*domain.Pool, error) {
	query := `
		SELECT id, name, balance, created_at
		FROM pools
		WHERE id = $1
	`
	return r.scanPool(querier.QueryRowContext(ctx, query, id), id)
}

// LockPoolTx locks the pool row for the duration of the surrounding
// transaction so concurrent contributions serialize.
func (r *poolRepository) LockPoolTx(ctx context.Context, querier domain.Querier, id string) (*domain.Pool, error) {
	query := `
		SELECT id, name, balance, created_at
		FROM pools
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanPool(querier.QueryRowContext(ctx, query, id), id)
}

func (r *poolRepository) scanPool(row *sql.Row, id string) (*domain.Pool, error) {
	pool := &domain.Pool{}
	err := row.Scan(&pool.ID, &pool.Name, &pool.Balance, &pool.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %s: %w", id, err)
	}
	return pool, nil
}

func (r *poolRepository) ListPools(ctx context.Context, querier domain.Querier) ([]domain.Pool, error) {
	query := `
		SELECT id, name, balance, created_at
		FROM pools
		ORDER BY created_at DESC
	`
	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	defer rows.Close()

	var pools []domain.Pool
	for rows.Next() {
		var pool domain.Pool
		if err := rows.Scan(&pool.ID, &pool.Name, &pool.Balance, &pool.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, pool)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pools: %w", err)
	}

	return pools, nil
}

func (r *poolRepository) AddToBalanceTx(ctx context.Context, querier domain.Querier, id string, amount int64) error {
	query := `
		UPDATE pools
		SET balance = balance + $1
		WHERE id = $2
	`
	res, err := querier.ExecContext(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to update pool balance for %s: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrPoolNotFound
	}
	return nil
}

func (r *poolRepository) CreateContributionTx(ctx context.Context, querier domain.Querier, contribution *domain.PoolContribution) error {
	query := `
		INSERT INTO pool_contributions (account_id, pool_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := querier.QueryRowContext(ctx, query,
		contribution.AccountID,
		contribution.PoolID,
		contribution.Amount,
		contribution.CreatedAt,
	).Scan(&contribution.ID)
	if err != nil {
		return fmt.Errorf("failed to create pool contribution: %w", err)
	}
	return nil
}
