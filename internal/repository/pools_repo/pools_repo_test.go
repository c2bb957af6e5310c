package pools_repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/CMGeorges/p2p-app-public/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPoolNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPoolRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, balance, created_at")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "balance", "created_at"}))

	_, err = repo.GetPool(context.Background(), db, "missing")
	assert.ErrorIs(t, err, domain.ErrPoolNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToBalanceMissingPool(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPoolRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pools")).
		WithArgs(int64(500), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.AddToBalanceTx(context.Background(), db, "missing", 500)
	assert.ErrorIs(t, err, domain.ErrPoolNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContributionAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPoolRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO pool_contributions")).
		WithArgs("acc-1", "pool-1", int64(300), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	contribution := &domain.PoolContribution{
		AccountID: "acc-1",
		PoolID:    "pool-1",
		Amount:    300,
		CreatedAt: time.Now(),
	}
	err = repo.CreateContributionTx(context.Background(), db, contribution)
	require.NoError(t, err)
	assert.Equal(t, int64(3), contribution.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
