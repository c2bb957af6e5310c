package transactions_repo

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

func TestCreateAssignsSerialID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs("sender-id", "recipient-id", int64(400), "lunch", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	transaction := &domain.Transaction{
		SenderID:    "sender-id",
		RecipientID: "recipient-id",
		Amount:      400,
		Message:     "lunch",
		CreatedAt:   time.Now(),
	}
	err = repo.CreateTx(context.Background(), db, transaction)
	require.NoError(t, err)
	assert.Equal(t, int64(7), transaction.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTransactionRepository(db)

	earlier := time.Now().Add(-time.Minute)
	later := time.Now()
	rows := sqlmock.NewRows([]string{"created_at", "sender", "recipient", "amount", "message"}).
		AddRow(later, "bob", "carol", int64(200), "coffee").
		AddRow(earlier, "alice", "bob", int64(400), "lunch")
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY t.created_at DESC, t.id DESC")).
		WithArgs(100).
		WillReturnRows(rows)

	items, err := repo.ListRecent(context.Background(), db, 100)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "bob", items[0].Sender)
	assert.Equal(t, "alice", items[1].Sender)
	assert.Equal(t, int64(400), items[1].Amount)
	assert.Equal(t, "lunch", items[1].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}
