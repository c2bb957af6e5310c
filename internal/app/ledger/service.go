package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CMGeorges/p2p-app-public/internal/auth"
	"github.com/CMGeorges/p2p-app-public/internal/domain"
	"github.com/CMGeorges/p2p-app-public/internal/outbox"
	"github.com/CMGeorges/p2p-app-public/internal/repository/accounts_repo"
	"github.com/CMGeorges/p2p-app-public/internal/repository/outbox_repo"
	"github.com/CMGeorges/p2p-app-public/internal/repository/pools_repo"
	"github.com/CMGeorges/p2p-app-public/internal/repository/transactions_repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultFeedLimit caps the feed when the caller does not ask for a limit.
const DefaultFeedLimit = 100

// TransferResult carries both post-transfer balances and the created record.
type TransferResult struct {
	SenderBalance    int64
	RecipientBalance int64
	Transaction      *domain.Transaction
}

// ContributeResult carries the contributor's balance and the pool aggregate
// after a contribution.
type ContributeResult struct {
	AccountBalance int64
	PoolBalance    int64
}

type LedgerService interface {
	Register(ctx context.Context, username, password string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, error)
	ResolveSession(token string) (string, error)
	GetAccount(ctx context.Context, username string) (*domain.Account, error)
	Deposit(ctx context.Context, actor, username string, amount int64) (*domain.Account, error)
	Transfer(ctx context.Context, actor, sender, recipient string, amount int64, message string) (*TransferResult, error)
	CreatePool(ctx context.Context, name string) (*domain.Pool, error)
	GetPool(ctx context.Context, id string) (*domain.Pool, error)
	ListPools(ctx context.Context) ([]domain.Pool, error)
	Contribute(ctx context.Context, actor, username, poolID string, amount int64) (*ContributeResult, error)
	ListFeed(ctx context.Context, limit int) ([]domain.FeedItem, error)
}

type ledgerService struct {
	db              *sql.DB
	accountRepo     accounts_repo.AccountRepository
	transactionRepo transactions_repo.TransactionRepository
	poolRepo        pools_repo.PoolRepository
	outboxRepo      outbox_repo.OutboxRepository
	sessions        auth.SessionStore
	logger          *zap.Logger
}

func NewLedgerService(
	db *sql.DB,
	accountRepo accounts_repo.AccountRepository,
	transactionRepo transactions_repo.TransactionRepository,
	poolRepo pools_repo.PoolRepository,
	outboxRepo outbox_repo.OutboxRepository,
	sessions auth.SessionStore,
	logger *zap.Logger,
) LedgerService {
	return &ledgerService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		poolRepo:        poolRepo,
		outboxRepo:      outboxRepo,
		sessions:        sessions,
		logger:          logger,
	}
}

func (s *ledgerService) Register(ctx context.Context, username, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}

	var digest string
	if password != "" {
		if len(password) < domain.MinPasswordLength {
			return nil, domain.ErrPasswordTooShort
		}
		var err error
		digest, err = auth.HashPassword(password)
		if err != nil {
			s.logger.Error("Failed to hash password", zap.String("username", username), zap.Error(err))
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	now := time.Now()
	account := &domain.Account{
		ID:             uuid.NewString(),
		Username:       username,
		Balance:        0,
		PasswordDigest: digest,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.accountRepo.CreateAccountTx(ctx, s.db, account); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			s.logger.Warn("Attempt to register existing username", zap.String("username", username))
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to register account %q: %w", username, err)
	}

	s.logger.Info("Account registered", zap.String("account_id", account.ID), zap.String("username", username))
	return account, nil
}

func (s *ledgerService) Login(ctx context.Context, username, password string) (string, error) {
	account, err := s.accountRepo.GetByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", domain.ErrAccountNotFound
		}
		return "", fmt.Errorf("failed to look up account %q: %w", username, err)
	}

	if account.PasswordDigest == "" || !auth.CheckPassword(password, account.PasswordDigest) {
		s.logger.Warn("Failed login attempt", zap.String("username", username))
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(username)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Info("Session issued", zap.String("username", username))
	return token, nil
}

func (s *ledgerService) ResolveSession(token string) (string, error) {
	return s.sessions.Resolve(token)
}

func (s *ledgerService) GetAccount(ctx context.Context, username string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %q: %w", username, err)
	}
	return account, nil
}

func (s *ledgerService) Deposit(ctx context.Context, actor, username string, amount int64) (*domain.Account, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if actor != username {
		s.logger.Warn("Deposit actor mismatch", zap.String("actor", actor), zap.String("target", username))
		return nil, domain.ErrForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for deposit", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	account, err := s.accountRepo.LockByUsernameTx(ctx, tx, username)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account %q for deposit: %w", username, err)
	}

	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, account.ID, amount); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to credit account %q: %w", username, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit deposit", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	account.Balance += amount
	s.logger.Info("Deposit completed",
		zap.String("username", username),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", account.Balance))
	return account, nil
}

func (s *ledgerService) Transfer(ctx context.Context, actor, sender, recipient string, amount int64, message string) (*TransferResult, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if actor != sender {
		s.logger.Warn("Transfer actor mismatch", zap.String("actor", actor), zap.String("sender", sender))
		return nil, domain.ErrForbidden
	}
	if message == "" {
		message = domain.DefaultTransferMessage
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for transfer", zap.String("sender", sender), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	result, err := s.transferTx(ctx, tx, sender, recipient, amount, message)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back transfer", zap.String("sender", sender), zap.Error(rbErr))
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transfer", zap.String("sender", sender), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Transfer completed",
		zap.String("sender", sender),
		zap.String("recipient", recipient),
		zap.Int64("amount", amount))
	return result, nil
}

func (s *ledgerService) transferTx(ctx context.Context, tx *sql.Tx, sender, recipient string, amount int64, message string) (*TransferResult, error) {
	// Rows are locked in username order so two opposing transfers cannot
	// deadlock on each other's locks.
	accounts := make(map[string]*domain.Account, 2)
	for _, username := range lockOrder(sender, recipient) {
		account, err := s.accountRepo.LockByUsernameTx(ctx, tx, username)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				if username == sender {
					return nil, domain.ErrSenderNotFound
				}
				// The recipient row is missing, but the sender may not
				// have been visited yet; a missing sender takes priority.
				if _, ok := accounts[sender]; !ok {
					if _, senderErr := s.accountRepo.GetByUsername(ctx, tx, sender); errors.Is(senderErr, domain.ErrAccountNotFound) {
						return nil, domain.ErrSenderNotFound
					}
				}
				return nil, domain.ErrRecipientNotFound
			}
			return nil, fmt.Errorf("failed to lock account %q for transfer: %w", username, err)
		}
		accounts[username] = account
	}

	senderAccount := accounts[sender]
	recipientAccount := accounts[recipient]

	if senderAccount.Balance < amount {
		return nil, domain.ErrInsufficientFunds
	}

	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, senderAccount.ID, -amount); err != nil {
		return nil, fmt.Errorf("failed to debit sender %q: %w", sender, err)
	}
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, recipientAccount.ID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit recipient %q: %w", recipient, err)
	}

	now := time.Now()
	transaction := &domain.Transaction{
		SenderID:    senderAccount.ID,
		RecipientID: recipientAccount.ID,
		Amount:      amount,
		Message:     message,
		CreatedAt:   now,
	}
	if err := s.transactionRepo.CreateTx(ctx, tx, transaction); err != nil {
		return nil, fmt.Errorf("failed to record transfer from %q to %q: %w", sender, recipient, err)
	}

	payload, err := outbox.PrepareTransferEventPayload(domain.EventTypeTransferCompleted, sender, recipient, amount, message, now)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare transfer event payload: %w", err)
	}
	outboxMsg := &domain.OutboxMessage{
		ID:        uuid.NewString(),
		EventType: domain.EventTypeTransferCompleted,
		Payload:   payload,
		Status:    domain.OutboxStatusPending,
		CreatedAt: now,
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, tx, outboxMsg); err != nil {
		return nil, fmt.Errorf("failed to create outbox message for transfer: %w", err)
	}

	result := &TransferResult{
		SenderBalance:    senderAccount.Balance - amount,
		RecipientBalance: recipientAccount.Balance + amount,
		Transaction:      transaction,
	}
	if sender == recipient {
		// Net no-op on balance, still recorded.
		result.SenderBalance = senderAccount.Balance
		result.RecipientBalance = senderAccount.Balance
	}
	return result, nil
}

func (s *ledgerService) CreatePool(ctx context.Context, name string) (*domain.Pool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidPoolName
	}

	pool := &domain.Pool{
		ID:        uuid.NewString(),
		Name:      name,
		Balance:   0,
		CreatedAt: time.Now(),
	}
	if err := s.poolRepo.CreatePoolTx(ctx, s.db, pool); err != nil {
		return nil, fmt.Errorf("failed to create pool %q: %w", name, err)
	}

	s.logger.Info("Pool created", zap.String("pool_id", pool.ID), zap.String("name", name))
	return pool, nil
}

func (s *ledgerService) GetPool(ctx context.Context, id string) (*domain.Pool, error) {
	pool, err := s.poolRepo.GetPool(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, domain.ErrPoolNotFound) {
			return nil, domain.ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %s: %w", id, err)
	}
	return pool, nil
}

func (s *ledgerService) ListPools(ctx context.Context) ([]domain.Pool, error) {
	pools, err := s.poolRepo.ListPools(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	return pools, nil
}

func (s *ledgerService) Contribute(ctx context.Context, actor, username, poolID string, amount int64) (*ContributeResult, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if actor != username {
		s.logger.Warn("Contribution actor mismatch", zap.String("actor", actor), zap.String("account", username))
		return nil, domain.ErrForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for contribution", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	result, err := s.contributeTx(ctx, tx, username, poolID, amount)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back contribution", zap.String("username", username), zap.Error(rbErr))
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit contribution", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Contribution completed",
		zap.String("username", username),
		zap.String("pool_id", poolID),
		zap.Int64("amount", amount))
	return result, nil
}

func (s *ledgerService) contributeTx(ctx context.Context, tx *sql.Tx, username, poolID string, amount int64) (*ContributeResult, error) {
	// Accounts are always locked before pools.
	account, err := s.accountRepo.LockByUsernameTx(ctx, tx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account %q for contribution: %w", username, err)
	}

	pool, err := s.poolRepo.LockPoolTx(ctx, tx, poolID)
	if err != nil {
		if errors.Is(err, domain.ErrPoolNotFound) {
			return nil, domain.ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to lock pool %s for contribution: %w", poolID, err)
	}

	if account.Balance < amount {
		return nil, domain.ErrInsufficientFunds
	}

	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, account.ID, -amount); err != nil {
		return nil, fmt.Errorf("failed to debit account %q: %w", username, err)
	}
	if err := s.poolRepo.AddToBalanceTx(ctx, tx, pool.ID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit pool %s: %w", poolID, err)
	}

	now := time.Now()
	contribution := &domain.PoolContribution{
		AccountID: account.ID,
		PoolID:    pool.ID,
		Amount:    amount,
		CreatedAt: now,
	}
	if err := s.poolRepo.CreateContributionTx(ctx, tx, contribution); err != nil {
		return nil, fmt.Errorf("failed to record contribution to pool %s: %w", poolID, err)
	}

	payload, err := outbox.PrepareContributionEventPayload(domain.EventTypeContributionCompleted, username, pool.ID, amount, now)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare contribution event payload: %w", err)
	}
	outboxMsg := &domain.OutboxMessage{
		ID:        uuid.NewString(),
		EventType: domain.EventTypeContributionCompleted,
		Payload:   payload,
		Status:    domain.OutboxStatusPending,
		CreatedAt: now,
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, tx, outboxMsg); err != nil {
		return nil, fmt.Errorf("failed to create outbox message for contribution: %w", err)
	}

	return &ContributeResult{
		AccountBalance: account.Balance - amount,
		PoolBalance:    pool.Balance + amount,
	}, nil
}

func (s *ledgerService) ListFeed(ctx context.Context, limit int) ([]domain.FeedItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	items, err := s.transactionRepo.ListRecent(ctx, s.db, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	return items, nil
}

// lockOrder returns the usernames sorted; a self-transfer locks once.
func lockOrder(a, b string) []string {
	if a == b {
		return []string{a}
	}
	if a < b {
		return []string{a, b}
	}
	return []string{b, a}
}
