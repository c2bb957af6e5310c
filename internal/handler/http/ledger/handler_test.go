package ledger_http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CMGeorges/p2p-app-public/internal/app/ledger"
	"github.com/CMGeorges/p2p-app-public/internal/domain"
)

// stubService scripts each operation with a function field; unset operations
// fail the test if reached.
type stubService struct {
	t            *testing.T
	registerFn   func(username, password string) (*domain.Account, error)
	loginFn      func(username, password string) (string, error)
	resolveFn    func(token string) (string, error)
	getAccountFn func(username string) (*domain.Account, error)
	depositFn    func(actor, username string, amount int64) (*domain.Account, error)
	transferFn   func(actor, sender, recipient string, amount int64, message string) (*ledger.TransferResult, error)
	createPoolFn func(name string) (*domain.Pool, error)
	getPoolFn    func(id string) (*domain.Pool, error)
	listPoolsFn  func() ([]domain.Pool, error)
	contributeFn func(actor, username, poolID string, amount int64) (*ledger.ContributeResult, error)
	listFeedFn   func(limit int) ([]domain.FeedItem, error)
}

func (s *stubService) Register(ctx context.Context, username, password string) (*domain.Account, error) {
	require.NotNil(s.t, s.registerFn, "unexpected Register call")
	return s.registerFn(username, password)
}

func (s *stubService) Login(ctx context.Context, username, password string) (string, error) {
	require.NotNil(s.t, s.loginFn, "unexpected Login call")
	return s.loginFn(username, password)
}

func (s *stubService) ResolveSession(token string) (string, error) {
	require.NotNil(s.t, s.resolveFn, "unexpected ResolveSession call")
	return s.resolveFn(token)
}

func (s *stubService) GetAccount(ctx context.Context, username string) (*domain.Account, error) {
	require.NotNil(s.t, s.getAccountFn, "unexpected GetAccount call")
	return s.getAccountFn(username)
}

func (s *stubService) Deposit(ctx context.Context, actor, username string, amount int64) (*domain.Account, error) {
	require.NotNil(s.t, s.depositFn, "unexpected Deposit call")
	return s.depositFn(actor, username, amount)
}

func (s *stubService) Transfer(ctx context.Context, actor, sender, recipient string, amount int64, message string) (*ledger.TransferResult, error) {
	require.NotNil(s.t, s.transferFn, "unexpected Transfer call")
	return s.transferFn(actor, sender, recipient, amount, message)
}

func (s *stubService) CreatePool(ctx context.Context, name string) (*domain.Pool, error) {
	require.NotNil(s.t, s.createPoolFn, "unexpected CreatePool call")
	return s.createPoolFn(name)
}

func (s *stubService) GetPool(ctx context.Context, id string) (*domain.Pool, error) {
	require.NotNil(s.t, s.getPoolFn, "unexpected GetPool call")
	return s.getPoolFn(id)
}

func (s *stubService) ListPools(ctx context.Context) ([]domain.Pool, error) {
	require.NotNil(s.t, s.listPoolsFn, "unexpected ListPools call")
	return s.listPoolsFn()
}

func (s *stubService) Contribute(ctx context.Context, actor, username, poolID string, amount int64) (*ledger.ContributeResult, error) {
	require.NotNil(s.t, s.contributeFn, "unexpected Contribute call")
	return s.contributeFn(actor, username, poolID, amount)
}

func (s *stubService) ListFeed(ctx context.Context, limit int) ([]domain.FeedItem, error) {
	require.NotNil(s.t, s.listFeedFn, "unexpected ListFeed call")
	return s.listFeedFn(limit)
}

func newTestRouter(t *testing.T, svc *stubService) chi.Router {
	t.Helper()
	svc.t = t
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterCreated(t *testing.T) {
	svc := &stubService{
		registerFn: func(username, password string) (*domain.Account, error) {
			assert.Equal(t, "alice", username)
			return &domain.Account{ID: "acc-1", Username: "alice"}, nil
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/users", "", RegisterRequest{Username: "alice", Password: "s3cret"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, int64(0), resp.Balance)
}

func TestRegisterConflict(t *testing.T) {
	svc := &stubService{
		registerFn: func(username, password string) (*domain.Account, error) {
			return nil, domain.ErrUsernameTaken
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/users", "", RegisterRequest{Username: "alice"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginReturnsToken(t *testing.T) {
	svc := &stubService{
		loginFn: func(username, password string) (string, error) {
			return "tok-123", nil
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/login", "", LoginRequest{Username: "alice", Password: "s3cret"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok-123", resp.Token)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := &stubService{
		loginFn: func(username, password string) (string, error) {
			return "", domain.ErrAccountNotFound
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/login", "", LoginRequest{Username: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDepositRequiresToken(t *testing.T) {
	svc := &stubService{}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/deposit", "", DepositRequest{Username: "alice", Amount: 100})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDepositRejectsUnknownToken(t *testing.T) {
	svc := &stubService{
		resolveFn: func(token string) (string, error) {
			return "", domain.ErrInvalidSession
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/deposit", "bad-token", DepositRequest{Username: "alice", Amount: 100})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDepositPassesActorFromSession(t *testing.T) {
	svc := &stubService{
		resolveFn: func(token string) (string, error) {
			assert.Equal(t, "tok-123", token)
			return "alice", nil
		},
		depositFn: func(actor, username string, amount int64) (*domain.Account, error) {
			assert.Equal(t, "alice", actor)
			return &domain.Account{Username: username, Balance: 1000 + amount}, nil
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/deposit", "tok-123", DepositRequest{Username: "alice", Amount: 500})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1500), resp.Balance)
}

func TestTransferForbiddenActor(t *testing.T) {
	svc := &stubService{
		resolveFn: func(token string) (string, error) {
			return "bob", nil
		},
		transferFn: func(actor, sender, recipient string, amount int64, message string) (*ledger.TransferResult, error) {
			assert.Equal(t, "bob", actor)
			return nil, domain.ErrForbidden
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/transfer", "tok-123",
		TransferRequest{Sender: "alice", Recipient: "bob", Amount: 100})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransferInsufficientFunds(t *testing.T) {
	svc := &stubService{
		resolveFn: func(token string) (string, error) {
			return "alice", nil
		},
		transferFn: func(actor, sender, recipient string, amount int64, message string) (*ledger.TransferResult, error) {
			return nil, domain.ErrInsufficientFunds
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/transfer", "tok-123",
		TransferRequest{Sender: "alice", Recipient: "bob", Amount: 999999})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferSuccess(t *testing.T) {
	now := time.Now()
	svc := &stubService{
		resolveFn: func(token string) (string, error) {
			return "alice", nil
		},
		transferFn: func(actor, sender, recipient string, amount int64, message string) (*ledger.TransferResult, error) {
			return &ledger.TransferResult{
				SenderBalance:    600,
				RecipientBalance: 400,
				Transaction: &domain.Transaction{
					ID:        1,
					Amount:    amount,
					Message:   message,
					CreatedAt: now,
				},
			}, nil
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/transfer", "tok-123",
		TransferRequest{Sender: "alice", Recipient: "bob", Amount: 400, Message: "lunch"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp TransferResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(600), resp.SenderBalance)
	assert.Equal(t, int64(400), resp.RecipientBalance)
	assert.Equal(t, "lunch", resp.Message)
}

func TestFeedIsPublicAndLimited(t *testing.T) {
	svc := &stubService{
		listFeedFn: func(limit int) ([]domain.FeedItem, error) {
			assert.Equal(t, 5, limit)
			return []domain.FeedItem{
				{Sender: "alice", Recipient: "bob", Amount: 400, Message: "lunch"},
			}, nil
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodGet, "/feed?limit=5", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var items []domain.FeedItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "alice", items[0].Sender)
}

func TestFeedEmptyIsJSONArray(t *testing.T) {
	svc := &stubService{
		listFeedFn: func(limit int) ([]domain.FeedItem, error) {
			return nil, nil
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodGet, "/feed", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestContributeRoutesPoolID(t *testing.T) {
	svc := &stubService{
		resolveFn: func(token string) (string, error) {
			return "alice", nil
		},
		contributeFn: func(actor, username, poolID string, amount int64) (*ledger.ContributeResult, error) {
			assert.Equal(t, "pool-7", poolID)
			assert.Equal(t, "alice", actor)
			return &ledger.ContributeResult{AccountBalance: 700, PoolBalance: 300}, nil
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodPost, "/pools/pool-7/contributions", "tok-123",
		ContributeRequest{Username: "alice", Amount: 300})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ContributeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(700), resp.Balance)
	assert.Equal(t, int64(300), resp.PoolBalance)
	assert.Equal(t, "pool-7", resp.PoolID)
}

func TestGetPoolNotFound(t *testing.T) {
	svc := &stubService{
		getPoolFn: func(id string) (*domain.Pool, error) {
			return nil, domain.ErrPoolNotFound
		},
	}
	rec := doJSON(t, newTestRouter(t, svc), http.MethodGet, "/pools/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
