package ledger_http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/CMGeorges/p2p-app-public/internal/app/ledger"
	"github.com/CMGeorges/p2p-app-public/internal/domain"
)

type LedgerHandler struct {
	service ledger.LedgerService
	logger  *zap.Logger
}

func NewLedgerHandler(s ledger.LedgerService, l *zap.Logger) *LedgerHandler {
	return &LedgerHandler{service: s, logger: l}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

type AccountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type DepositRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
}

type BalanceResponse struct {
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

type TransferRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
	Message   string `json:"message,omitempty"`
}

type TransferResponse struct {
	Sender           string    `json:"sender"`
	Recipient        string    `json:"recipient"`
	Amount           int64     `json:"amount"`
	Message          string    `json:"message"`
	Timestamp        time.Time `json:"timestamp"`
	SenderBalance    int64     `json:"sender_balance"`
	RecipientBalance int64     `json:"recipient_balance"`
}

type CreatePoolRequest struct {
	Name string `json:"name"`
}

type PoolResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type ContributeRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
}

type ContributeResponse struct {
	Username    string `json:"username"`
	Balance     int64  `json:"balance"`
	PoolID      string `json:"pool_id"`
	PoolBalance int64  `json:"pool_balance"`
}

func (h *LedgerHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Register", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, AccountResponse{
		ID:       account.ID,
		Username: account.Username,
		Balance:  account.Balance,
	})
}

func (h *LedgerHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Login", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *LedgerHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	account, err := h.service.GetAccount(r.Context(), username)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, AccountResponse{
		ID:       account.ID,
		Username: account.Username,
		Balance:  account.Balance,
	})
}

func (h *LedgerHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Deposit", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.service.Deposit(r.Context(), ActorFromContext(r), req.Username, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, BalanceResponse{
		Username: account.Username,
		Balance:  account.Balance,
	})
}

func (h *LedgerHandler) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Transfer", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Transfer(r.Context(), ActorFromContext(r), req.Sender, req.Recipient, req.Amount, req.Message)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, TransferResponse{
		Sender:           req.Sender,
		Recipient:        req.Recipient,
		Amount:           result.Transaction.Amount,
		Message:          result.Transaction.Message,
		Timestamp:        result.Transaction.CreatedAt,
		SenderBalance:    result.SenderBalance,
		RecipientBalance: result.RecipientBalance,
	})
}

func (h *LedgerHandler) FeedHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	items, err := h.service.ListFeed(r.Context(), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if items == nil {
		items = []domain.FeedItem{}
	}

	h.respondJSON(w, http.StatusOK, items)
}

func (h *LedgerHandler) CreatePoolHandler(w http.ResponseWriter, r *http.Request) {
	var req CreatePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreatePool", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pool, err := h.service.CreatePool(r.Context(), req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, PoolResponse{
		ID:      pool.ID,
		Name:    pool.Name,
		Balance: pool.Balance,
	})
}

func (h *LedgerHandler) GetPoolHandler(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "id")

	pool, err := h.service.GetPool(r.Context(), poolID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, PoolResponse{
		ID:      pool.ID,
		Name:    pool.Name,
		Balance: pool.Balance,
	})
}

func (h *LedgerHandler) ListPoolsHandler(w http.ResponseWriter, r *http.Request) {
	pools, err := h.service.ListPools(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp := make([]PoolResponse, 0, len(pools))
	for _, pool := range pools {
		resp = append(resp, PoolResponse{
			ID:      pool.ID,
			Name:    pool.Name,
			Balance: pool.Balance,
		})
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) ContributeHandler(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "id")

	var req ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Contribute", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Contribute(r.Context(), ActorFromContext(r), req.Username, poolID, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, ContributeResponse{
		Username:    req.Username,
		Balance:     result.AccountBalance,
		PoolID:      poolID,
		PoolBalance: result.PoolBalance,
	})
}

func (h *LedgerHandler) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *LedgerHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPoolName),
		errors.Is(err, domain.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidSession):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrSenderNotFound),
		errors.Is(err, domain.ErrRecipientNotFound),
		errors.Is(err, domain.ErrPoolNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrUsernameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
