// Package atmhttp is the client-facing surface of the ATM service: the
// terminal factory, the four operations, webhook listener registration,
// and the websocket notification feed.
package atmhttp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sapliy/atm-network/internal/atm"
	"github.com/sapliy/atm-network/internal/atm/listeners"
	"github.com/sapliy/atm-network/internal/bank"
	"github.com/sapliy/atm-network/pkg/jsonutil"
	"github.com/sapliy/atm-network/pkg/sessiontoken"
)

type webhookEntry struct {
	terminal *atm.Terminal
	hook     *listeners.Webhook
}

type Server struct {
	pool     *atm.Pool
	security atm.Security
	issuer   *sessiontoken.Issuer
	feed     *listeners.Feed
	redis    *redis.Client
	upgrader websocket.Upgrader

	mu       sync.Mutex
	webhooks map[uuid.UUID]webhookEntry
}

func NewServer(pool *atm.Pool, security atm.Security, issuer *sessiontoken.Issuer,
	feed *listeners.Feed, rdb *redis.Client) *Server {

	return &Server{
		pool:     pool,
		security: security,
		issuer:   issuer,
		feed:     feed,
		redis:    rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		webhooks: make(map[uuid.UUID]webhookEntry),
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	r.HandleFunc("/terminals", s.CreateTerminal).Methods(http.MethodPost)
	r.HandleFunc("/terminals/{id}/deposit", s.Deposit).Methods(http.MethodPost)
	r.HandleFunc("/terminals/{id}/withdraw", s.Withdraw).Methods(http.MethodPost)
	r.HandleFunc("/terminals/{id}/balance", s.Balance).Methods(http.MethodPost)
	r.HandleFunc("/terminals/{id}/transfer", s.Transfer).Methods(http.MethodPost)
	r.HandleFunc("/terminals/{id}/listeners", s.RegisterWebhook).Methods(http.MethodPost)
	r.HandleFunc("/terminals/{id}/listeners/{listenerID}", s.UnregisterWebhook).Methods(http.MethodDelete)
	r.HandleFunc("/feed/token", s.FeedToken).Methods(http.MethodPost)
	r.HandleFunc("/feed", s.Feed).Methods(http.MethodGet)
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "active",
		"service": "atm",
	})
}

// CreateTerminal is the factory operation: every caller gets a fresh
// terminal handle.
func (s *Server) CreateTerminal(w http.ResponseWriter, r *http.Request) {
	t := s.pool.NewTerminal()
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]string{
		"terminal_id": t.ID().String(),
	})
}

func (s *Server) terminal(w http.ResponseWriter, r *http.Request) (*atm.Terminal, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid terminal id")
		return nil, false
	}
	t, ok := s.pool.Terminal(id)
	if !ok {
		jsonutil.WriteError(w, http.StatusNotFound, "Unknown terminal")
		return nil, false
	}
	return t, true
}

type operationRequest struct {
	AccountID int64           `json:"account_id"`
	PIN       int             `json:"pin"`
	Amount    decimal.Decimal `json:"amount"`
}

func (req operationRequest) credential() bank.Credential {
	return bank.Credential{AccountID: req.AccountID, PIN: req.PIN}
}

func (s *Server) Deposit(w http.ResponseWriter, r *http.Request) {
	t, ok := s.terminal(w, r)
	if !ok {
		return
	}
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := t.Deposit(r.Context(), req.credential(), req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Withdraw(w http.ResponseWriter, r *http.Request) {
	t, ok := s.terminal(w, r)
	if !ok {
		return
	}
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := t.Withdraw(r.Context(), req.credential(), req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Balance(w http.ResponseWriter, r *http.Request) {
	t, ok := s.terminal(w, r)
	if !ok {
		return
	}
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	balance, err := t.GetBalance(r.Context(), req.credential())
	if err != nil {
		writeOperationError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

type transferRequest struct {
	From   bank.Credential `json:"from"`
	To     bank.Credential `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) Transfer(w http.ResponseWriter, r *http.Request) {
	t, ok := s.terminal(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := t.Transfer(r.Context(), req.From, req.To, req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type webhookRequest struct {
	URL    string `json:"url"`
	Secret string `json:"secret"`
}

// RegisterWebhook attaches a signed-webhook listener to the terminal's hub.
func (s *Server) RegisterWebhook(w http.ResponseWriter, r *http.Request) {
	t, ok := s.terminal(w, r)
	if !ok {
		return
	}
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		jsonutil.WriteError(w, http.StatusBadRequest, "A callback url is required")
		return
	}

	hook := listeners.NewWebhook(req.URL, req.Secret, s.redis)
	registered := t.RegisterForNotifications(hook)

	s.mu.Lock()
	s.webhooks[hook.ID()] = webhookEntry{terminal: t, hook: hook}
	s.mu.Unlock()

	jsonutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"listener_id": hook.ID().String(),
		"registered":  registered,
	})
}

// UnregisterWebhook detaches a previously registered webhook listener.
// Unknown listener ids are tolerated: unregistering is a no-op then.
func (s *Server) UnregisterWebhook(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.terminal(w, r); !ok {
		return
	}
	listenerID, err := uuid.Parse(mux.Vars(r)["listenerID"])
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid listener id")
		return
	}

	s.mu.Lock()
	entry, ok := s.webhooks[listenerID]
	if ok {
		delete(s.webhooks, listenerID)
	}
	s.mu.Unlock()

	if !ok {
		log.Printf("asked to remove unknown webhook listener %s", listenerID)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	entry.terminal.UnregisterForNotifications(entry.hook)
	w.WriteHeader(http.StatusNoContent)
}

// FeedToken authenticates a credential and mints a short-lived token that
// grants access to the live notification feed.
func (s *Server) FeedToken(w http.ResponseWriter, r *http.Request) {
	var cred bank.Credential
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ok, err := s.security.Authenticate(r.Context(), cred)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	if !ok {
		jsonutil.WriteError(w, http.StatusUnauthorized, bank.ErrAuthorizationDenied.Error())
		return
	}

	token, err := s.issuer.Issue(cred.AccountID)
	if err != nil {
		jsonutil.WriteError(w, http.StatusInternalServerError, "Failed to issue feed token")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Feed upgrades the connection to a websocket and attaches it to the feed
// listener. Requires a token from FeedToken.
func (s *Server) Feed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		jsonutil.WriteError(w, http.StatusUnauthorized, "A feed token is required")
		return
	}
	accountID, err := s.issuer.Verify(token)
	if err != nil {
		jsonutil.WriteError(w, http.StatusUnauthorized, "Invalid feed token")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Feed upgrade failed: %v", err)
		return
	}
	log.Printf("Feed client attached for account %d", accountID)
	s.feed.Add(conn)

	// Reads are discarded; the read loop only notices client disconnects.
	go func() {
		defer s.feed.Remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func writeOperationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bank.ErrInvalidAmount):
		jsonutil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bank.ErrAuthorizationDenied):
		jsonutil.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, atm.ErrNotPermitted):
		jsonutil.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, bank.ErrAccountNotFound):
		jsonutil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, bank.ErrOverdraft), errors.Is(err, atm.ErrInsufficientCash):
		jsonutil.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, atm.ErrRemoteUnavailable):
		jsonutil.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		jsonutil.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
