// Package bankhttp exposes the bank service over HTTP and provides the
// remote account-handle client used by the ATM service.
package bankhttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/sapliy/atm-network/internal/bank"
	"github.com/sapliy/atm-network/pkg/jsonutil"
)

type Server struct {
	svc *bank.Service
}

func NewServer(svc *bank.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	r.HandleFunc("/accounts/lookup", s.Lookup).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{id}/deposit", s.Deposit).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{id}/withdraw", s.Withdraw).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{id}/balance", s.Balance).Methods(http.MethodPost)
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "active",
		"service": "bank",
	})
}

type accountRequest struct {
	PIN    int             `json:"pin"`
	Amount decimal.Decimal `json:"amount"`
}

// credential rebuilds the caller's credential from the path id and body
// PIN. Each call re-runs the full gate: HTTP is stateless, so the account
// handle the client holds is re-authorized per request.
func credential(r *http.Request, pin int) (bank.Credential, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return bank.Credential{}, err
	}
	return bank.Credential{AccountID: id, PIN: pin}, nil
}

// Lookup is the handle-granting gate: it authenticates the credential and
// confirms terminal access without touching the balance.
func (s *Server) Lookup(w http.ResponseWriter, r *http.Request) {
	var cred bank.Credential
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := s.svc.Account(r.Context(), cred)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]int64{"account_id": account.ID()})
}

func (s *Server) Deposit(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(a *bank.Account, amount decimal.Decimal) (decimal.Decimal, error) {
		return a.Deposit(r.Context(), amount)
	})
}

func (s *Server) Withdraw(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(a *bank.Account, amount decimal.Decimal) (decimal.Decimal, error) {
		return a.Withdraw(r.Context(), amount)
	})
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request,
	op func(*bank.Account, decimal.Decimal) (decimal.Decimal, error)) {

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cred, err := credential(r, req.PIN)
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	account, err := s.svc.Account(r.Context(), cred)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	balance, err := op(account, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

func (s *Server) Balance(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cred, err := credential(r, req.PIN)
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	account, err := s.svc.Account(r.Context(), cred)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	balance, err := account.Balance(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

// writeDomainError maps domain errors onto status codes. The client maps
// them back, so error identity survives the wire.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bank.ErrInvalidAmount):
		jsonutil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bank.ErrAuthorizationDenied):
		jsonutil.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, bank.ErrAccountNotFound):
		jsonutil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, bank.ErrOverdraft):
		jsonutil.WriteError(w, http.StatusConflict, err.Error())
	default:
		jsonutil.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
