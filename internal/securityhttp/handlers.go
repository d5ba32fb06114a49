// Package securityhttp exposes the security service over HTTP and provides
// the client the other services use to reach it.
package securityhttp

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sapliy/atm-network/internal/bank"
	"github.com/sapliy/atm-network/internal/security"
	"github.com/sapliy/atm-network/pkg/jsonutil"
)

type Server struct {
	svc *security.Service
}

func NewServer(svc *security.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	r.HandleFunc("/authenticate", s.Authenticate).Methods(http.MethodPost)
	r.HandleFunc("/authorize/{operation}/{accountID}", s.Authorize).Methods(http.MethodGet)
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "active",
		"service": "security",
	})
}

// Authenticate answers true iff the credential's PIN matches. A denial is
// still a 200: the decision itself succeeded.
func (s *Server) Authenticate(w http.ResponseWriter, r *http.Request) {
	var cred bank.Credential
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ok, err := s.svc.Authenticate(r.Context(), cred)
	if err != nil {
		jsonutil.WriteError(w, http.StatusInternalServerError, "Authentication check failed")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

// Authorize answers the per-operation permission question for an account.
func (s *Server) Authorize(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountID, err := strconv.ParseInt(vars["accountID"], 10, 64)
	if err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "Invalid account id")
		return
	}

	var ok bool
	switch vars["operation"] {
	case "deposit":
		ok, err = s.svc.CanDeposit(r.Context(), accountID)
	case "withdraw":
		ok, err = s.svc.CanWithdraw(r.Context(), accountID)
	case "balance":
		ok, err = s.svc.CanBalance(r.Context(), accountID)
	case "terminal":
		ok, err = s.svc.CanAccessTerminal(r.Context(), accountID)
	default:
		jsonutil.WriteError(w, http.StatusNotFound, "Unknown operation")
		return
	}
	if err != nil {
		jsonutil.WriteError(w, http.StatusInternalServerError, "Authorization check failed")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}
