package main

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"

	"github.com/sapliy/atm-network/pkg/jsonutil"
)

// GatewayHandler holds the upstream service URLs.
type GatewayHandler struct {
	atmServiceURL      string
	bankServiceURL     string
	securityServiceURL string
}

func NewGatewayHandler(atmURL, bankURL, securityURL string) *GatewayHandler {
	return &GatewayHandler{
		atmServiceURL:      atmURL,
		bankServiceURL:     bankURL,
		securityServiceURL: securityURL,
	}
}

// proxyRequest creates a reverse proxy to the target URL and serves the request.
func (h *GatewayHandler) proxyRequest(target string, w http.ResponseWriter, r *http.Request) {
	url, err := url.Parse(target)
	if err != nil {
		log.Printf("Error parsing target URL %s: %v", target, err)
		jsonutil.WriteError(w, http.StatusInternalServerError, "Invalid upstream target")
		return
	}

	proxy := httputil.NewSingleHostReverseProxy(url)
	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = url.Host
	}

	log.Printf("Forwarding %s %s", r.Method, r.URL.Path)
	proxy.ServeHTTP(w, r)
}

// ServeHTTP routes requests to the service named by the path prefix.
// The prefix is stripped, so /atm/terminals reaches the ATM service
// as /terminals.
func (h *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case strings.HasPrefix(path, "/atm"):
		http.StripPrefix("/atm", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.proxyRequest(h.atmServiceURL, w, r)
		})).ServeHTTP(w, r)

	case strings.HasPrefix(path, "/bank"):
		http.StripPrefix("/bank", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.proxyRequest(h.bankServiceURL, w, r)
		})).ServeHTTP(w, r)

	case strings.HasPrefix(path, "/security"):
		http.StripPrefix("/security", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.proxyRequest(h.securityServiceURL, w, r)
		})).ServeHTTP(w, r)

	case path == "/health":
		jsonutil.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "active",
			"service": "gateway",
		})

	default:
		jsonutil.WriteError(w, http.StatusNotFound, "Unknown route")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	handler := NewGatewayHandler(
		envOr("ATM_URL", "http://localhost:8086"),
		envOr("BANK_URL", "http://localhost:8085"),
		envOr("SECURITY_URL", "http://localhost:8084"),
	)

	addr := envOr("GATEWAY_ADDR", ":8080")
	log.Printf("Gateway starting on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
