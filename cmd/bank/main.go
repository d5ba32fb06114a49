package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sapliy/atm-network/internal/bank"
	"github.com/sapliy/atm-network/internal/bankhttp"
	"github.com/sapliy/atm-network/internal/securityhttp"
	"github.com/sapliy/atm-network/pkg/monitoring"
	"github.com/sapliy/atm-network/pkg/observability"
)

func main() {
	ctx := context.Background()

	securityURL := os.Getenv("SECURITY_URL")
	if securityURL == "" {
		securityURL = "http://localhost:8084"
	}
	securityClient := securityhttp.NewClient(securityURL)

	// The bank is useless without its authorizer, so fail fast instead of
	// serving requests that will all be denied with transport errors.
	if err := securityClient.Ping(ctx); err != nil {
		log.Fatalf("Security service not reachable at %s: %v", securityURL, err)
	}
	log.Printf("Connected to security service at %s", securityURL)

	store := bank.SeedFixture()
	log.Printf("Seeded %d accounts", store.Len())

	svc := bank.NewService(store, securityClient)

	shutdown, err := observability.InitTracer(ctx, observability.Config{
		ServiceName:    "bank",
		ServiceVersion: "0.1.0",
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Environment:    "production",
	})
	if err != nil {
		log.Printf("Failed to init tracer: %v", err)
	} else {
		defer shutdown(ctx)
	}

	monitoring.StartMetricsServer(":9085")

	server := bankhttp.NewServer(svc)
	otelHandler := otelhttp.NewHandler(server.Router(), "bank-request")

	addr := os.Getenv("BANK_ADDR")
	if addr == "" {
		addr = ":8085"
	}
	log.Printf("Bank service starting on %s", addr)
	if err := http.ListenAndServe(addr, otelHandler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
