package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sapliy/atm-network/internal/security"
	"github.com/sapliy/atm-network/internal/securityhttp"
	"github.com/sapliy/atm-network/pkg/monitoring"
	"github.com/sapliy/atm-network/pkg/observability"
)

func main() {
	ctx := context.Background()

	// Account records come from Secrets Manager when a secret name is set,
	// otherwise the built-in fixture set is used for local development.
	records := security.FixtureRecords()
	if secretName := os.Getenv("SECURITY_SEED_SECRET"); secretName != "" {
		loaded, err := security.RecordsFromSecret(ctx, secretName)
		if err != nil {
			log.Fatalf("Failed to load account records from secret %q: %v", secretName, err)
		}
		records = loaded
		log.Printf("Loaded %d account records from Secrets Manager", len(records))
	}

	svc, err := security.NewService(records)
	if err != nil {
		log.Fatalf("Failed to build security service: %v", err)
	}

	shutdown, err := observability.InitTracer(ctx, observability.Config{
		ServiceName:    "security",
		ServiceVersion: "0.1.0",
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Environment:    "production",
	})
	if err != nil {
		log.Printf("Failed to init tracer: %v", err)
	} else {
		defer shutdown(ctx)
	}

	monitoring.StartMetricsServer(":9084")

	server := securityhttp.NewServer(svc)
	otelHandler := otelhttp.NewHandler(server.Router(), "security-request")

	addr := os.Getenv("SECURITY_ADDR")
	if addr == "" {
		addr = ":8084"
	}
	log.Printf("Security service starting on %s", addr)
	if err := http.ListenAndServe(addr, otelHandler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
