package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sapliy/atm-network/internal/atm"
	"github.com/sapliy/atm-network/internal/atm/listeners"
	"github.com/sapliy/atm-network/internal/atmhttp"
	"github.com/sapliy/atm-network/internal/bankhttp"
	"github.com/sapliy/atm-network/internal/securityhttp"
	"github.com/sapliy/atm-network/pkg/messaging"
	"github.com/sapliy/atm-network/pkg/monitoring"
	"github.com/sapliy/atm-network/pkg/observability"
	"github.com/sapliy/atm-network/pkg/sessiontoken"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func scopeFromEnv(key string) atm.Scope {
	if os.Getenv(key) == "per-terminal" {
		return atm.ScopePerTerminal
	}
	return atm.ScopeShared
}

func main() {
	ctx := context.Background()
	logger := observability.NewLogger("atm")

	securityURL := envOr("SECURITY_URL", "http://localhost:8084")
	bankURL := envOr("BANK_URL", "http://localhost:8085")

	securityClient := securityhttp.NewClient(securityURL)
	bankClient := bankhttp.NewClient(bankURL)

	// Both remotes must be up before a terminal is handed to anyone.
	if err := securityClient.Ping(ctx); err != nil {
		log.Fatalf("Security service not reachable at %s: %v", securityURL, err)
	}
	if err := bankClient.Ping(ctx); err != nil {
		log.Fatalf("Bank service not reachable at %s: %v", bankURL, err)
	}
	log.Printf("Connected to security (%s) and bank (%s)", securityURL, bankURL)

	hub := atm.NewHub(logger)

	// The hub's standing listeners. Each is optional and switched on by its
	// own configuration; per-customer webhooks are registered over HTTP.
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		producer := messaging.NewKafkaProducer(strings.Split(kafkaBrokers, ","), listeners.NotificationsTopic)
		defer producer.Close()
		hub.Register(listeners.NewStream(producer))
		log.Printf("Streaming notifications to Kafka topic %s", listeners.NotificationsTopic)
	}

	if rabbitURL := os.Getenv("RABBITMQ_URL"); rabbitURL != "" {
		rabbitClient, err := messaging.NewRabbitMQClient(messaging.RabbitConfig{
			URL:               rabbitURL,
			ReconnectDelay:    time.Second,
			MaxReconnectDelay: time.Minute,
			HeartbeatTimeout:  10 * time.Second,
		})
		if err != nil {
			log.Printf("Warning: Failed to connect to RabbitMQ: %v", err)
		} else {
			defer rabbitClient.Close()
			if _, err := rabbitClient.DeclareQueue(listeners.NotificationsQueue); err != nil {
				log.Printf("Warning: Failed to declare queue: %v", err)
			}
			hub.Register(listeners.NewQueue(rabbitClient, listeners.NotificationsQueue))
			log.Printf("Queueing notifications on %s", listeners.NotificationsQueue)
		}
	}

	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		threshold, err := decimal.NewFromString(envOr("ALERT_THRESHOLD", "100"))
		if err != nil {
			log.Fatalf("Invalid ALERT_THRESHOLD: %v", err)
		}
		hub.Register(listeners.NewEmailAlert(
			apiKey,
			envOr("ALERT_FROM", "alerts@atm.local"),
			os.Getenv("ALERT_TO"),
			threshold,
		))
		log.Printf("E-mail alerts enabled for withdrawals >= %s", threshold)
	}

	feed := listeners.NewFeed()
	hub.Register(feed)

	var rdb *redis.Client
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed, webhook idempotency disabled: %v", err)
			rdb = nil
		}
	}

	pool := atm.NewPool(bankClient, securityClient, hub, atm.PoolConfig{
		CashScope:         scopeFromEnv("CASH_SCOPE"),
		NotificationScope: scopeFromEnv("NOTIFICATION_SCOPE"),
	})

	issuer := sessiontoken.NewIssuer(envOr("FEED_TOKEN_SECRET", "dev-feed-secret"), 15*time.Minute)

	shutdown, err := observability.InitTracer(ctx, observability.Config{
		ServiceName:    "atm",
		ServiceVersion: "0.1.0",
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Environment:    "production",
	})
	if err != nil {
		log.Printf("Failed to init tracer: %v", err)
	} else {
		defer shutdown(ctx)
	}

	monitoring.StartMetricsServer(":9086")

	server := atmhttp.NewServer(pool, securityClient, issuer, feed, rdb)
	otelHandler := otelhttp.NewHandler(server.Router(), "atm-request")

	addr := envOr("ATM_ADDR", ":8086")
	log.Printf("ATM service starting on %s", addr)
	if err := http.ListenAndServe(addr, otelHandler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
