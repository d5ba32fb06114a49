// Package listeners holds the notification hub's delivery drivers: webhook
// POSTs, the Kafka stream, the RabbitMQ queue, e-mail alerts, and the
// websocket feed.
package listeners

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sapliy/atm-network/internal/atm"
)

// Webhook delivers notifications to a registered callback URL as signed
// JSON POSTs. With a Redis client configured, deliveries are idempotent:
// a notification already sent to this endpoint is skipped.
type Webhook struct {
	id     uuid.UUID
	url    string
	secret string
	client *http.Client
	redis  *redis.Client
}

func NewWebhook(url, secret string, rdb *redis.Client) *Webhook {
	return &Webhook{
		id:     uuid.New(),
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
		redis:  rdb,
	}
}

func (w *Webhook) ID() uuid.UUID { return w.id }

func (w *Webhook) HandleNotification(ctx context.Context, n atm.TransactionNotification) error {
	if w.redis != nil {
		key := fmt.Sprintf("atm:webhook:sent:%s:%s", w.id, n.ID)
		exists, err := w.redis.Exists(ctx, key).Result()
		if err != nil {
			log.Printf("Redis error checking webhook idempotency: %v", err)
		} else if exists > 0 {
			log.Printf("Webhook %s already delivered notification %s (idempotent skip)", w.id, n.ID)
			return nil
		}
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-ATM-Event", n.Operation.String())
	req.Header.Set("X-ATM-Signature", Sign(payload, w.secret))

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery to %s failed: %w", w.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook endpoint %s returned status %d", w.url, resp.StatusCode)
	}

	if w.redis != nil {
		key := fmt.Sprintf("atm:webhook:sent:%s:%s", w.id, n.ID)
		w.redis.Set(ctx, key, "1", 24*time.Hour)
	}
	return nil
}

// Sign computes the signature header value for a webhook body.
func Sign(payload []byte, secret string) string {
	if secret == "" {
		return "unsigned"
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks a webhook body against its signature header.
// Receivers use it to reject forged deliveries.
func VerifySignature(payload []byte, secret, signature string) bool {
	return hmac.Equal([]byte(Sign(payload, secret)), []byte(signature))
}
