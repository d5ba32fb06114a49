package messaging

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitConfig holds configuration for the RabbitMQ client.
type RabbitConfig struct {
	URL               string
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	HeartbeatTimeout  time.Duration
}

// RabbitMQClient is a thin AMQP client with automatic reconnection.
// Publish fails fast while the connection is down; the background loop
// keeps retrying with exponential backoff until the broker comes back.
type RabbitMQClient struct {
	config RabbitConfig
	conn   *amqp.Connection
	ch     *amqp.Channel
	mu     sync.RWMutex

	notifyConnClose chan *amqp.Error
	isClosed        bool
}

func NewRabbitMQClient(config RabbitConfig) (*RabbitMQClient, error) {
	if config.ReconnectDelay == 0 {
		config.ReconnectDelay = time.Second
	}
	if config.MaxReconnectDelay == 0 {
		config.MaxReconnectDelay = 60 * time.Second
	}
	if config.HeartbeatTimeout == 0 {
		config.HeartbeatTimeout = 10 * time.Second
	}

	client := &RabbitMQClient{config: config}
	if err := client.connect(); err != nil {
		return nil, err
	}

	go client.handleReconnect()
	return client, nil
}

func (r *RabbitMQClient) connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Printf("Connecting to RabbitMQ at %s", r.maskURL(r.config.URL))

	conn, err := amqp.DialConfig(r.config.URL, amqp.Config{
		Heartbeat: r.config.HeartbeatTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	r.conn = conn
	r.ch = ch
	r.notifyConnClose = make(chan *amqp.Error, 1)
	r.conn.NotifyClose(r.notifyConnClose)

	log.Println("Successfully connected to RabbitMQ")
	return nil
}

func (r *RabbitMQClient) handleReconnect() {
	for {
		r.mu.RLock()
		if r.isClosed {
			r.mu.RUnlock()
			return
		}
		notifyClose := r.notifyConnClose
		r.mu.RUnlock()

		err, ok := <-notifyClose
		if !ok || err == nil {
			return // clean shutdown
		}
		log.Printf("RabbitMQ connection closed: %v. Reconnecting...", err)

		backoff := r.config.ReconnectDelay
		for {
			r.mu.RLock()
			closed := r.isClosed
			r.mu.RUnlock()
			if closed {
				return
			}
			if err := r.connect(); err == nil {
				break
			}
			log.Printf("RabbitMQ reconnect failed, retrying in %v", backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > r.config.MaxReconnectDelay {
				backoff = r.config.MaxReconnectDelay
			}
		}
	}
}

// DeclareQueue declares a durable queue, creating it if it does not exist.
func (r *RabbitMQClient) DeclareQueue(name string) (amqp.Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ch == nil {
		return amqp.Queue{}, fmt.Errorf("rabbitmq channel not available")
	}
	return r.ch.QueueDeclare(name, true, false, false, false, nil)
}

// Publish sends a persistent JSON message to the named queue.
func (r *RabbitMQClient) Publish(ctx context.Context, queue string, body []byte) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}
	return r.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Consume blocks, invoking handler for each delivery. Messages are acked on
// success and nacked (without requeue) when the handler errors.
func (r *RabbitMQClient) Consume(queue string, handler func(body []byte) error) error {
	r.mu.RLock()
	ch := r.ch
	r.mu.RUnlock()
	if ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for d := range deliveries {
		if err := handler(d.Body); err != nil {
			log.Printf("error handling delivery: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return nil
}

func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isClosed = true
	if r.ch != nil {
		r.ch.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// maskURL hides credentials when logging the broker URL.
func (r *RabbitMQClient) maskURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at == -1 {
		return url
	}
	scheme := strings.Index(url, "://")
	if scheme == -1 {
		return "***" + url[at:]
	}
	return url[:scheme+3] + "***" + url[at:]
}
