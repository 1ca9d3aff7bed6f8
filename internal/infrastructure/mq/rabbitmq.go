// Package mq holds the event-driven expiry notifier: a scheduled group id is
// published to a wait queue with a per-message TTL equal to the link TTL, and
// the queue dead-letters it into the expired exchange once the TTL lapses.
// The consumer side of that exchange triggers the reap.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"filesharing-api/config"
)

const (
	bufferSize = 128

	// RoutingKeyExpired is the dead-letter routing key for lapsed messages.
	RoutingKeyExpired = "expired"
)

type (
	InputCh  = chan ExpiryEvent
	RabbitMQ struct {
		cfg   config.MQ
		log   *zap.Logger
		conn  *amqp091.Connection
		pubCh *amqp091.Channel
		in    InputCh
	}
	ExpiryEvent struct {
		Id        uuid.UUID     `json:"event_id"`
		TS        time.Time     `json:"time_stamp"`
		GroupID   uuid.UUID     `json:"group_id"`
		ExpiresAt time.Time     `json:"expires_at"`
		TTL       time.Duration `json:"-"`
	}
)

func New(cfg config.MQ, logger *zap.Logger) *RabbitMQ {
	return &RabbitMQ{
		cfg: cfg,
		log: logger,
		in:  make(chan ExpiryEvent, bufferSize),
	}
}

func (r *RabbitMQ) Connect(ctx context.Context, dsn string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	amqpCfg := amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "filesharingapi",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		TLSClientConfig: nil,
	}

	var err error
	r.conn, err = amqp091.DialConfig(dsn, amqpCfg)
	if err != nil {
		return err
	}
	r.pubCh, err = r.conn.Channel()
	if err != nil {
		_ = r.conn.Close()
		return err
	}

	r.log.Info("rabbitmq connected successfully")

	return err
}

// Init declares the wait queue -> dead-letter -> expired queue topology.
func (r *RabbitMQ) Init() error {
	var err error
	if err = r.pubCh.ExchangeDeclare(
		r.cfg.ExpiryExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = r.pubCh.Close()
		return err
	}

	// messages sit here until their per-message TTL lapses
	if _, err = r.pubCh.QueueDeclare(
		r.cfg.WaitQueueName,
		true,
		false,
		false,
		false,
		amqp091.Table{
			"x-dead-letter-exchange":    r.cfg.ExpiryExchange,
			"x-dead-letter-routing-key": RoutingKeyExpired,
		},
	); err != nil {
		return err
	}

	q, err := r.pubCh.QueueDeclare(
		r.cfg.ExpiredQueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	return r.pubCh.QueueBind(q.Name, RoutingKeyExpired, r.cfg.ExpiryExchange, false, nil)
}

// Schedule registers an expire-at marker for the group. Failure here is
// non-fatal for the caller: the periodic sweep is the delivery safety net.
func (r *RabbitMQ) Schedule(ctx context.Context, id uuid.UUID, ttl time.Duration) error {
	e := ExpiryEvent{
		Id:        uuid.New(),
		TS:        time.Now().UTC(),
		GroupID:   id,
		ExpiresAt: time.Now().UTC().Add(ttl),
		TTL:       ttl,
	}

	select {
	case r.in <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("expiry event buffer full, dropping schedule for %s", id)
	}
}

func (r *RabbitMQ) PublisherWorker(ctx context.Context) {
	r.log.Info("starting expiry publisher worker")

	defer func() {
		r.log.Info("expiry publisher worker gracefully stopped")
	}()

	for {
		select {
		case e := <-r.in:
			if err := r.publish(ctx, e); err != nil {
				r.log.Error("mq publish error", zap.Error(err))
			}
		case <-ctx.Done():
			// the input chan stays open: in-flight request handlers may still
			// call Schedule while the http server drains during shutdown
			if r.pubCh != nil {
				r.pubCh.Close()
			}
			return
		}
	}
}

func (r *RabbitMQ) publish(ctx context.Context, e ExpiryEvent) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	pub := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    e.Id.String(),
		Timestamp:    e.TS,
		// dead-lettered into the expired exchange once this lapses
		Expiration: strconv.FormatInt(e.TTL.Milliseconds(), 10),
		Body:       b,
	}
	if err = r.pubCh.PublishWithContext(
		ctx,
		"", // default exchange, straight to the wait queue
		r.cfg.WaitQueueName,
		true,
		false,
		pub,
	); err != nil {
		return err
	}

	return nil
}

func (r *RabbitMQ) GetInputChan() chan ExpiryEvent { return r.in }
func (r *RabbitMQ) GetConn() *amqp091.Connection   { return r.conn }

// NopNotifier is the sweep-only expiry strategy: nothing to register at
// create time, the sweeper alone reaps expired groups.
type NopNotifier struct{}

func (NopNotifier) Schedule(context.Context, uuid.UUID, time.Duration) error { return nil }
