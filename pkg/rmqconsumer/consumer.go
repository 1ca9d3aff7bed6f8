package rmqconsumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"filesharing-api/config"
	"filesharing-api/internal/infrastructure/mq"
)

// can scale depends on a parallel worker count
const preFetchCount = 1

// Reaper tears down an expired group. Must be idempotent: the wait queue
// delivers at-least-once and the sweep may have reaped the group already.
type Reaper interface {
	Reap(ctx context.Context, id uuid.UUID) error
}

type Consumer struct {
	cfg        config.MQ
	log        *zap.Logger
	reaper     Reaper
	conn       *amqp091.Connection
	chConsume  *amqp091.Channel
	chDelivery <-chan amqp091.Delivery
}

func New(cfg config.MQ, logger *zap.Logger, reaper Reaper) *Consumer {
	return &Consumer{
		cfg:    cfg,
		log:    logger,
		reaper: reaper,
	}
}

func (c *Consumer) Connect(dsn string) error {
	var err error
	c.conn, err = amqp091.Dial(dsn)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	c.chConsume, err = c.conn.Channel()
	if err != nil {
		_ = c.conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}

	c.log.Info("rabbitmq consumer connected successfully")

	return err
}

func (c *Consumer) Init() error {
	var err error
	if err = c.chConsume.ExchangeDeclare(
		c.cfg.ExpiryExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err = c.chConsume.QueueDeclare(
		c.cfg.ExpiredQueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err = c.chConsume.QueueBind(
		c.cfg.ExpiredQueueName,
		mq.RoutingKeyExpired,
		c.cfg.ExpiryExchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	if err = c.chConsume.Qos(preFetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	var cerr error
	c.chDelivery, cerr = c.chConsume.Consume(
		c.cfg.ExpiredQueueName,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if cerr != nil {
		return fmt.Errorf("consume: %w", cerr)
	}

	return nil
}

func (c *Consumer) DeliveryWorker(ctx context.Context) {
	c.log.Info("starting expiry delivery worker")

	defer func() {
		c.log.Info("expiry delivery worker gracefully stopped")
	}()

	for {
		select {
		case msg := <-c.chDelivery:
			if err := c.delivery(ctx, msg); err != nil {
				// a reap that fails here is retried by the next sweep cycle
				c.log.Error("expiry delivery error", zap.Error(err))
			}
		case <-ctx.Done():
			c.chConsume.Close()
			return
		}
	}
}

func (c *Consumer) delivery(ctx context.Context, msg amqp091.Delivery) error {
	var e mq.ExpiryEvent
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		return fmt.Errorf("decode expiry event: %w", err)
	}
	if e.GroupID == uuid.Nil {
		return fmt.Errorf("expiry event %s without group id", e.Id)
	}

	if err := c.reaper.Reap(ctx, e.GroupID); err != nil {
		return fmt.Errorf("reap %s: %w", e.GroupID, err)
	}

	c.log.Info("reaped expired file group",
		zap.String("group_id", e.GroupID.String()),
		zap.Time("expired_at", e.ExpiresAt),
	)

	return nil
}
