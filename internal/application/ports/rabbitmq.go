package ports

import (
	"context"

	"github.com/rabbitmq/amqp091-go"

	"filesharing-api/internal/infrastructure/mq"
)

type RabbitMQ interface {
	ExpiryNotifier
	Connect(ctx context.Context, dsn string) error
	Init() error
	PublisherWorker(ctx context.Context)
	GetInputChan() chan mq.ExpiryEvent
	GetConn() *amqp091.Connection
}
