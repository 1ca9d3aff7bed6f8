package rmqconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"filesharing-api/internal/infrastructure/mq"
)

type fakeReaper struct {
	reaped []uuid.UUID
	err    error
}

func (f *fakeReaper) Reap(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.reaped = append(f.reaped, id)
	return nil
}

func eventBody(t *testing.T, groupID uuid.UUID) []byte {
	t.Helper()
	b, err := json.Marshal(mq.ExpiryEvent{
		Id:        uuid.New(),
		TS:        time.Now().UTC(),
		GroupID:   groupID,
		ExpiresAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return b
}

func TestDelivery_ReapsGroup(t *testing.T) {
	reaper := &fakeReaper{}
	c := &Consumer{log: zap.NewNop(), reaper: reaper}

	groupID := uuid.New()
	err := c.delivery(context.Background(), amqp091.Delivery{Body: eventBody(t, groupID)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{groupID}, reaper.reaped)
}

func TestDelivery_DuplicateIsAbsorbed(t *testing.T) {
	// the reaper is idempotent by contract, so a redelivery just reaps again
	reaper := &fakeReaper{}
	c := &Consumer{log: zap.NewNop(), reaper: reaper}

	groupID := uuid.New()
	body := eventBody(t, groupID)
	require.NoError(t, c.delivery(context.Background(), amqp091.Delivery{Body: body}))
	require.NoError(t, c.delivery(context.Background(), amqp091.Delivery{Body: body}))
	assert.Len(t, reaper.reaped, 2)
}

func TestDelivery_BadPayload(t *testing.T) {
	c := &Consumer{log: zap.NewNop(), reaper: &fakeReaper{}}

	err := c.delivery(context.Background(), amqp091.Delivery{Body: []byte("not-json")})
	require.Error(t, err)
}

func TestDelivery_MissingGroupID(t *testing.T) {
	c := &Consumer{log: zap.NewNop(), reaper: &fakeReaper{}}

	err := c.delivery(context.Background(), amqp091.Delivery{Body: eventBody(t, uuid.Nil)})
	require.Error(t, err)
}

func TestDelivery_ReapFailureSurfaces(t *testing.T) {
	c := &Consumer{log: zap.NewNop(), reaper: &fakeReaper{err: errors.New("db down")}}

	err := c.delivery(context.Background(), amqp091.Delivery{Body: eventBody(t, uuid.New())})
	require.Error(t, err)
}
