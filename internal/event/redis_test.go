package event

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/shop/internal/common/constants"
)

func TestRedisPublishSubscribe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	c := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	require.NoError(t, err)
	defer func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := redisContainer.ConnectionString(c)
	require.NoError(t, err)
	opt, err := redis.ParseURL(connStr)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	subscriber := NewRedisSubscriber(client, "orders")
	publisher := NewRedisPublisher(client, "orders")

	c, cancel := context.WithTimeout(c, 30*time.Second)
	defer cancel()

	received := make(chan Envelope, 1)
	done := make(chan error, 1)
	go func() {
		done <- subscriber.Subscribe(c, func(c context.Context, e Envelope) error {
			select {
			case received <- e:
			default:
			}
			return nil
		})
	}()

	payload := OrderCreated{OrderID: uuid.New(), UserID: uuid.New(), TotalPrice: decimal.NewFromInt(250)}
	e, err := NewEnvelope(c, constants.EventOrderCreated, payload)
	require.NoError(t, err)

	// the subscription may not be active yet, so publish until it is received
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		require.NoError(t, publisher.Publish(c, payload.UserID.String(), e))
		select {
		case got := <-received:
			assert.Equal(t, e.ID, got.ID)
			actual := OrderCreated{}
			require.NoError(t, got.Decode(&actual))
			assert.Equal(t, payload.OrderID, actual.OrderID)
			cancel()
			assert.NoError(t, <-done)
			return
		case <-c.Done():
			t.Fatal("timed out waiting for published event")
		case <-ticker.C:
		}
	}
}
