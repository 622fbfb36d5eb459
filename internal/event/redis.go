package event

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/log"
)

type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(c context.Context, key string, e Envelope) error {
	b, err := Marshal(e)
	if err != nil {
		return err
	}
	if err := p.client.Publish(c, p.channel, b).Err(); err != nil {
		return fmt.Errorf("failed publishing to channel=%s with error=%w", p.channel, err)
	}
	return nil
}

// Close leaves the shared client open.
func (p *RedisPublisher) Close() error {
	return nil
}

type RedisSubscriber struct {
	client  *redis.Client
	channel string
}

func NewRedisSubscriber(client *redis.Client, channel string) *RedisSubscriber {
	return &RedisSubscriber{client: client, channel: channel}
}

func (s *RedisSubscriber) Subscribe(c context.Context, h Handler) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisSubscriber Subscribe").
		Str(log.KeyTopic, s.channel).
		Logger()

	pubsub := s.client.Subscribe(c, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(c); err != nil {
		err = fmt.Errorf("failed subscribing to channel=%s with error=%w", s.channel, err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed to channel")

	messages := pubsub.Channel()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped subscription")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			e, err := Unmarshal([]byte(msg.Payload))
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				continue
			}
			if err := h(e.Context(c), e); err != nil {
				logger.Error().Err(err).Str(log.KeyEvent, e.Type).Msg(err.Error())
			}
		}
	}
}

func (s *RedisSubscriber) Close() error {
	return nil
}
