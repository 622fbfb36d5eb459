package event

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Alturino/shop/internal/config"
)

func NewPublisher(cfg config.Event, client *redis.Client) (Publisher, error) {
	switch cfg.Driver {
	case config.EventDriverRedis:
		return NewRedisPublisher(client, cfg.Topic), nil
	case config.EventDriverKafka:
		return NewKafkaPublisher(cfg.Brokers, cfg.Topic), nil
	}
	return nil, fmt.Errorf("unknown event driver=%s", cfg.Driver)
}

func NewSubscriber(cfg config.Event, client *redis.Client) (Subscriber, error) {
	switch cfg.Driver {
	case config.EventDriverRedis:
		return NewRedisSubscriber(client, cfg.Topic), nil
	case config.EventDriverKafka:
		return NewKafkaSubscriber(cfg.Brokers, cfg.Topic, cfg.GroupID), nil
	}
	return nil, fmt.Errorf("unknown event driver=%s", cfg.Driver)
}
