package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Alturino/shop/internal/log"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(c context.Context, key string, e Envelope) error {
	b, err := Marshal(e)
	if err != nil {
		return err
	}
	headers := make([]kafka.Header, 0, len(e.Metadata)+1)
	headers = append(headers, kafka.Header{Key: "type", Value: []byte(e.Type)})
	for k, v := range e.Metadata {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	err = p.writer.WriteMessages(c, kafka.Message{Key: []byte(key), Value: b, Headers: headers})
	if err != nil {
		return fmt.Errorf("failed writing message to topic=%s with error=%w", p.writer.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type KafkaSubscriber struct {
	reader *kafka.Reader
}

func NewKafkaSubscriber(brokers []string, topic string, groupID string) *KafkaSubscriber {
	return &KafkaSubscriber{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
	}
}

// Subscribe commits a message only after h returned, so a crash redelivers it.
func (s *KafkaSubscriber) Subscribe(c context.Context, h Handler) error {
	cfg := s.reader.Config()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "KafkaSubscriber Subscribe").
		Str(log.KeyTopic, cfg.Topic).
		Logger()

	logger.Info().Msg("consuming topic")
	for {
		msg, err := s.reader.FetchMessage(c)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Info().Msg("stopped consuming topic")
				return nil
			}
			err = fmt.Errorf("failed fetching message with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}

		e, err := Unmarshal(msg.Value)
		if err != nil {
			logger.Error().Err(err).Msg(err.Error())
		} else if err := h(e.Context(c), e); err != nil {
			logger.Error().Err(err).Str(log.KeyEvent, e.Type).Msg(err.Error())
		}

		if err := s.reader.CommitMessages(c, msg); err != nil {
			err = fmt.Errorf("failed committing message with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
	}
}

func (s *KafkaSubscriber) Close() error {
	return s.reader.Close()
}
