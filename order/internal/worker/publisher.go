package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alturino/shop/internal/event"
	"github.com/Alturino/shop/internal/log"
)

const publishTimeout = 5 * time.Second

type message struct {
	c     context.Context
	key   string
	event event.Envelope
}

// PublishWorker publishes events in the background so a slow broker never delays checkout.
type PublishWorker struct {
	publisher event.Publisher
	queue     chan message
}

func NewPublishWorker(publisher event.Publisher, size int) *PublishWorker {
	return &PublishWorker{publisher: publisher, queue: make(chan message, size)}
}

// Publish enqueues e. It fails instead of blocking when the queue is full.
func (w *PublishWorker) Publish(c context.Context, key string, e event.Envelope) error {
	select {
	case w.queue <- message{c: context.WithoutCancel(c), key: key, event: e}:
		return nil
	default:
		return fmt.Errorf("failed enqueuing event=%s: queue is full", e.Type)
	}
}

// Close closes the underlying publisher.
func (w *PublishWorker) Close() error {
	return w.publisher.Close()
}

// Start publishes queued events until c is done, then drains what is left.
func (w *PublishWorker) Start(c context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PublishWorker Start").
		Str(log.KeyProcess, "publishing events").
		Logger()

	logger.Info().Msg("started publish worker")
	for {
		select {
		case <-c.Done():
			logger.Info().Int("pending", len(w.queue)).Msg("draining publish queue")
			for {
				select {
				case m := <-w.queue:
					w.publish(m)
				default:
					logger.Info().Msg("stopped publish worker")
					return
				}
			}
		case m := <-w.queue:
			w.publish(m)
		}
	}
}

func (w *PublishWorker) publish(m message) {
	c, cancel := context.WithTimeout(m.c, publishTimeout)
	defer cancel()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PublishWorker publish").
		Str(log.KeyEvent, m.event.Type).
		Str("eventId", m.event.ID.String()).
		Logger()

	if err := w.publisher.Publish(c, m.key, m.event); err != nil {
		err = fmt.Errorf("failed publishing event with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Debug().Msg("published event")
}
