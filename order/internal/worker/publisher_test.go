package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/shop/internal/event"
)

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	closed bool
}

func (p *recordingPublisher) Publish(c context.Context, key string, e event.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestPublishWorker(t *testing.T) {
	inner := &recordingPublisher{}
	w := NewPublishWorker(inner, 2)

	c, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Publish(c, "a", event.Envelope{Type: "test"}))
	require.NoError(t, w.Publish(c, "b", event.Envelope{Type: "test"}))
	assert.Error(t, w.Publish(c, "c", event.Envelope{Type: "test"}), "full queue should not block")

	// cancelling before start still drains the queue
	cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	w.Start(c, &wg)
	wg.Wait()

	assert.Equal(t, []string{"a", "b"}, inner.keys)
	require.NoError(t, w.Close())
	assert.True(t, inner.closed)
}
