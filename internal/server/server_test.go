package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/shop/internal/config"
)

func TestNewRouter(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	unhealthy := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		path     string
		checks   []HealthCheck
		expected int
	}{
		{name: "healthz without checks", path: "/healthz", expected: http.StatusOK},
		{name: "healthz with healthy checks", path: "/healthz", checks: []HealthCheck{healthy}, expected: http.StatusOK},
		{
			name:     "healthz with failing check",
			path:     "/healthz",
			checks:   []HealthCheck{healthy, unhealthy},
			expected: http.StatusServiceUnavailable,
		},
		{name: "metrics", path: "/metrics", expected: http.StatusOK},
		{name: "unknown route", path: "/unknown", expected: http.StatusNotFound},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router := NewRouter("test", test.checks...)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, test.path, nil))
			assert.Equal(t, test.expected, rec.Code)
		})
	}
}

func TestServe(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	port := listener.Addr().(*net.TCPAddr).Port

	cfg := config.Application{Host: "127.0.0.1", Port: port}
	err = Serve(context.Background(), cfg, http.NotFoundHandler())
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	errBind := errors.New("address already in use")
	errStart := errors.New("failed starting worker")

	worker := func(stopped *bool) func(c context.Context, wg *sync.WaitGroup) error {
		return func(c context.Context, wg *sync.WaitGroup) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-c.Done()
				*stopped = true
			}()
			return nil
		}
	}

	tests := []struct {
		name     string
		start    func(stopped *bool) func(c context.Context, wg *sync.WaitGroup) error
		serve    func(c context.Context) error
		cancel   bool
		expected error
		stopped  bool
	}{
		{
			name:     "serve fails before shutdown",
			start:    worker,
			serve:    func(context.Context) error { return errBind },
			expected: errBind,
			stopped:  true,
		},
		{
			name:  "serve returns on shutdown",
			start: worker,
			serve: func(c context.Context) error {
				<-c.Done()
				return nil
			},
			cancel:  true,
			stopped: true,
		},
		{
			name: "start fails",
			start: func(*bool) func(c context.Context, wg *sync.WaitGroup) error {
				return func(context.Context, *sync.WaitGroup) error { return errStart }
			},
			serve: func(context.Context) error {
				t.Fatal("serve must not run when start fails")
				return nil
			},
			expected: errStart,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, cancel := context.WithCancel(context.Background())
			defer cancel()
			if test.cancel {
				cancel()
			}

			stopped := false
			done := make(chan error, 1)
			go func() { done <- Run(c, test.start(&stopped), test.serve) }()

			select {
			case err := <-done:
				if test.expected != nil {
					assert.ErrorIs(t, err, test.expected)
				} else {
					assert.NoError(t, err)
				}
				assert.Equal(t, test.stopped, stopped)
			case <-time.After(5 * time.Second):
				t.Fatal("Run did not return after serve returned")
			}
		})
	}
}
