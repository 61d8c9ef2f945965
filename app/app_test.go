package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	startErr error
	started  atomic.Bool
	stopped  atomic.Int32
}

func (s *fakeServer) Start(ctx context.Context) error {
	s.started.Store(true)
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeServer) Stop(context.Context) error {
	s.stopped.Add(1)
	return nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRunContextStopsOnCancel(t *testing.T) {
	a, b := &fakeServer{}, &fakeServer{}
	var order []string
	application := New("budget", discard,
		WithServer(a, b),
		WithCleanup(func() { order = append(order, "first") }),
		WithCleanup(func() { order = append(order, "second") }),
		WithShutdownTimeout(time.Second),
	)
	assert.Len(t, application.Servers(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.RunContext(ctx) }()

	require.Eventually(t, func() bool { return a.started.Load() && b.started.Load() }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.EqualValues(t, 1, a.stopped.Load())
	assert.EqualValues(t, 1, b.stopped.Load())
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestRunContextServerFailure(t *testing.T) {
	boom := errors.New("address already in use")
	healthy, failing := &fakeServer{}, &fakeServer{startErr: boom}
	cleaned := false
	application := New("budget", discard, WithServer(healthy, failing), WithCleanup(func() { cleaned = true }))

	err := application.RunContext(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, cleaned)
	assert.EqualValues(t, 1, healthy.stopped.Load())
}
