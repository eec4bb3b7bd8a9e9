package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func TestNewDrawPollerInterval(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	poller := NewDrawPoller(tracer, &stubSyncer{}, 3)
	if poller.pollInterval != 3*time.Second {
		t.Fatalf("expected 3s interval, got %v", poller.pollInterval)
	}
}

func TestDrawPollerStart(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubSyncer{}
	poller := NewDrawPoller(tracer, stub, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	eventually(t, func() bool { return stub.calls.Load() > 0 })
	cancel()
}

func TestDrawPollerKeepsRunningAfterError(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubSyncer{err: errors.New("upstream down")}
	poller := NewDrawPoller(tracer, stub, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		poller.pollLoop(ctx, "draw-sync", 10*time.Millisecond, func(ctx context.Context) error {
			return poller.draws.SyncDraws(ctx)
		})
		close(done)
	}()

	eventually(t, func() bool { return stub.calls.Load() >= 2 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poll loop did not stop after cancel")
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

type stubSyncer struct {
	calls atomic.Int64
	err   error
}

func (s *stubSyncer) SyncDraws(ctx context.Context) error {
	s.calls.Add(1)
	return s.err
}
