package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// DrawPoller runs the background loop that keeps draw history and the
// current prediction fresh between rounds.
type DrawPoller struct {
	tracer       trace.Tracer
	draws        DrawSyncer
	pollInterval time.Duration
}

type DrawSyncer interface {
	SyncDraws(ctx context.Context) error
}

func NewDrawPoller(tracer trace.Tracer, draws DrawSyncer, pollIntervalSecs int) *DrawPoller {
	return &DrawPoller{
		tracer:       tracer,
		draws:        draws,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start launches the sync loop. Blocks until ctx is cancelled.
func (p *DrawPoller) Start(ctx context.Context) {
	log.Println("Draw poller starting...")

	go p.pollLoop(ctx, "draw-sync", p.pollInterval, func(ctx context.Context) error {
		return p.draws.SyncDraws(ctx)
	})

	<-ctx.Done()
	log.Println("Draw poller stopped")
}

func (p *DrawPoller) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	// Run immediately on start
	if err := fn(ctx); err != nil {
		log.Printf("poller %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("poller %s error: %v", name, err)
			}
		}
	}
}
