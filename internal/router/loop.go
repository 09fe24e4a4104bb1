// Package router runs the single cooperative worker that copies frames from active-route
// sources to their destinations' senders.
package router

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/e7canasta/matrixrouter/internal/keepalive"
	"github.com/e7canasta/matrixrouter/internal/matrix"
	"github.com/e7canasta/matrixrouter/internal/ndi"
	"github.com/e7canasta/matrixrouter/internal/pool"
)

const (
	captureTimeout = ndi.DefaultCaptureTimeout
	tickSleep      = time.Millisecond
	statusInterval = 10 * time.Second
	reconcileEvery = 5 * time.Second
)

// Metrics is the narrow surface the loop reports through; internal/metrics implements it.
type Metrics interface {
	ObserveTick(routes, destinations int)
	FrameForwarded()
	FrameDropped()
	KeepaliveFrame()
}

type noopMetrics struct{}

func (noopMetrics) ObserveTick(int, int) {}
func (noopMetrics) FrameForwarded()      {}
func (noopMetrics) FrameDropped()        {}
func (noopMetrics) KeepaliveFrame()      {}

// Loop is the routing worker. Construct with New, then Start/Stop it once each.
type Loop struct {
	matrix *matrix.Matrix
	pool   *pool.Pool
	keep   *keepalive.Keepalive
	log    *slog.Logger
	metric Metrics

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Loop. metric may be nil, in which case metrics are discarded.
func New(m *matrix.Matrix, p *pool.Pool, k *keepalive.Keepalive, log *slog.Logger, metric Metrics) *Loop {
	if log == nil {
		log = slog.Default()
	}
	if metric == nil {
		metric = noopMetrics{}
	}
	return &Loop{matrix: m, pool: p, keep: k, log: log, metric: metric}
}

// Start launches the routing goroutine. Start must be called at most once.
func (l *Loop) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.wg.Add(1)
	go l.run(ctx)
}

// Stop cancels the routing goroutine and waits for it to exit. Stop must be called after
// Start and is idempotent.
func (l *Loop) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()

	lastStatus := time.Now()
	lastReconcile := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		now := time.Now()
		if now.Sub(lastStatus) >= statusInterval {
			lastStatus = now
			snap := l.matrix.BuildRoutingSnapshot()
			l.log.Info("router: status", "routes", snap.RouteCount, "destinations", snap.DestinationCount)
			l.metric.ObserveTick(snap.RouteCount, snap.DestinationCount)
			if snap.RouteCount == 0 {
				l.keep.SendTo(l.matrix.AllSenders())
				l.metric.KeepaliveFrame()
			}
		}

		snap := l.matrix.BuildRoutingSnapshot()
		for sourceName, senders := range snap.SourceToDestinations {
			l.forwardOnce(sourceName, senders)
		}

		if now.Sub(lastReconcile) >= reconcileEvery {
			lastReconcile = now
			l.pool.Reconcile(l.matrix.ActiveSourceNames())
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(tickSleep):
		}
	}
}

func (l *Loop) forwardOnce(sourceName string, senders []ndi.Sender) {
	recv, err := l.pool.GetOrCreate(sourceName)
	if err != nil {
		l.log.Warn("router: receiver unavailable", "source", sourceName, "error", err)
		return
	}

	frame, err := recv.Capture(captureTimeout)
	if err != nil {
		l.log.Warn("router: capture failed", "source", sourceName, "error", err)
		return
	}

	switch frame.Kind {
	case ndi.FrameVideo:
		for _, s := range senders {
			if err := s.SendVideo(*frame.Video); err != nil {
				l.log.Warn("router: send video failed", "source", sourceName, "error", err)
				l.metric.FrameDropped()
				continue
			}
			l.metric.FrameForwarded()
		}
	case ndi.FrameAudio:
		for _, s := range senders {
			if err := s.SendAudio(*frame.Audio); err != nil {
				l.log.Warn("router: send audio failed", "source", sourceName, "error", err)
				continue
			}
		}
	default:
		// FrameNone, FrameMetadata, FrameStatusChange, FrameSourceChange: nothing to
		// forward this tick.
	}
}
