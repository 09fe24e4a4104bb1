// Package app wires the matrix, receiver pool, routing loop, keepalive, preview sampler,
// and HTTP control surface into one runnable service and owns the shutdown order described
// in SPEC_FULL.md §3: routing worker stop -> finder -> pooled receivers -> destination
// senders -> preview receiver -> SDK teardown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/e7canasta/matrixrouter/internal/config"
	"github.com/e7canasta/matrixrouter/internal/discovery"
	"github.com/e7canasta/matrixrouter/internal/httpapi"
	"github.com/e7canasta/matrixrouter/internal/keepalive"
	"github.com/e7canasta/matrixrouter/internal/matrix"
	"github.com/e7canasta/matrixrouter/internal/metrics"
	"github.com/e7canasta/matrixrouter/internal/ndi"
	"github.com/e7canasta/matrixrouter/internal/pool"
	"github.com/e7canasta/matrixrouter/internal/preview"
	"github.com/e7canasta/matrixrouter/internal/router"
	"github.com/prometheus/client_golang/prometheus"
)

// App holds every constructed component, ready to Run.
type App struct {
	cfg config.Config
	log *slog.Logger

	port   ndi.Port
	finder ndi.Finder

	matrix  *matrix.Matrix
	pool    *pool.Pool
	loop    *router.Loop
	keep    *keepalive.Keepalive
	sampler *preview.Sampler
	http    *httpapi.Server
}

// New constructs every component but does not start anything.
func New(cfg config.Config, port ndi.Port, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := port.Init(); err != nil {
		return nil, fmt.Errorf("app: sdk init: %w", err)
	}

	finder, err := port.NewFinder(true)
	if err != nil {
		port.Shutdown()
		return nil, fmt.Errorf("app: finder create: %w", err)
	}

	m := matrix.New(port, log)
	m.InitializeDefault()

	p := pool.New(port, cfg.Bandwidth(), log)
	k := keepalive.New(log)

	registry := prometheus.NewRegistry()
	met := metrics.New(registry)
	loop := router.New(m, p, k, log, met)

	sampler := preview.New(port, func(name string) bool {
		for _, s := range finder.Snapshot() {
			if s.Name == name {
				return true
			}
		}
		return false
	})

	reconcile := func() { p.Reconcile(m.ActiveSourceNames()) }
	disc := discovery.New(finder, m.DestinationNames)
	httpSrv := httpapi.New(m, disc, sampler, reconcile, registry, log, cfg.RateLimitPerMinute)

	return &App{
		cfg:     cfg,
		log:     log,
		port:    port,
		finder:  finder,
		matrix:  m,
		pool:    p,
		loop:    loop,
		keep:    k,
		sampler: sampler,
		http:    httpSrv,
	}, nil
}

// Run starts the routing loop and HTTP server and blocks until ctx is cancelled or either
// fails, then tears everything down in order.
func (a *App) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)

	a.loop.Start(gctx)

	errCh := make(chan error, 1)
	a.http.Start(fmt.Sprintf(":%d", a.cfg.Port), errCh)

	group.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-errCh:
			return fmt.Errorf("app: http server: %w", err)
		}
	})

	err := group.Wait()
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	a.loop.Stop()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.http.Stop(stopCtx); err != nil {
		a.log.Warn("app: http shutdown", "error", err)
	}

	a.finder.Destroy()
	a.pool.Shutdown()
	a.matrix.Shutdown()
	a.sampler.Clear()
	a.port.Shutdown()
}
