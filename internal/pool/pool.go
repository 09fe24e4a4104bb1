// Package pool holds one live receiver per actively-used source name, shared across
// fan-out and reference-counted by active routes.
package pool

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

// Pool is the receiver pool described in SPEC_FULL.md §4.4. It is safe for concurrent use.
type Pool struct {
	port      ndi.Port
	bandwidth ndi.Bandwidth
	log       *slog.Logger

	mu      sync.Mutex
	entries map[string]ndi.Receiver
}

// New constructs a Pool that creates receivers at the given bandwidth (routing uses
// "highest" by default, configurable per SPEC_FULL.md §9).
func New(port ndi.Port, bandwidth ndi.Bandwidth, log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	return &Pool{
		port:      port,
		bandwidth: bandwidth,
		log:       log,
		entries:   make(map[string]ndi.Receiver),
	}
}

// GetOrCreate returns the pooled receiver for name, creating one if absent. The logical
// receiver name given to the SDK is "Router_Recv_"+name, matching the original
// implementation.
func (p *Pool) GetOrCreate(name string) (ndi.Receiver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r, ok := p.entries[name]; ok {
		return r, nil
	}
	r, err := p.port.NewReceiver(ndi.ReceiverConfig{
		SourceName:  name,
		Name:        "Router_Recv_" + name,
		Bandwidth:   p.bandwidth,
		ColorFormat: ndi.ColorFormatBGRA,
	})
	if err != nil {
		return nil, fmt.Errorf("pool: create receiver for %q: %w", name, err)
	}
	p.entries[name] = r
	return r, nil
}

// Reconcile destroys and drops every pooled entry whose source name is not in active.
func (p *Pool) Reconcile(active map[string]struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, r := range p.entries {
		if _, ok := active[name]; ok {
			continue
		}
		r.Destroy()
		delete(p.entries, name)
		p.log.Debug("pool: reconciled unused receiver", "source", name)
	}
}

// Names returns the current set of pooled source names, for tests and status logging.
func (p *Pool) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.entries))
	for name := range p.entries {
		out = append(out, name)
	}
	return out
}

// Shutdown destroys every pooled receiver.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, r := range p.entries {
		r.Destroy()
		delete(p.entries, name)
	}
}
