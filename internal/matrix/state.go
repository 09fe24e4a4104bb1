package matrix

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

// InitDestinationPace is the delay between destination creations during InitializeDefault,
// kept from the original implementation to avoid SDK resource contention when several
// senders are created back to back.
const InitDestinationPace = 100 * time.Millisecond

// Matrix owns source slots, destinations, and routes. A single RWMutex guards all three:
// readers (control-surface GETs, the routing loop's mapping build) take RLock; every
// mutation takes Lock. This subsumes the cooperative "updating" flag described in the
// original design — see SPEC_FULL.md §4.3 and §5 for why the two are equivalent.
type Matrix struct {
	mu sync.RWMutex

	port ndi.Port
	log  *slog.Logger

	slots        []SourceSlot
	destinations []Destination
	routes       []Route

	previewSource string
}

// New constructs an empty Matrix. Call InitializeDefault to populate the standard 16
// slots / 4 destinations layout.
func New(port ndi.Port, log *slog.Logger) *Matrix {
	if log == nil {
		log = slog.Default()
	}
	return &Matrix{port: port, log: log}
}

// InitializeDefault creates 16 unassigned source slots and 4 destinations named
// "NDI Output 1".."NDI Output 4", pacing destination creation to avoid SDK resource
// contention. Sender creation failures are logged and skipped, not fatal.
func (m *Matrix) InitializeDefault() {
	m.mu.Lock()
	m.slots = make([]SourceSlot, 0, SourceSlotCount)
	for n := 1; n <= SourceSlotCount; n++ {
		m.slots = append(m.slots, SourceSlot{
			SlotNumber:  n,
			DisplayName: fmt.Sprintf("Slot %d", n),
		})
	}
	m.mu.Unlock()

	for n := 1; n <= 4; n++ {
		name := fmt.Sprintf("NDI Output %d", n)
		if _, err := m.CreateDestination(name, ""); err != nil {
			m.log.Warn("matrix: failed to create default destination", "name", name, "error", err)
		}
		if n < 4 {
			time.Sleep(InitDestinationPace)
		}
	}
}

// SourceSlots returns a snapshot of every source slot.
func (m *Matrix) SourceSlots() []SourceSlotView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SourceSlotView, len(m.slots))
	copy(out, m.slots)
	return out
}

// AssignSourceToSlot upserts slot n's assignment.
func (m *Matrix) AssignSourceToSlot(n int, sourceName, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.slotIndexLocked(n)
	if idx < 0 {
		return fmt.Errorf("%w: source slot %d", ErrNotFound, n)
	}
	if displayName == "" {
		displayName = m.slots[idx].DisplayName
	}
	m.slots[idx].AssignedSourceName = sourceName
	m.slots[idx].DisplayName = displayName
	m.slots[idx].Assigned = true
	return nil
}

// UnassignSourceSlot clears slot n's assignment, removes every route sourced from it,
// clears the current-source on affected destinations, clears the preview source recorded
// by SetPreviewSource if it matches, and reconciles the receiver pool via reconcile. The
// preview Sampler's own receiver and source name are not touched. Idempotent: unassigning
// an already-unassigned slot is a no-op that still succeeds.
func (m *Matrix) UnassignSourceSlot(n int, reconcile func()) error {
	m.mu.Lock()

	idx := m.slotIndexLocked(n)
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: source slot %d", ErrNotFound, n)
	}
	if !m.slots[idx].Assigned {
		m.mu.Unlock()
		return nil
	}

	freedSource := m.slots[idx].AssignedSourceName
	m.removeRoutesLocked(func(r Route) bool { return r.SourceSlot == n })
	if m.previewSource == freedSource {
		m.previewSource = ""
	}
	m.slots[idx] = SourceSlot{SlotNumber: n, DisplayName: fmt.Sprintf("Slot %d", n)}
	m.mu.Unlock()

	if reconcile != nil {
		reconcile()
	}
	return nil
}

// Destinations returns a snapshot of every destination.
func (m *Matrix) Destinations() []DestinationView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]DestinationView, len(m.destinations))
	for i, d := range m.destinations {
		out[i] = DestinationView{
			SlotNumber:        d.SlotNumber,
			Name:              d.Name,
			Description:       d.Description,
			Enabled:           d.Enabled,
			CurrentSourceSlot: d.CurrentSourceSlot,
		}
	}
	return out
}

// CreateDestination allocates the next slot number and creates an SDK sender for name. It
// rejects duplicate names explicitly (see DESIGN.md's resolution of the name-collision open
// question) rather than allowing a shadowed destination.
func (m *Matrix) CreateDestination(name, description string) (DestinationView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.destinations {
		if d.Name == name {
			return DestinationView{}, fmt.Errorf("%w: destination %q already exists", ErrInvalidRequest, name)
		}
	}

	sender, err := m.port.NewSender(name, false, false)
	if err != nil {
		return DestinationView{}, fmt.Errorf("%w: %v", ErrResourceCreate, err)
	}

	next := 1
	for _, d := range m.destinations {
		if d.SlotNumber >= next {
			next = d.SlotNumber + 1
		}
	}

	d := Destination{
		SlotNumber:  next,
		Name:        name,
		Description: description,
		Enabled:     true,
		sender:      sender,
	}
	m.destinations = append(m.destinations, d)
	return DestinationView{SlotNumber: d.SlotNumber, Name: d.Name, Description: d.Description, Enabled: d.Enabled}, nil
}

// RemoveDestination removes every incoming route, destroys the sender, and drops the
// destination.
func (m *Matrix) RemoveDestination(slot int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.destIndexLocked(slot)
	if idx < 0 {
		return fmt.Errorf("%w: destination %d", ErrNotFound, slot)
	}
	m.removeRoutesLocked(func(r Route) bool { return r.DestinationSlot == slot })
	m.destinations[idx].sender.Destroy()
	m.destinations = append(m.destinations[:idx], m.destinations[idx+1:]...)
	return nil
}

// Routes returns a snapshot of every route.
func (m *Matrix) Routes() []RouteView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RouteView, len(m.routes))
	copy(out, m.routes)
	return out
}

// CreateRoute validates slot s is assigned and destination d exists, then enforces
// at-most-one-incoming-route by removing any existing route to d before appending the new
// one. Creating an already-existing (s,d) route is a no-op that reports success.
func (m *Matrix) CreateRoute(s, d int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createRouteLocked(s, d)
}

func (m *Matrix) createRouteLocked(s, d int) error {
	slotIdx := m.slotIndexLocked(s)
	if slotIdx < 0 || !m.slots[slotIdx].Assigned {
		return fmt.Errorf("%w: source slot %d is not assigned", ErrInvalidRequest, s)
	}
	destIdx := m.destIndexLocked(d)
	if destIdx < 0 {
		return fmt.Errorf("%w: destination %d", ErrNotFound, d)
	}

	for _, r := range m.routes {
		if r.SourceSlot == s && r.DestinationSlot == d {
			return nil
		}
	}

	m.removeRoutesLocked(func(r Route) bool { return r.DestinationSlot == d })

	id := generateRouteID()
	m.routes = append(m.routes, Route{ID: id, SourceSlot: s, DestinationSlot: d, Active: true})
	m.destinations[destIdx].CurrentSourceSlot = s
	return nil
}

// RemoveRoute removes the matching route if present and clears the destination's current
// source. Returns ErrNotFound if no such route existed.
func (m *Matrix) RemoveRoute(s, d int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.removeRoutesLocked(func(r Route) bool { return r.SourceSlot == s && r.DestinationSlot == d })
	if removed == 0 {
		return fmt.Errorf("%w: route %d->%d", ErrNotFound, s, d)
	}
	if idx := m.destIndexLocked(d); idx >= 0 {
		m.destinations[idx].CurrentSourceSlot = 0
	}
	return nil
}

// UnassignDestination removes every incoming route to d and clears its current source. It
// always reports success, even when d had no incoming route — this asymmetry with
// RemoveAllRoutesFromSource is intentional; see DESIGN.md.
func (m *Matrix) UnassignDestination(d int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destIndexLocked(d) < 0 {
		return fmt.Errorf("%w: destination %d", ErrNotFound, d)
	}
	m.removeRoutesLocked(func(r Route) bool { return r.DestinationSlot == d })
	if idx := m.destIndexLocked(d); idx >= 0 {
		m.destinations[idx].CurrentSourceSlot = 0
	}
	return nil
}

// CreateMultipleRoutes iterates CreateRoute for each destination slot, applying successful
// routes even when others fail. It returns the number that succeeded and an error
// (ErrInvalidRequest-wrapped) iff at least one failed.
func (m *Matrix) CreateMultipleRoutes(s int, destSlots []int) (succeeded int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var failed []int
	for _, d := range destSlots {
		if e := m.createRouteLocked(s, d); e != nil {
			failed = append(failed, d)
			continue
		}
		succeeded++
	}
	if len(failed) > 0 {
		return succeeded, fmt.Errorf("%w: routes to destinations %v failed", ErrInvalidRequest, failed)
	}
	return succeeded, nil
}

// RemoveAllRoutesFromSource removes every route sourced from s and clears the current
// source on each affected destination. It returns ErrNotFound if none existed — see
// DESIGN.md for why this differs from UnassignDestination's always-succeeds contract.
func (m *Matrix) RemoveAllRoutesFromSource(s int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.removeRoutesLocked(func(r Route) bool { return r.SourceSlot == s })
	if removed == 0 {
		return fmt.Errorf("%w: no routes from source %d", ErrNotFound, s)
	}
	return nil
}

// GetDestinationsForSource returns the destination slots currently routed from s.
func (m *Matrix) GetDestinationsForSource(s int) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []int
	for _, r := range m.routes {
		if r.SourceSlot == s && r.Active {
			out = append(out, r.DestinationSlot)
		}
	}
	return out
}

// ActiveSourceNames returns the set of assigned-source names currently referenced by at
// least one active route — the set the receiver pool must hold open (invariant 5).
func (m *Matrix) ActiveSourceNames() map[string]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make(map[string]struct{})
	for _, r := range m.routes {
		if !r.Active {
			continue
		}
		if idx := m.slotIndexLocked(r.SourceSlot); idx >= 0 && m.slots[idx].Assigned {
			names[m.slots[idx].AssignedSourceName] = struct{}{}
		}
	}
	return names
}

// RoutingSnapshot is what the routing loop needs to build its per-tick mapping without
// holding the matrix lock across capture/send calls.
type RoutingSnapshot struct {
	// SourceToDestinations maps an assigned source name to the senders of every
	// destination it's currently routed to.
	SourceToDestinations map[string][]ndi.Sender
	RouteCount           int
	DestinationCount     int
}

// BuildRoutingSnapshot resolves active routes to assigned source names and destination
// senders in a single critical section, silently skipping routes that point at an
// unassigned slot or a since-removed destination.
func (m *Matrix) BuildRoutingSnapshot() RoutingSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping := make(map[string][]ndi.Sender)
	for _, r := range m.routes {
		if !r.Active {
			continue
		}
		slotIdx := m.slotIndexLocked(r.SourceSlot)
		if slotIdx < 0 || !m.slots[slotIdx].Assigned {
			continue
		}
		destIdx := m.destIndexLocked(r.DestinationSlot)
		if destIdx < 0 {
			continue
		}
		name := m.slots[slotIdx].AssignedSourceName
		mapping[name] = append(mapping[name], m.destinations[destIdx].sender)
	}
	return RoutingSnapshot{
		SourceToDestinations: mapping,
		RouteCount:           len(m.routes),
		DestinationCount:     len(m.destinations),
	}
}

// AllSenders returns every destination's sender, for the keepalive worker.
func (m *Matrix) AllSenders() []ndi.Sender {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ndi.Sender, len(m.destinations))
	for i, d := range m.destinations {
		out[i] = d.sender
	}
	return out
}

// DestinationNames returns the set of destination names, used by discovery to exclude our
// own outputs from source listings (invariant 6).
func (m *Matrix) DestinationNames() map[string]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]struct{}, len(m.destinations))
	for _, d := range m.destinations {
		out[d.Name] = struct{}{}
	}
	return out
}

// PreviewSource returns the source name currently set for preview, if any.
func (m *Matrix) PreviewSource() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previewSource
}

// SetPreviewSource records the preview source name. Matrix does not validate the name
// exists in discovery. Nothing in this module calls it: internal/preview.Sampler keeps its
// own source name and does not report it here.
func (m *Matrix) SetPreviewSource(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previewSource = name
}

// Shutdown destroys every destination sender. internal/app calls it after the routing loop
// has stopped and the pooled receivers are destroyed, and before the preview receiver is
// cleared and the SDK is torn down.
func (m *Matrix) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.destinations {
		d.sender.Destroy()
	}
	m.destinations = nil
	m.routes = nil
}

func (m *Matrix) slotIndexLocked(n int) int {
	for i, s := range m.slots {
		if s.SlotNumber == n {
			return i
		}
	}
	return -1
}

func (m *Matrix) destIndexLocked(slot int) int {
	for i, d := range m.destinations {
		if d.SlotNumber == slot {
			return i
		}
	}
	return -1
}

// removeRoutesLocked drops every route matching pred and returns how many it dropped. For
// each dropped route it clears CurrentSourceSlot on the destination if that destination
// still points at the route's source slot; callers may clear it again themselves.
func (m *Matrix) removeRoutesLocked(pred func(Route) bool) int {
	kept := m.routes[:0]
	removed := 0
	for _, r := range m.routes {
		if pred(r) {
			removed++
			if idx := m.destIndexLocked(r.DestinationSlot); idx >= 0 && m.destinations[idx].CurrentSourceSlot == r.SourceSlot {
				m.destinations[idx].CurrentSourceSlot = 0
			}
			continue
		}
		kept = append(kept, r)
	}
	m.routes = kept
	return removed
}

// generateRouteID produces an 8-hex-digit id with a dash after the 4th digit, using
// crypto-grade randomness sourced from uuid.New() rather than a hand-rolled PRNG.
func generateRouteID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return raw[:4] + "-" + raw[4:8]
}
