package matrix

import (
	"errors"
	"strconv"
	"testing"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

func newTestMatrix(t *testing.T) *Matrix {
	t.Helper()
	port := ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}, {Name: "CAM2"}})
	return New(port, nil)
}

func TestInitializeDefaultCreatesSlotsAndDestinations(t *testing.T) {
	m := newTestMatrix(t)
	m.InitializeDefault()

	slots := m.SourceSlots()
	if len(slots) != SourceSlotCount {
		t.Fatalf("len(slots) = %d, want %d", len(slots), SourceSlotCount)
	}
	for i, s := range slots {
		if s.Assigned {
			t.Fatalf("slot %d should be unassigned", s.SlotNumber)
		}
		if s.DisplayName != "Slot "+strconv.Itoa(i+1) {
			t.Fatalf("slot %d display name = %q", s.SlotNumber, s.DisplayName)
		}
	}

	dests := m.Destinations()
	if len(dests) != 4 {
		t.Fatalf("len(destinations) = %d, want 4", len(dests))
	}
	for i, d := range dests {
		want := "NDI Output " + strconv.Itoa(i+1)
		if d.Name != want {
			t.Fatalf("destination %d name = %q, want %q", i, d.Name, want)
		}
	}
}

func TestCreateRouteEnforcesAtMostOneIncoming(t *testing.T) {
	m := newTestMatrix(t)
	m.InitializeDefault()
	if err := m.AssignSourceToSlot(3, "CAM1", "Main"); err != nil {
		t.Fatalf("AssignSourceToSlot: %v", err)
	}
	if err := m.AssignSourceToSlot(4, "CAM2", "Backup"); err != nil {
		t.Fatalf("AssignSourceToSlot: %v", err)
	}

	if err := m.CreateRoute(3, 2); err != nil {
		t.Fatalf("CreateRoute(3,2): %v", err)
	}
	if err := m.CreateRoute(4, 2); err != nil {
		t.Fatalf("CreateRoute(4,2): %v", err)
	}

	routes := m.Routes()
	if len(routes) != 1 {
		t.Fatalf("len(routes) = %d, want 1 (invariant 1)", len(routes))
	}
	if routes[0].SourceSlot != 4 {
		t.Fatalf("routes[0].SourceSlot = %d, want 4", routes[0].SourceSlot)
	}

	dests := m.Destinations()
	if dests[1].CurrentSourceSlot != 4 {
		t.Fatalf("destination 2 CurrentSourceSlot = %d, want 4", dests[1].CurrentSourceSlot)
	}
}

func TestCreateRouteIsIdempotent(t *testing.T) {
	m := newTestMatrix(t)
	m.InitializeDefault()
	_ = m.AssignSourceToSlot(3, "CAM1", "Main")

	if err := m.CreateRoute(3, 2); err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}
	if err := m.CreateRoute(3, 2); err != nil {
		t.Fatalf("CreateRoute (repeat): %v", err)
	}
	if len(m.Routes()) != 1 {
		t.Fatalf("len(routes) = %d, want 1", len(m.Routes()))
	}
}

func TestUnassignSourceSlotIsIdempotentAndCascades(t *testing.T) {
	m := newTestMatrix(t)
	m.InitializeDefault()
	_ = m.AssignSourceToSlot(3, "CAM1", "Main")
	_ = m.CreateRoute(3, 2)

	if err := m.UnassignSourceSlot(3, nil); err != nil {
		t.Fatalf("UnassignSourceSlot: %v", err)
	}
	if len(m.Routes()) != 0 {
		t.Fatalf("routes should be empty after unassigning slot 3")
	}
	if m.Destinations()[1].CurrentSourceSlot != 0 {
		t.Fatalf("destination 2 CurrentSourceSlot should be cleared")
	}

	// Idempotent: unassigning again is a no-op success.
	if err := m.UnassignSourceSlot(3, nil); err != nil {
		t.Fatalf("UnassignSourceSlot (repeat): %v", err)
	}
}

func TestCreateDestinationRejectsDuplicateNames(t *testing.T) {
	m := newTestMatrix(t)
	if _, err := m.CreateDestination("Studio A", ""); err != nil {
		t.Fatalf("CreateDestination: %v", err)
	}
	if _, err := m.CreateDestination("Studio A", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("CreateDestination duplicate: err = %v, want ErrInvalidRequest", err)
	}
}

func TestUnassignDestinationAlwaysSucceeds(t *testing.T) {
	m := newTestMatrix(t)
	m.InitializeDefault()
	if err := m.UnassignDestination(2); err != nil {
		t.Fatalf("UnassignDestination on unrouted destination: %v", err)
	}
}

func TestRemoveAllRoutesFromSourceReportsNotFoundWhenNoneExisted(t *testing.T) {
	m := newTestMatrix(t)
	m.InitializeDefault()
	if err := m.RemoveAllRoutesFromSource(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveAllRoutesFromSource with no routes: err = %v, want ErrNotFound", err)
	}
}

func TestActiveSourceNamesMatchesRoutes(t *testing.T) {
	m := newTestMatrix(t)
	m.InitializeDefault()
	_ = m.AssignSourceToSlot(3, "CAM1", "Main")
	_ = m.AssignSourceToSlot(4, "CAM2", "Backup")
	_ = m.CreateRoute(3, 1)
	_ = m.CreateRoute(4, 2)

	names := m.ActiveSourceNames()
	if _, ok := names["CAM1"]; !ok {
		t.Fatal("expected CAM1 in active source names")
	}
	if _, ok := names["CAM2"]; !ok {
		t.Fatal("expected CAM2 in active source names")
	}
	if len(names) != 2 {
		t.Fatalf("len(names) = %d, want 2", len(names))
	}
}
