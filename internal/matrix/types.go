// Package matrix owns the routing engine's data model: source slots, destinations, and
// routes between them. It is the only component that mutates that state; every other
// component either reads a snapshot from it or is told by it which SDK handles to touch.
package matrix

import "github.com/e7canasta/matrixrouter/internal/ndi"

// SourceSlotCount is the fixed number of assignable source slots.
const SourceSlotCount = 16

// SourceSlot is an addressable assignment cell binding a discovered source name for use in
// routes.
type SourceSlot struct {
	SlotNumber          int
	AssignedSourceName  string
	DisplayName         string
	Assigned            bool
}

// Destination is a live network output owned by this process.
type Destination struct {
	SlotNumber        int
	Name              string
	Description       string
	Enabled           bool
	CurrentSourceSlot int

	sender ndi.Sender
}

// Route is a directed edge from a source slot to a destination slot.
type Route struct {
	ID              string
	SourceSlot      int
	DestinationSlot int
	Active          bool
}

// SourceSlotView, DestinationView, and RouteView are the read-only projections returned by
// the getter methods; they carry no SDK handles so callers (notably internal/httpapi) can
// hold onto them safely after the matrix lock is released.
type SourceSlotView = SourceSlot

type DestinationView struct {
	SlotNumber        int
	Name              string
	Description       string
	Enabled           bool
	CurrentSourceSlot int
}

type RouteView = Route
