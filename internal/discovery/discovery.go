// Package discovery filters the SDK finder's snapshot into the two views the control
// surface exposes: all visible sources, and the subset recognized as studio monitors.
package discovery

import (
	"strings"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

// OwnNamesFunc returns the set of destination names this process owns, so they can be
// excluded from discovery output (invariant 6: destination names are never returned by
// source listings).
type OwnNamesFunc func() map[string]struct{}

// Discovery wraps a finder with the router's filter policy.
type Discovery struct {
	finder   ndi.Finder
	ownNames OwnNamesFunc
}

// New wraps finder, using ownNames to exclude the process's own destinations from results.
func New(finder ndi.Finder, ownNames OwnNamesFunc) *Discovery {
	return &Discovery{finder: finder, ownNames: ownNames}
}

// Sources returns the current finder snapshot filtered to nonempty names that are not one
// of this process's own destination names.
func (d *Discovery) Sources() []ndi.Source {
	own := d.ownNames()
	var out []ndi.Source
	for _, s := range d.finder.Snapshot() {
		if s.Name == "" {
			continue
		}
		if _, isOwn := own[s.Name]; isOwn {
			continue
		}
		out = append(out, s)
	}
	return out
}

// StudioMonitors returns the subset of the raw finder snapshot whose name contains
// "studio monitor", matched ASCII case-insensitively. Unlike Sources, this does not
// exclude the process's own destination names: a destination this router created can
// itself be named "Studio Monitor ..." and must still show up here for the reset
// workflow, matching NDIManager::DiscoverStudioMonitors reading ndi_find_ directly
// instead of going through DiscoverSources' own-name filter.
func (d *Discovery) StudioMonitors() []ndi.Source {
	var out []ndi.Source
	for _, s := range d.finder.Snapshot() {
		if s.Name == "" {
			continue
		}
		if strings.Contains(strings.ToLower(s.Name), "studio monitor") {
			out = append(out, s)
		}
	}
	return out
}
