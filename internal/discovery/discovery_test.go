package discovery

import (
	"testing"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

func TestSourcesExcludesOwnDestinations(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}, {Name: "NDI Output 1"}})
	finder, _ := port.NewFinder(true)
	d := New(finder, func() map[string]struct{} {
		return map[string]struct{}{"NDI Output 1": {}}
	})

	got := d.Sources()
	if len(got) != 1 || got[0].Name != "CAM1" {
		t.Fatalf("Sources() = %+v, want only CAM1", got)
	}
}

func TestStudioMonitorsCaseInsensitive(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{
		{Name: "Control Room Studio Monitor L"},
		{Name: "CAM1"},
	})
	finder, _ := port.NewFinder(true)
	d := New(finder, func() map[string]struct{} { return nil })

	got := d.StudioMonitors()
	if len(got) != 1 || got[0].Name != "Control Room Studio Monitor L" {
		t.Fatalf("StudioMonitors() = %+v", got)
	}
}

func TestStudioMonitorsIncludesOwnDestinations(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{
		{Name: "Control Room Studio Monitor L"},
		{Name: "CAM1"},
	})
	finder, _ := port.NewFinder(true)
	d := New(finder, func() map[string]struct{} {
		return map[string]struct{}{"Control Room Studio Monitor L": {}}
	})

	got := d.Sources()
	if len(got) != 1 || got[0].Name != "CAM1" {
		t.Fatalf("Sources() = %+v, want only CAM1 with own destination excluded", got)
	}

	got = d.StudioMonitors()
	if len(got) != 1 || got[0].Name != "Control Room Studio Monitor L" {
		t.Fatalf("StudioMonitors() = %+v, want the router's own studio monitor destination included", got)
	}
}
