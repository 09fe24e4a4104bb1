package pool

import (
	"testing"

	"go.uber.org/goleak"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGetOrCreateReusesReceiver(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}})
	p := New(port, ndi.BandwidthHighest, nil)

	r1, err := p.GetOrCreate("CAM1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	r2, err := p.GetOrCreate("CAM1")
	if err != nil {
		t.Fatalf("GetOrCreate (again): %v", err)
	}
	if r1 != r2 {
		t.Fatal("expected the same receiver instance to be reused")
	}
}

func TestReconcileDropsUnusedEntries(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}, {Name: "CAM2"}})
	p := New(port, ndi.BandwidthHighest, nil)

	if _, err := p.GetOrCreate("CAM1"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := p.GetOrCreate("CAM2"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	p.Reconcile(map[string]struct{}{"CAM2": {}})

	names := p.Names()
	if len(names) != 1 || names[0] != "CAM2" {
		t.Fatalf("Names() = %v, want only CAM2", names)
	}
}
