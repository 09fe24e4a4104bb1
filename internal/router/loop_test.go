package router

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/e7canasta/matrixrouter/internal/keepalive"
	"github.com/e7canasta/matrixrouter/internal/matrix"
	"github.com/e7canasta/matrixrouter/internal/ndi"
	"github.com/e7canasta/matrixrouter/internal/pool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoopForwardsFramesToRoutedDestination(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}})
	m := matrix.New(port, nil)
	m.InitializeDefault()
	if err := m.AssignSourceToSlot(1, "CAM1", "Main"); err != nil {
		t.Fatalf("AssignSourceToSlot: %v", err)
	}
	if err := m.CreateRoute(1, 1); err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}

	p := pool.New(port, ndi.BandwidthHighest, nil)
	k := keepalive.New(nil)
	loop := New(m, p, k, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)

	deadline := time.Now().Add(500 * time.Millisecond)
	for {
		if _, ok := port.LastSent(m.Destinations()[0].Name); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for a frame to reach the destination sender")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	loop.Stop()
}

func TestLoopForwardsAudioFramesToRoutedDestination(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}})
	m := matrix.New(port, nil)
	m.InitializeDefault()
	if err := m.AssignSourceToSlot(1, "CAM1", "Main"); err != nil {
		t.Fatalf("AssignSourceToSlot: %v", err)
	}
	if err := m.CreateRoute(1, 1); err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}

	p := pool.New(port, ndi.BandwidthHighest, nil)
	k := keepalive.New(nil)
	loop := New(m, p, k, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)

	deadline := time.Now().Add(500 * time.Millisecond)
	for {
		if _, ok := port.LastSentAudio(m.Destinations()[0].Name); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for an audio frame to reach the destination sender")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	loop.Stop()
}

func TestLoopStartStopIsClean(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}})
	m := matrix.New(port, nil)
	m.InitializeDefault()
	if err := m.AssignSourceToSlot(1, "CAM1", "Main"); err != nil {
		t.Fatalf("AssignSourceToSlot: %v", err)
	}
	if err := m.CreateRoute(1, 1); err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}

	p := pool.New(port, ndi.BandwidthHighest, nil)
	k := keepalive.New(nil)
	loop := New(m, p, k, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	loop.Stop()
}
