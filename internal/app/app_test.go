package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/e7canasta/matrixrouter/internal/config"
	"github.com/e7canasta/matrixrouter/internal/ndi"
)

func TestAppRunServesHealthAndShutsDownCleanly(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 18080

	svc, err := New(cfg, ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}}), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get("http://127.0.0.1:18080/api/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /api/health never succeeded: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error after cancel: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
