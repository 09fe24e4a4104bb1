package preview

import (
	"encoding/binary"
	"testing"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

func TestSetSourceRejectsUnknownSource(t *testing.T) {
	port := ndi.NewSoftwarePort(nil)
	s := New(port, func(name string) bool { return false })
	if err := s.SetSource("CAM1"); err == nil {
		t.Fatal("SetSource on unknown source should fail")
	}
}

func TestCaptureFrameFramingAndRateCap(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}})
	s := New(port, func(name string) bool { return name == "CAM1" })
	if err := s.SetSource("CAM1"); err != nil {
		t.Fatalf("SetSource: %v", err)
	}

	buf, err := s.CaptureFrame()
	if err != nil {
		t.Fatalf("CaptureFrame: %v", err)
	}
	if buf == nil {
		t.Fatal("expected a frame on first capture")
	}
	width := binary.LittleEndian.Uint32(buf[0:4])
	height := binary.LittleEndian.Uint32(buf[4:8])
	if int(width)*int(height)*3+8 != len(buf) {
		t.Fatalf("buf length %d does not match header W=%d H=%d", len(buf), width, height)
	}

	// Immediately calling again should be rate-limited to nil.
	buf2, err := s.CaptureFrame()
	if err != nil {
		t.Fatalf("CaptureFrame (rate-limited): %v", err)
	}
	if buf2 != nil {
		t.Fatal("expected nil due to rate cap")
	}
}

func TestClearIsSafeWithoutSource(t *testing.T) {
	port := ndi.NewSoftwarePort(nil)
	s := New(port, func(string) bool { return false })
	s.Clear() // must not panic or block meaningfully
}

func TestClearThenCaptureReturnsNil(t *testing.T) {
	port := ndi.NewSoftwarePort([]ndi.Source{{Name: "CAM1"}})
	s := New(port, func(name string) bool { return true })
	_ = s.SetSource("CAM1")
	s.Clear()
	buf, err := s.CaptureFrame()
	if err != nil {
		t.Fatalf("CaptureFrame: %v", err)
	}
	if buf != nil {
		t.Fatal("expected nil after Clear")
	}
}
