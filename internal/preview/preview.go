// Package preview implements the independent single-source snapshot pipeline used to feed
// an external preview monitor without touching the routing loop's receivers.
package preview

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

const (
	minFrameInterval = 42 * time.Millisecond // ~24 fps cap
	setDrainDelay    = 100 * time.Millisecond
	clearDrainDelay  = 50 * time.Millisecond
)

// SourceLookup resolves a source name against the current discovery snapshot; it returns
// false if the name is not currently visible.
type SourceLookup func(name string) bool

// Sampler holds at most one receiver and the name of the source it is bound to.
type Sampler struct {
	port   ndi.Port
	lookup SourceLookup

	mu           sync.Mutex
	receiver     ndi.Receiver
	sourceName   string
	lastCaptured time.Time
}

// New constructs a Sampler bound to port for receiver creation, using lookup to validate a
// requested preview source is currently visible.
func New(port ndi.Port, lookup SourceLookup) *Sampler {
	return &Sampler{port: port, lookup: lookup}
}

// SetSource clears any existing preview receiver, then creates a new one for src at
// "lowest" bandwidth. It fails if src is not present in the current discovery snapshot.
func (s *Sampler) SetSource(src string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.receiver != nil {
		s.receiver.Destroy()
		s.receiver = nil
		s.sourceName = ""
	}
	time.Sleep(setDrainDelay)

	if !s.lookup(src) {
		return fmt.Errorf("preview: source %q not found", src)
	}

	recv, err := s.port.NewReceiver(ndi.ReceiverConfig{
		SourceName:  src,
		Name:        "Router_Preview_" + src,
		Bandwidth:   ndi.BandwidthLowest,
		ColorFormat: ndi.ColorFormatBGRA,
	})
	if err != nil {
		return fmt.Errorf("preview: create receiver for %q: %w", src, err)
	}
	s.receiver = recv
	s.sourceName = src
	return nil
}

// CurrentSource returns the preview source name, or "" if none is set.
func (s *Sampler) CurrentSource() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceName
}

// Clear destroys the preview receiver, if any, with drain delays before and after.
func (s *Sampler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.receiver == nil {
		return
	}
	time.Sleep(clearDrainDelay)
	s.receiver.Destroy()
	time.Sleep(clearDrainDelay)
	s.receiver = nil
	s.sourceName = ""
}

// CaptureFrame returns an 8-byte little-endian width+height header followed by RGB pixel
// data (alpha dropped), or nil if there is no receiver, the request arrived faster than the
// ~24 fps cap allows, or no frame was available within the capture timeout.
func (s *Sampler) CaptureFrame() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.receiver == nil {
		return nil, nil
	}
	if !s.lastCaptured.IsZero() && time.Since(s.lastCaptured) < minFrameInterval {
		return nil, nil
	}

	frame, err := s.receiver.Capture(ndi.DefaultCaptureTimeout)
	if err != nil {
		return nil, fmt.Errorf("preview: capture: %w", err)
	}
	if frame.Kind != ndi.FrameVideo {
		return nil, nil
	}
	s.lastCaptured = time.Now()
	return bgraToFramedRGB(*frame.Video), nil
}

func bgraToFramedRGB(f ndi.VideoFrame) []byte {
	out := make([]byte, 8+f.Width*f.Height*3)
	binary.LittleEndian.PutUint32(out[0:4], uint32(f.Width))
	binary.LittleEndian.PutUint32(out[4:8], uint32(f.Height))

	dst := 8
	for y := 0; y < f.Height; y++ {
		row := y * f.Stride
		for x := 0; x < f.Width; x++ {
			px := row + x*4
			if px+3 >= len(f.Data) {
				break
			}
			b, g, r := f.Data[px], f.Data[px+1], f.Data[px+2]
			out[dst], out[dst+1], out[dst+2] = r, g, b
			dst += 3
		}
	}
	return out
}
