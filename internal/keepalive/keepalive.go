// Package keepalive synthesizes a black frame heartbeat so idle destinations stay visible
// on the network while no route feeds them.
package keepalive

import (
	"log/slog"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

const (
	frameWidth  = 1280
	frameHeight = 720
	frameRate   = 30
	logEvery    = 300
)

// Keepalive holds the counters needed to synthesize monotonically timecoded black frames.
type Keepalive struct {
	log     *slog.Logger
	counter int64
}

// New constructs a Keepalive.
func New(log *slog.Logger) *Keepalive {
	if log == nil {
		log = slog.Default()
	}
	return &Keepalive{log: log}
}

// SendTo emits one black frame to every sender in senders. It is meant to be called once
// per routing-loop status tick while the route set is empty.
func (k *Keepalive) SendTo(senders []ndi.Sender) {
	k.counter++
	frame := ndi.VideoFrame{
		Width:     frameWidth,
		Height:    frameHeight,
		Stride:    frameWidth * 4,
		Data:      make([]byte, frameWidth*frameHeight*4),
		Timecode:  k.counter * 1000,
		FrameRate: frameRate,
	}
	for _, s := range senders {
		if s == nil {
			continue
		}
		if err := s.SendVideo(frame); err != nil {
			k.log.Warn("keepalive: send failed", "error", err)
		}
	}
	if k.counter%logEvery == 0 {
		k.log.Info("keepalive: sending black frames", "destinations", len(senders), "frames_sent", k.counter)
	}
}
