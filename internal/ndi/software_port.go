//go:build !ndi_cgo

package ndi

import (
	"fmt"
	"sync"
	"time"
)

// softwarePort is the default Port used whenever the module is built without the ndi_cgo
// tag (i.e. without a real vendor SDK linked). It simulates a small, stable catalogue of
// network sources and records everything senders publish, so the routing core, its tests,
// and cmd/matrixrouterd can run end-to-end without a physical NDI runtime present.
type softwarePort struct {
	mu        sync.Mutex
	catalogue []Source
	sent      map[string][]VideoFrame
	sentAudio map[string][]AudioFrame
}

// SoftwarePort is the exported handle to a simulated Port, letting tests outside this
// package seed sources and inspect sent frames without a type assertion on an unexported
// type.
type SoftwarePort = softwarePort

// NewSoftwarePort constructs the simulated Port. catalogue seeds the sources every Finder
// created from this Port will report; pass nil for an empty catalogue.
func NewSoftwarePort(catalogue []Source) *SoftwarePort {
	return &softwarePort{
		catalogue: catalogue,
		sent:      make(map[string][]VideoFrame),
		sentAudio: make(map[string][]AudioFrame),
	}
}

// NewPort returns the default Port for the current build: the software simulation unless
// built with the ndi_cgo tag.
func NewPort() Port { return NewSoftwarePort(nil) }

func (p *softwarePort) Init() error { return nil }
func (p *softwarePort) Shutdown()   {}

func (p *softwarePort) NewFinder(showLocal bool) (Finder, error) {
	return &softwareFinder{port: p}, nil
}

func (p *softwarePort) NewReceiver(cfg ReceiverConfig) (Receiver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.catalogue {
		if s.Name == cfg.SourceName {
			return &softwareReceiver{port: p, source: cfg.SourceName}, nil
		}
	}
	return &softwareReceiver{port: p, source: cfg.SourceName}, nil
}

func (p *softwarePort) NewSender(name string, clockVideo, clockAudio bool) (Sender, error) {
	if name == "" {
		return nil, fmt.Errorf("ndi: sender name must not be empty")
	}
	return &softwareSender{port: p, name: name}, nil
}

// AddSource lets tests grow the discovery catalogue at runtime.
func (p *softwarePort) AddSource(s Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalogue = append(p.catalogue, s)
}

// LastSent returns the most recent video frame sent to a destination sender by name, for
// assertions in tests.
func (p *softwarePort) LastSent(senderName string) (VideoFrame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	frames := p.sent[senderName]
	if len(frames) == 0 {
		return VideoFrame{}, false
	}
	return frames[len(frames)-1], true
}

// LastSentAudio returns the most recent audio frame sent to a destination sender by name,
// for assertions in tests.
func (p *softwarePort) LastSentAudio(senderName string) (AudioFrame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	frames := p.sentAudio[senderName]
	if len(frames) == 0 {
		return AudioFrame{}, false
	}
	return frames[len(frames)-1], true
}

type softwareFinder struct {
	port *softwarePort
}

func (f *softwareFinder) Snapshot() []Source {
	f.port.mu.Lock()
	defer f.port.mu.Unlock()
	out := make([]Source, len(f.port.catalogue))
	copy(out, f.port.catalogue)
	return out
}

func (f *softwareFinder) Destroy() {}

type softwareReceiver struct {
	port     *softwarePort
	source   string
	sequence int
}

func (r *softwareReceiver) Capture(timeout time.Duration) (CapturedFrame, error) {
	r.port.mu.Lock()
	found := false
	for _, s := range r.port.catalogue {
		if s.Name == r.source {
			found = true
			break
		}
	}
	r.port.mu.Unlock()
	if !found {
		return CapturedFrame{Kind: FrameNone}, nil
	}
	r.sequence++
	if r.sequence%audioEveryNthFrame == 0 {
		const sampleRate, channels, samples = 48000, 2, 4
		frame := AudioFrame{
			SampleRate: sampleRate,
			Channels:   channels,
			Data:       make([]byte, channels*samples*4),
		}
		return CapturedFrame{Kind: FrameAudio, Audio: &frame}, nil
	}
	frame := VideoFrame{
		Width:    16,
		Height:   9,
		Stride:   16 * 4,
		Data:     make([]byte, 16*9*4),
		Timecode: int64(r.sequence),
	}
	return CapturedFrame{Kind: FrameVideo, Video: &frame}, nil
}

// audioEveryNthFrame makes every fourth simulated capture an audio frame instead of video,
// so both branches of the routing loop's frame-kind switch get exercised without needing a
// separate simulated audio-only source.
const audioEveryNthFrame = 4

func (r *softwareReceiver) Destroy() {}

type softwareSender struct {
	port *softwarePort
	name string
}

func (s *softwareSender) SendVideo(f VideoFrame) error {
	s.port.mu.Lock()
	defer s.port.mu.Unlock()
	s.port.sent[s.name] = append(s.port.sent[s.name], f)
	return nil
}

func (s *softwareSender) SendAudio(f AudioFrame) error {
	s.port.mu.Lock()
	defer s.port.mu.Unlock()
	s.port.sentAudio[s.name] = append(s.port.sentAudio[s.name], f)
	return nil
}
func (s *softwareSender) Destroy()                     {}
