// Package ndi is the thin abstraction over the vendor discovery-and-transport SDK
// (initialize/destroy, finder, receiver, sender, frame free). It is the only surface the
// rest of the routing core depends on; nothing outside this package touches SDK handles
// directly.
package ndi

import "time"

// Bandwidth selects how much of a source's signal a receiver asks for.
type Bandwidth int

const (
	BandwidthHighest Bandwidth = iota
	BandwidthLowest
)

// ColorFormat selects the pixel layout a receiver decodes video into.
type ColorFormat int

const (
	ColorFormatBGRA ColorFormat = iota
)

// Source is a discovery record for a live network source.
type Source struct {
	Name      string
	URL       string
	Connected bool
	Group     string
}

// FrameKind tags what a Capture call returned.
type FrameKind int

const (
	FrameNone FrameKind = iota
	FrameVideo
	FrameAudio
	FrameMetadata
	FrameStatusChange
	FrameSourceChange
)

// VideoFrame is a single decoded video frame. Pixels are laid out row-major, BGRA, with
// Stride bytes per row (Stride >= Width*4).
type VideoFrame struct {
	Width     int
	Height    int
	Stride    int
	Data      []byte
	Timecode  int64
	FrameRate int
}

// AudioFrame is opaque to the routing core; it is forwarded byte-for-byte.
type AudioFrame struct {
	SampleRate int
	Channels   int
	Data       []byte
}

// CapturedFrame is the tagged variant returned by Receiver.Capture. Exactly one of Video,
// Audio is non-nil when Kind is FrameVideo/FrameAudio.
type CapturedFrame struct {
	Kind  FrameKind
	Video *VideoFrame
	Audio *AudioFrame
}

// ReceiverConfig configures a new receiver.
type ReceiverConfig struct {
	SourceName  string
	Name        string
	Bandwidth   Bandwidth
	ColorFormat ColorFormat
}

// DefaultCaptureTimeout is the short poll timeout the routing loop and preview sampler use
// so a stopped worker observes shutdown within roughly one tick.
const DefaultCaptureTimeout = time.Millisecond
