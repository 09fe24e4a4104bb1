package ndi

import "time"

// Port is the SDK boundary: initialize/destroy plus the finder, receiver, and sender
// factories. A Port must be safe for concurrent use by independent callers, but the
// Finder/Receiver/Sender handles it produces follow the SDK's single-logical-owner
// contract and are not required to be safe for concurrent use by more than one caller.
type Port interface {
	// Init prepares the SDK runtime. It must be called once before any other method.
	Init() error
	// Shutdown tears down the SDK runtime. Callers must have already destroyed every
	// Finder, Receiver, and Sender obtained from this Port.
	Shutdown()

	NewFinder(showLocal bool) (Finder, error)
	NewReceiver(cfg ReceiverConfig) (Receiver, error)
	NewSender(name string, clockVideo, clockAudio bool) (Sender, error)
}

// Finder produces a live snapshot of currently visible network sources.
type Finder interface {
	Snapshot() []Source
	Destroy()
}

// Receiver pulls frames from one named source.
type Receiver interface {
	// Capture blocks for up to timeout waiting for the next frame. A FrameNone result is
	// not an error; it means nothing arrived within the timeout.
	Capture(timeout time.Duration) (CapturedFrame, error)
	Destroy()
}

// Sender publishes frames under one destination name.
type Sender interface {
	SendVideo(f VideoFrame) error
	SendAudio(f AudioFrame) error
	Destroy()
}
