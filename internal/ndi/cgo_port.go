//go:build ndi_cgo

package ndi

/*
#cgo LDFLAGS: -lndi
#include <Processing.NDI.Lib.h>
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"time"
	"unsafe"
)

// cgoPort binds directly against libndi, the way modules/stream-capture/internal/rtsp
// wraps libgstreamer: small Create*/Destroy* calls, explicit C string ownership, no
// buffering beyond what the SDK itself does.
type cgoPort struct{}

// NewCGOPort returns the production Port backed by the real NDI SDK. It requires the
// vendor runtime library to be present at link and load time.
func NewCGOPort() Port { return cgoPort{} }

// NewPort returns the default Port for an ndi_cgo build: the real SDK binding.
func NewPort() Port { return NewCGOPort() }

func (cgoPort) Init() error {
	if C.NDIlib_initialize() == C.bool(false) {
		return errors.New("ndi: NDIlib_initialize failed")
	}
	return nil
}

func (cgoPort) Shutdown() {
	C.NDIlib_destroy()
}

type cgoFinder struct {
	handle C.NDIlib_find_instance_t
}

func (p cgoPort) NewFinder(showLocal bool) (Finder, error) {
	settings := C.NDIlib_find_create_t{
		show_local_sources: C.bool(showLocal),
	}
	h := C.NDIlib_find_create_v2(&settings)
	if h == nil {
		return nil, errors.New("ndi: finder create failed")
	}
	return &cgoFinder{handle: h}, nil
}

func (f *cgoFinder) Snapshot() []Source {
	var count C.uint32_t
	sources := C.NDIlib_find_get_current_sources(f.handle, &count)
	out := make([]Source, 0, int(count))
	n := int(count)
	slice := unsafe.Slice(sources, n)
	for i := 0; i < n; i++ {
		s := slice[i]
		out = append(out, Source{
			Name:      C.GoString(s.p_ndi_name),
			URL:       C.GoString(s.p_url_address),
			Connected: true,
		})
	}
	return out
}

func (f *cgoFinder) Destroy() {
	C.NDIlib_find_destroy(f.handle)
}

type cgoReceiver struct {
	handle C.NDIlib_recv_instance_t
}

func (p cgoPort) NewReceiver(cfg ReceiverConfig) (Receiver, error) {
	name := C.CString(cfg.SourceName)
	defer C.free(unsafe.Pointer(name))
	recvName := C.CString(cfg.Name)
	defer C.free(unsafe.Pointer(recvName))

	bandwidth := C.NDIlib_recv_bandwidth_highest
	if cfg.Bandwidth == BandwidthLowest {
		bandwidth = C.NDIlib_recv_bandwidth_lowest
	}

	create := C.NDIlib_recv_create_v3_t{
		source_to_connect_to: C.NDIlib_source_t{p_ndi_name: name},
		color_format:          C.NDIlib_recv_color_format_BGRX_BGRA,
		bandwidth:             C.NDIlib_recv_bandwidth_e(bandwidth),
		allow_video_fields:    C.bool(true),
		p_ndi_recv_name:       recvName,
	}
	h := C.NDIlib_recv_create_v3(&create)
	if h == nil {
		return nil, errors.New("ndi: receiver create failed")
	}
	return &cgoReceiver{handle: h}, nil
}

func (r *cgoReceiver) Capture(timeout time.Duration) (CapturedFrame, error) {
	var video C.NDIlib_video_frame_v2_t
	var audio C.NDIlib_audio_frame_v2_t
	timeoutMS := C.uint32_t(timeout.Milliseconds())

	switch C.NDIlib_recv_capture_v2(r.handle, &video, &audio, nil, timeoutMS) {
	case C.NDIlib_frame_type_video:
		frame := VideoFrame{
			Width:    int(video.xres),
			Height:   int(video.yres),
			Stride:   int(video.line_stride_in_bytes),
			Timecode: int64(video.timecode),
			Data:     C.GoBytes(unsafe.Pointer(video.p_data), C.int(int(video.line_stride_in_bytes)*int(video.yres))),
		}
		C.NDIlib_recv_free_video_v2(r.handle, &video)
		return CapturedFrame{Kind: FrameVideo, Video: &frame}, nil
	case C.NDIlib_frame_type_audio:
		frame := AudioFrame{
			SampleRate: int(audio.sample_rate),
			Channels:   int(audio.no_channels),
			Data:       C.GoBytes(unsafe.Pointer(audio.p_data), C.int(int(audio.no_channels)*int(audio.no_samples)*4)),
		}
		C.NDIlib_recv_free_audio_v2(r.handle, &audio)
		return CapturedFrame{Kind: FrameAudio, Audio: &frame}, nil
	case C.NDIlib_frame_type_status_change:
		return CapturedFrame{Kind: FrameStatusChange}, nil
	default:
		return CapturedFrame{Kind: FrameNone}, nil
	}
}

func (r *cgoReceiver) Destroy() {
	C.NDIlib_recv_destroy(r.handle)
}

type cgoSender struct {
	handle C.NDIlib_send_instance_t
}

func (p cgoPort) NewSender(name string, clockVideo, clockAudio bool) (Sender, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	create := C.NDIlib_send_create_t{
		p_ndi_name:  cname,
		clock_video: C.bool(clockVideo),
		clock_audio: C.bool(clockAudio),
	}
	h := C.NDIlib_send_create(&create)
	if h == nil {
		return nil, errors.New("ndi: sender create failed")
	}
	return &cgoSender{handle: h}, nil
}

func (s *cgoSender) SendVideo(f VideoFrame) error {
	frame := C.NDIlib_video_frame_v2_t{
		xres:                 C.int(f.Width),
		yres:                 C.int(f.Height),
		FourCC:               C.NDIlib_FourCC_video_type_BGRA,
		line_stride_in_bytes: C.int(f.Stride),
		timecode:             C.int64_t(f.Timecode),
		p_data:               (*C.uint8_t)(unsafe.Pointer(&f.Data[0])),
	}
	C.NDIlib_send_send_video_v2(s.handle, &frame)
	return nil
}

func (s *cgoSender) SendAudio(f AudioFrame) error {
	if f.Channels == 0 {
		return errors.New("ndi: audio frame has zero channels")
	}
	samples := 0
	if f.SampleRate > 0 {
		samples = len(f.Data) / (4 * f.Channels)
	}
	frame := C.NDIlib_audio_frame_v2_t{
		sample_rate: C.int(f.SampleRate),
		no_channels: C.int(f.Channels),
		no_samples:  C.int(samples),
	}
	if len(f.Data) > 0 {
		frame.p_data = (*C.float)(unsafe.Pointer(&f.Data[0]))
	}
	C.NDIlib_send_send_audio_v2(s.handle, &frame)
	return nil
}

func (s *cgoSender) Destroy() {
	C.NDIlib_send_destroy(s.handle)
}
