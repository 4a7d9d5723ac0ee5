// Package engine implements the screen-share media pipeline: capture, GPU
// color conversion, hardware H.264 encode, rate governing, and publication
// of the encoded stream into a WebRTC session with an SFU.
package engine

import (
	"sync"
	"sync/atomic"
)

// CapturedFrame is an immutable BGRA frame produced by a FrameSource.
//
// Ownership: produced by the FrameSource, owned by whoever dequeues it from
// the bounded capture channel, dropped after encode or when superseded by a
// newer frame under backpressure.
type CapturedFrame struct {
	Data           []byte
	RowPitch       int
	Width          int
	Height         int
	Timestamp100ns int64
}

// AudioPacket is interleaved float32 PCM produced by an AudioSource.
type AudioPacket struct {
	Samples      []float32
	FrameCount   int
	SampleRate   int
	ChannelCount int
}

// GpuTextures holds the two textures GpuContext allocates once per session
// and ColorConverter/VideoEncoder reuse every frame.
type GpuTextures struct {
	BGRAStaging GPUTexture
	NV12Target  GPUTexture
	// NV12Width/NV12Height are the even-rounded session dimensions; always
	// >= the source width/height.
	NV12Width  int
	NV12Height int
}

// GPUTexture is an opaque handle to a platform GPU surface. On non-Windows
// build targets it wraps a plain host byte buffer instead.
type GPUTexture interface {
	// Release frees the underlying platform resource. Idempotent.
	Release()
}

// EncodedUnit is one NAL access unit produced by the VideoEncoder, Annex-B
// framed.
type EncodedUnit struct {
	Bytes          []byte
	PTS100ns       int64
	Duration100ns  int64
	IsKeyframe     bool
}

// RoundUpEven rounds n up to the nearest even integer.
func RoundUpEven(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// SessionPhase enumerates WebRtcSession lifecycle states (§4.6).
type SessionPhase int32

const (
	PhaseIdle SessionPhase = iota
	PhaseSignalling
	PhaseOffering
	PhaseConnecting
	PhaseConnected
	PhaseClosing
	PhaseTerminated
	PhaseDisconnected
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSignalling:
		return "signalling"
	case PhaseOffering:
		return "offering"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseClosing:
		return "closing"
	case PhaseTerminated:
		return "terminated"
	case PhaseDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// EngineStats is emitted to the host once a second while a session runs.
type EngineStats struct {
	FPS            float64
	BitrateMbps    float64
	FramesEncoded  uint64
	BytesSent      uint64
	EncodeMs       float64
}

// EngineCallbacks is the only surface the host sees; the core never reaches
// back into host-specific code beyond these three functions.
type EngineCallbacks struct {
	OnError   func(msg string)
	OnStopped func()
	OnStats   func(stats EngineStats)
}

// SessionState is the process-wide singleton describing the one running
// screen-share session, if any. There is at most one SessionState at a time;
// a second start request is rejected.
type SessionState struct {
	Target     string
	Width      int
	Height     int
	FPS        int
	Bitrate    int
	stopFlag   atomic.Bool
	commandsMu sync.Mutex
	callbacks  EngineCallbacks
}

func (s *SessionState) StopFlag() bool     { return s.stopFlag.Load() }
func (s *SessionState) RequestStop()       { s.stopFlag.Store(true) }
