package engine

import (
	"fmt"
	"sync"
)

// Codec identifies a compressed video codec. Only H264 is implemented; the
// type exists so a future codec can be added without changing callers.
type Codec int

const (
	CodecH264 Codec = iota
)

// EncoderConfig configures a VideoEncoder (§4.3).
type EncoderConfig struct {
	Codec         Codec
	Width         int
	Height        int
	FPS           int
	BitrateKbps   int
	PreferHardware bool
}

func (c *EncoderConfig) applyDefaults() {
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.BitrateKbps <= 0 {
		c.BitrateKbps = 4000
	}
}

func (c EncoderConfig) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return newEncodeErrorf("invalid dimensions %dx%d", c.Width, c.Height)
	}
	return nil
}

// encoderBackend is the interface a concrete H.264 implementation provides.
// ForceKeyframe and Flush are first-class methods here rather than optional
// type-assertable interfaces, since every backend this engine runs (MFT,
// openh264) supports both and VideoEncoder's own exported methods need
// somewhere real to forward to.
type encoderBackend interface {
	Encode(tex GpuTextures, nv12 []byte, forceKeyframe bool) (*EncodedUnit, error)
	SetBitrateKbps(kbps int) error
	ForceKeyframe()
	Flush() ([]*EncodedUnit, error)
	Close()
	Name() string
	IsHardware() bool
}

type backendFactory func(cfg EncoderConfig, gctx GpuContext) (encoderBackend, error)

var (
	hardwareFactoryMu sync.Mutex
	hardwareFactories []backendFactory
)

// registerHardwareFactory registers a platform-specific hardware backend
// constructor. Called from platform build files' init(), mirroring how the
// set of available backends varies per build target.
func registerHardwareFactory(f backendFactory) {
	hardwareFactoryMu.Lock()
	defer hardwareFactoryMu.Unlock()
	hardwareFactories = append(hardwareFactories, f)
}

// VideoEncoder (C3) wraps the active encoderBackend and exposes the small,
// stable surface EncodePublish drives: one Encode call per frame, a
// best-effort ForceKeyframe on PLI, and Close at session teardown.
type VideoEncoder struct {
	mu      sync.Mutex
	cfg     EncoderConfig
	backend encoderBackend
}

// NewVideoEncoder tries every registered hardware factory in order when
// cfg.PreferHardware is set, falling back to the openh264 software backend
// when none succeed or hardware isn't preferred.
func NewVideoEncoder(cfg EncoderConfig, gctx GpuContext) (*VideoEncoder, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	backend, err := newBackend(cfg, gctx)
	if err != nil {
		return nil, err
	}
	return &VideoEncoder{cfg: cfg, backend: backend}, nil
}

func newBackend(cfg EncoderConfig, gctx GpuContext) (encoderBackend, error) {
	if cfg.PreferHardware {
		hardwareFactoryMu.Lock()
		factories := append([]backendFactory(nil), hardwareFactories...)
		hardwareFactoryMu.Unlock()
		for _, f := range factories {
			if b, err := f(cfg, gctx); err == nil {
				return b, nil
			}
		}
	}
	return newSoftwareBackend(cfg)
}

// Encode produces zero or one EncodedUnit for the given frame. tex supplies
// the GPU-resident NV12 target a hardware backend reads directly once it has
// a device manager wired in; nv12 supplies the host-resident NV12 bytes a
// backend falls back to otherwise (the software backend always takes this
// path). Which one a given call actually reads depends on the backend and
// its current device-manager state, not fixed per backend type.
func (e *VideoEncoder) Encode(tex GpuTextures, nv12 []byte, forceKeyframe bool) (*EncodedUnit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend.Encode(tex, nv12, forceKeyframe)
}

func (e *VideoEncoder) SetBitrateKbps(kbps int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend.SetBitrateKbps(kbps)
}

// ForceKeyframe requests the next encoded frame be an IDR. Best-effort: it
// never returns an error since its caller, EncodePublish applying a
// PLI-driven keyframe request, has nowhere useful to report one.
func (e *VideoEncoder) ForceKeyframe() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.backend.ForceKeyframe()
}

// Flush calls the backend's Flush and returns the units it reports. Neither
// backend drains: openh264's Flush is a no-op, and the MFT backend sends
// MFT_MESSAGE_COMMAND_FLUSH, which discards any frames the transform still
// holds and returns no units. Called once during EncodePublish shutdown.
func (e *VideoEncoder) Flush() ([]*EncodedUnit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend.Flush()
}

func (e *VideoEncoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.backend.Close()
}

func (e *VideoEncoder) BackendName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend.Name()
}

func (e *VideoEncoder) IsHardware() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend.IsHardware()
}

func (e *VideoEncoder) String() string {
	return fmt.Sprintf("VideoEncoder(%dx%d@%dfps %dkbps hw=%v)",
		e.cfg.Width, e.cfg.Height, e.cfg.FPS, e.cfg.BitrateKbps, e.IsHardware())
}
