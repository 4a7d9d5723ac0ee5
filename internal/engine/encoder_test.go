package engine

import (
	"strings"
	"testing"
)

type stubHardwareBackend struct {
	name string
}

func (s *stubHardwareBackend) Encode(tex GpuTextures, nv12 []byte, forceKeyframe bool) (*EncodedUnit, error) {
	return &EncodedUnit{Bytes: []byte{0x00}}, nil
}
func (s *stubHardwareBackend) SetBitrateKbps(kbps int) error { return nil }
func (s *stubHardwareBackend) ForceKeyframe()                {}
func (s *stubHardwareBackend) Flush() ([]*EncodedUnit, error) { return nil, nil }
func (s *stubHardwareBackend) Close()                        {}
func (s *stubHardwareBackend) Name() string                  { return s.name }
func (s *stubHardwareBackend) IsHardware() bool               { return true }

func TestEncoderConfig_ApplyDefaults(t *testing.T) {
	cfg := EncoderConfig{Width: 1920, Height: 1080}
	cfg.applyDefaults()
	if cfg.FPS != 30 {
		t.Fatalf("default FPS = %d, want 30", cfg.FPS)
	}
	if cfg.BitrateKbps != 4000 {
		t.Fatalf("default BitrateKbps = %d, want 4000", cfg.BitrateKbps)
	}
}

func TestEncoderConfig_ValidateRejectsNonPositiveDimensions(t *testing.T) {
	cfg := EncoderConfig{Width: 0, Height: 1080}
	if err := cfg.validate(); err == nil {
		t.Fatal("expected an error for zero width")
	}
}

func TestNewBackend_PrefersRegisteredHardwareFactory(t *testing.T) {
	hardwareFactoryMu.Lock()
	saved := hardwareFactories
	hardwareFactories = nil
	hardwareFactoryMu.Unlock()
	defer func() {
		hardwareFactoryMu.Lock()
		hardwareFactories = saved
		hardwareFactoryMu.Unlock()
	}()

	registerHardwareFactory(func(cfg EncoderConfig, gctx GpuContext) (encoderBackend, error) {
		return &stubHardwareBackend{name: "stub-hw"}, nil
	})

	cfg := EncoderConfig{Width: 640, Height: 480, PreferHardware: true}
	backend, err := newBackend(cfg, nil)
	if err != nil {
		t.Fatalf("newBackend: %v", err)
	}
	if backend.Name() != "stub-hw" {
		t.Fatalf("newBackend picked %q, want the registered hardware factory", backend.Name())
	}
	if !backend.IsHardware() {
		t.Fatal("expected a hardware backend")
	}
}

func TestNewBackend_SkipsFailingHardwareFactory(t *testing.T) {
	hardwareFactoryMu.Lock()
	saved := hardwareFactories
	hardwareFactories = nil
	hardwareFactoryMu.Unlock()
	defer func() {
		hardwareFactoryMu.Lock()
		hardwareFactories = saved
		hardwareFactoryMu.Unlock()
	}()

	registerHardwareFactory(func(cfg EncoderConfig, gctx GpuContext) (encoderBackend, error) {
		return nil, newEncodeErrorf("no such device")
	})
	registerHardwareFactory(func(cfg EncoderConfig, gctx GpuContext) (encoderBackend, error) {
		return &stubHardwareBackend{name: "second-factory"}, nil
	})

	cfg := EncoderConfig{Width: 640, Height: 480, PreferHardware: true}
	backend, err := newBackend(cfg, nil)
	if err != nil {
		t.Fatalf("newBackend: %v", err)
	}
	if backend.Name() != "second-factory" {
		t.Fatalf("newBackend picked %q, want the second, successful factory", backend.Name())
	}
}

func TestVideoEncoder_StringIncludesResolutionAndBitrate(t *testing.T) {
	ve := &VideoEncoder{
		cfg:     EncoderConfig{Width: 1280, Height: 720, FPS: 30, BitrateKbps: 3000},
		backend: &stubHardwareBackend{name: "stub"},
	}
	s := ve.String()
	if s == "" {
		t.Fatal("String() returned empty")
	}
	if !strings.Contains(s, "1280x720") || !strings.Contains(s, "3000kbps") {
		t.Fatalf("String() = %q, want resolution 1280x720 and bitrate 3000kbps", s)
	}
}

func TestVideoEncoder_DelegatesToBackend(t *testing.T) {
	backend := &stubHardwareBackend{name: "stub"}
	ve := &VideoEncoder{cfg: EncoderConfig{Width: 2, Height: 2}, backend: backend}

	if !ve.IsHardware() {
		t.Fatal("IsHardware should delegate to backend")
	}
	if ve.BackendName() != "stub" {
		t.Fatalf("BackendName() = %q, want stub", ve.BackendName())
	}
	unit, err := ve.Encode(GpuTextures{}, nil, false)
	if err != nil || unit == nil {
		t.Fatalf("Encode: %v, %v", unit, err)
	}
	if err := ve.SetBitrateKbps(2000); err != nil {
		t.Fatalf("SetBitrateKbps: %v", err)
	}
	ve.ForceKeyframe()
	if _, err := ve.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	ve.Close()
}
