package engine

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// ScreenShareConfig carries everything StartScreenShare needs to bring up a
// session: which signaling server to join, which capture target to read
// from, and the quality/audio options the host wants applied. It is
// populated programmatically by the host on each call, unlike the
// file-loaded tunables in internal/config.
type ScreenShareConfig struct {
	ServerURL string
	Token     string

	// TargetType is "primary", "display", or "window". TargetID is the
	// display index or window handle the target_type names; ignored for
	// "primary".
	TargetType string
	TargetID   int

	FPS     int
	Bitrate int

	ShowCursor   bool
	CaptureAudio bool
	// AudioMode is "system" or a decimal process-id string. Recorded for
	// parity with the host-facing config surface; the synthesized
	// AudioSource this engine ships does not discriminate by source.
	AudioMode string
}

func (c *ScreenShareConfig) applyDefaults() {
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Bitrate <= 0 {
		c.Bitrate = 4000
	}
}

// Host is the process-wide façade the foreign callable surface (§6) is
// built on: list_displays/list_windows/start_screen_share/stop_screen_share/
// force_keyframe/is_screen_share_running. There is at most one running
// session at a time, guarded by mu.
type Host struct {
	mu      sync.Mutex
	running bool

	session    *SessionState
	gctx       GpuContext
	conv       ColorConverter
	enc        *VideoEncoder
	frameSrc   FrameSource
	audioSrc   AudioSource
	webrtc     *WebRtcSession
	keyframes  chan controlCommand
	cancelCtx  context.CancelFunc
	stoppedWg  sync.WaitGroup
}

// NewHost constructs an idle façade. One Host is created for the process
// lifetime; cmd/screenshare-demo and any other embedder share it.
func NewHost() *Host {
	return &Host{}
}

func (h *Host) ListDisplays() []DisplayInfo { return ListDisplays() }

func (h *Host) ListWindows() []WindowInfo { return ListWindows() }

func (h *Host) IsScreenShareRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// StartScreenShare wires C1-C6 and SignalClient together and starts every
// goroutine in §5's concurrency model: T_capture, T_audio (if
// config.CaptureAudio), T_encode_publish, T_audio_forward (if capturing
// audio), and T_transport (driven internally by WebRtcSession's own
// goroutines). It returns once the WebRTC offer has been sent; Connecting ->
// Connected happens asynchronously and is reported only through OnStats/
// OnError, never by blocking this call.
func (h *Host) StartScreenShare(cfg ScreenShareConfig, onError func(string), onStopped func(), onStats func(EngineStats)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return ErrAlreadyRunning
	}
	cfg.applyDefaults()

	width, height, err := h.resolveTarget(cfg)
	if err != nil {
		return err
	}

	session := &SessionState{
		Target:  cfg.TargetType,
		Width:   width,
		Height:  height,
		FPS:     cfg.FPS,
		Bitrate: cfg.Bitrate,
		callbacks: EngineCallbacks{
			OnError:   onError,
			OnStopped: onStopped,
			OnStats:   onStats,
		},
	}

	gctx := newGpuContext()
	tex, err := gctx.Init(width, height)
	if err != nil {
		gctx.Close()
		return fmt.Errorf("%w: %v", ErrGpuInitFailed, err)
	}

	conv := newColorConverter(gctx)

	enc, err := NewVideoEncoder(EncoderConfig{
		Codec:          CodecH264,
		Width:          tex.NV12Width,
		Height:         tex.NV12Height,
		FPS:            cfg.FPS,
		BitrateKbps:    cfg.Bitrate,
		PreferHardware: gctx.IsHardware(),
	}, gctx)
	if err != nil {
		conv.Close()
		gctx.Close()
		return err
	}

	frameSrc := newSynthesizedFrameSource(width, height, cfg.FPS)
	captureCh := make(chan *CapturedFrame, 2)

	ctx, cancel := context.WithCancel(context.Background())

	if err := frameSrc.Start(ctx, captureCh); err != nil {
		cancel()
		enc.Close()
		conv.Close()
		gctx.Close()
		return newCaptureErrorf("start capture: %v", err)
	}

	gov := NewRateGovernor(captureCh, cfg.FPS)

	transportCh := make(chan transportCommand, 256)
	keyframes := make(chan controlCommand, 8)

	webrtcSession := NewWebRtcSession(session, width, height, cfg.CaptureAudio, transportCh, keyframes)
	if err := webrtcSession.Connect(cfg.ServerURL, cfg.Token); err != nil {
		cancel()
		frameSrc.Stop()
		enc.Close()
		conv.Close()
		gctx.Close()
		return err
	}

	publish := NewEncodePublish(gctx, conv, enc, gov, tex, cfg.FPS, transportCh, keyframes, session)

	h.stoppedWg.Add(1)
	go func() {
		defer h.stoppedWg.Done()
		publish.Run()
	}()

	var audioSrc AudioSource
	if cfg.CaptureAudio {
		audioSrc = newSilentAudioSource(48000, 2)
		audioCh := make(chan *AudioPacket, 32)
		if err := audioSrc.Start(ctx, audioCh); err != nil {
			// Audio is an enhancement, not load-bearing: log through OnError
			// but keep the video path running.
			if onError != nil {
				onError("audio: " + err.Error())
			}
			audioSrc = nil
		} else {
			forward, ferr := newAudioForward(48000, 2, transportCh)
			if ferr != nil {
				if onError != nil {
					onError("audio: " + ferr.Error())
				}
			} else {
				go forward.Run(ctx, audioCh)
			}
		}
	}

	h.running = true
	h.session = session
	h.gctx = gctx
	h.conv = conv
	h.enc = enc
	h.frameSrc = frameSrc
	h.audioSrc = audioSrc
	h.webrtc = webrtcSession
	h.keyframes = keyframes
	h.cancelCtx = cancel

	return nil
}

// resolveTarget maps target_type/target_id to pixel dimensions. "window" has
// no synthesized backend to measure, so it reports the primary display's
// size — the capture backend that would give a real window size is outside
// this engine's scope (§1).
func (h *Host) resolveTarget(cfg ScreenShareConfig) (width, height int, err error) {
	displays := ListDisplays()
	switch cfg.TargetType {
	case "", "primary":
		if len(displays) == 0 {
			return 0, 0, newCaptureErrorf("no displays available")
		}
		return displays[0].Width, displays[0].Height, nil
	case "display":
		for _, d := range displays {
			if d.Index == cfg.TargetID {
				return d.Width, d.Height, nil
			}
		}
		return 0, 0, fmt.Errorf("%w: display %d", ErrDisplayNotFound, cfg.TargetID)
	case "window":
		if len(displays) == 0 {
			return 0, 0, newCaptureErrorf("no displays available")
		}
		return displays[0].Width, displays[0].Height, nil
	default:
		return 0, 0, fmt.Errorf("invalid target_type %q", cfg.TargetType)
	}
}

// StopScreenShare requests an orderly shutdown: sets stop_flag so
// T_encode_publish exits its loop, flushes the encoder, and tears down the
// transport, then releases GPU/encoder resources once T_encode_publish has
// actually stopped.
func (h *Host) StopScreenShare() error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return ErrNotRunning
	}
	session := h.session
	frameSrc := h.frameSrc
	audioSrc := h.audioSrc
	webrtcSession := h.webrtc
	cancel := h.cancelCtx
	gctx := h.gctx
	conv := h.conv
	enc := h.enc
	h.running = false
	h.mu.Unlock()

	session.RequestStop()
	h.stoppedWg.Wait()

	// EncodePublish's shutdown also best-effort sends cmdStop down the same
	// bounded channel cmdVideoFrame/cmdAudioFrame use, so it can be dropped
	// under load. Closing the session here directly is the path that must
	// never be skipped; Close is idempotent so this never double-tears-down
	// if cmdStop was also delivered.
	webrtcSession.Close()

	frameSrc.Stop()
	if audioSrc != nil {
		audioSrc.Stop()
	}
	cancel()

	enc.Close()
	conv.Close()
	gctx.Close()

	return nil
}

// ForceKeyframe requests the next encoded frame be an IDR, the same path a
// PLI from the SFU drives.
func (h *Host) ForceKeyframe() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return ErrNotRunning
	}
	select {
	case h.keyframes <- controlForceKeyframe:
	default:
	}
	return nil
}

// ParseTargetID parses a target_id string into the integer form
// ScreenShareConfig.TargetID expects (decimal display index or window
// handle), matching how foreign callers typically hand this field over as a
// string.
func ParseTargetID(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
