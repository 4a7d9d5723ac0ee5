package engine

import (
	"sync"
	"time"
)

// controlCommand is sent to EncodePublish over its keyframe-request channel:
// a PLI/FIR from the SFU or Host.ForceKeyframe maps to controlForceKeyframe.
// controlStop sets the session's stop flag when received; StopScreenShare
// sets that flag directly and does not send controlStop.
type controlCommand int

const (
	controlForceKeyframe controlCommand = iota
	controlStop
)

// EncodePublish (C5) is the encode loop: one goroutine pulls paced frames
// from RateGovernor, converts and encodes them, and hands the result to
// WebRtcSession over a bounded command channel; a send that finds the
// channel full drops the frame. It is the only writer of
// frame_idx and the only reader of the GPU textures outside of Convert.
type EncodePublish struct {
	gctx GpuContext
	conv ColorConverter
	enc  *VideoEncoder
	gov  *RateGovernor
	tex  GpuTextures
	fps  int

	out      chan<- transportCommand
	commands <-chan controlCommand
	session  *SessionState

	stoppedOnce sync.Once
}

func NewEncodePublish(gctx GpuContext, conv ColorConverter, enc *VideoEncoder, gov *RateGovernor, tex GpuTextures, fps int, out chan<- transportCommand, commands <-chan controlCommand, session *SessionState) *EncodePublish {
	if fps <= 0 {
		fps = 30
	}
	return &EncodePublish{gctx: gctx, conv: conv, enc: enc, gov: gov, tex: tex, fps: fps, out: out, commands: commands, session: session}
}

// Run drives the loop until stop_flag is set or the capture source
// disconnects. It always flushes the encoder, signals the transport to tear
// down, and invokes OnStopped exactly once before returning.
func (p *EncodePublish) Run() {
	defer p.shutdown()

	var (
		frameIdx        uint64
		pendingKeyframe bool

		windowStart   = time.Now()
		framesInWindow uint64
		bytesInWindow  uint64
		encodeMsSum    float64
		encodeMsCount  int
	)

	for {
		if p.session.StopFlag() {
			return
		}

		p.drainCommands(&pendingKeyframe)
		if p.session.StopFlag() {
			return
		}

		frame, err := p.gov.Next()
		if err != nil {
			p.reportError("capture: " + err.Error())
			return
		}

		if pendingKeyframe {
			p.enc.ForceKeyframe()
			pendingKeyframe = false
		}

		if err := p.conv.Convert(p.tex, frame); err != nil {
			p.reportError("color convert: " + err.Error())
			continue
		}

		nv12, err := p.conv.ReadbackNV12(p.tex)
		if err != nil {
			p.reportError("color convert readback: " + err.Error())
			continue
		}

		start := time.Now()
		unit, err := p.enc.Encode(p.tex, nv12, false)
		encodeMsSum += float64(time.Since(start).Microseconds()) / 1000.0
		encodeMsCount++
		if err != nil {
			p.reportError("encode: " + err.Error())
			continue
		}

		if unit != nil {
			pts := int64(frameIdx) * 10_000_000 / int64(p.fps)
			unit.PTS100ns = pts
			unit.Duration100ns = 10_000_000 / int64(p.fps)
			rtpTS := uint32(frameIdx * uint64(90000/p.fps))

			select {
			case p.out <- cmdVideoFrame{Bytes: unit.Bytes, RTPTS: rtpTS, IsKeyframe: unit.IsKeyframe}:
				framesInWindow++
				bytesInWindow += uint64(len(unit.Bytes))
			default:
				// out is a bounded, fixed-capacity channel: dropping a frame
				// under backpressure is preferable to wedging the encode
				// loop. cmdStop is sent through this same channel on
				// shutdown and can be dropped the same way; Host.StopScreenShare
				// closes the transport session directly rather than relying
				// on cmdStop delivery, so a drop here never leaks it.
			}
		}
		frameIdx++

		if elapsed := time.Since(windowStart); elapsed >= time.Second {
			p.emitStats(framesInWindow, bytesInWindow, encodeMsSum, encodeMsCount, elapsed)
			windowStart = time.Now()
			framesInWindow, bytesInWindow = 0, 0
			encodeMsSum, encodeMsCount = 0, 0
		}
	}
}

func (p *EncodePublish) drainCommands(pendingKeyframe *bool) {
	for {
		select {
		case cmd := <-p.commands:
			switch cmd {
			case controlForceKeyframe:
				*pendingKeyframe = true
			case controlStop:
				p.session.RequestStop()
			}
		default:
			return
		}
	}
}

func (p *EncodePublish) emitStats(frames, bytes uint64, encodeMsSum float64, encodeMsCount int, elapsed time.Duration) {
	var avgEncodeMs float64
	if encodeMsCount > 0 {
		avgEncodeMs = encodeMsSum / float64(encodeMsCount)
	}
	stats := EngineStats{
		FPS:           float64(frames) / elapsed.Seconds(),
		BitrateMbps:   float64(bytes*8) / elapsed.Seconds() / 1_000_000,
		FramesEncoded: frames,
		BytesSent:     bytes,
		EncodeMs:      avgEncodeMs,
	}
	if cb := p.session.callbacks.OnStats; cb != nil {
		cb(stats)
	}
}

func (p *EncodePublish) reportError(msg string) {
	if cb := p.session.callbacks.OnError; cb != nil {
		cb(msg)
	}
}

// shutdown calls the encoder's Flush and forwards whatever units it returns
// (neither backend returns any; see VideoEncoder.Flush), tells the
// transport to tear down, and invokes OnStopped exactly once regardless of
// which exit path Run took.
func (p *EncodePublish) shutdown() {
	if units, err := p.enc.Flush(); err == nil {
		for _, u := range units {
			if u == nil {
				continue
			}
			select {
			case p.out <- cmdVideoFrame{Bytes: u.Bytes, IsKeyframe: u.IsKeyframe}:
			default:
			}
		}
	}

	select {
	case p.out <- cmdStop{}:
	default:
	}

	p.stoppedOnce.Do(func() {
		if cb := p.session.callbacks.OnStopped; cb != nil {
			cb()
		}
	})
}
