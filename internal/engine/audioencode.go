package engine

import (
	"context"

	opus "gopkg.in/hraban/opus.v2"
)

// audioForward (T_audio_forward) pulls packets from an AudioSource, encodes
// them to Opus, and hands the result to WebRtcSession over the same
// transport command channel EncodePublish uses for video. It runs for the
// life of the session; AudioSource delivers silence when no real capture
// backend is wired (§1 — platform audio capture is out of this engine's
// scope, same as platform screen capture).
type audioForward struct {
	enc      *opus.Encoder
	sampleRt int
	channels int
	out      chan<- transportCommand

	rtpTS uint32
}

func newAudioForward(sampleRate, channels int, out chan<- transportCommand) (*audioForward, error) {
	application := opus.AppRestrictedLowdelay
	enc, err := opus.NewEncoder(sampleRate, channels, application)
	if err != nil {
		return nil, newEncodeErrorf("opus encoder init: %v", err)
	}
	return &audioForward{enc: enc, sampleRt: sampleRate, channels: channels, out: out}, nil
}

// Run drains in until ctx is cancelled or the channel closes.
func (a *audioForward) Run(ctx context.Context, in <-chan *AudioPacket) {
	opusBuf := make([]byte, 4000)
	for {
		select {
		case <-ctx.Done():
			return
		case pkt, ok := <-in:
			if !ok {
				return
			}
			a.encodeAndSend(pkt, opusBuf)
		}
	}
}

func (a *audioForward) encodeAndSend(pkt *AudioPacket, scratch []byte) {
	pcm := make([]int16, len(pkt.Samples))
	for i, s := range pkt.Samples {
		pcm[i] = float32ToInt16(s)
	}

	n, err := a.enc.Encode(pcm, scratch)
	if err != nil {
		return
	}

	encoded := make([]byte, n)
	copy(encoded, scratch[:n])

	a.rtpTS += uint32(pkt.FrameCount)
	select {
	case a.out <- cmdAudioFrame{Bytes: encoded, RTPTS: a.rtpTS}:
	default:
	}
}

func float32ToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
