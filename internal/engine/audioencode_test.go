package engine

import (
	"context"
	"testing"
	"time"
)

func TestFloat32ToInt16Clamps(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1.5, 32767},
		{-1.5, -32767},
		{0.5, 16383},
	}
	for _, c := range cases {
		if got := float32ToInt16(c.in); got != c.want {
			t.Errorf("float32ToInt16(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestAudioForward_RTPTimestampAdvancesByFrameCount(t *testing.T) {
	forward, err := newAudioForward(48000, 2, make(chan<- transportCommand, 4))
	if err != nil {
		t.Fatalf("newAudioForward: %v", err)
	}
	out := make(chan transportCommand, 4)
	forward.out = out

	scratch := make([]byte, 4000)
	forward.encodeAndSend(&AudioPacket{Samples: make([]float32, 960*2), FrameCount: 960}, scratch)
	forward.encodeAndSend(&AudioPacket{Samples: make([]float32, 960*2), FrameCount: 960}, scratch)

	first := (<-out).(cmdAudioFrame)
	second := (<-out).(cmdAudioFrame)
	if second.RTPTS-first.RTPTS != 960 {
		t.Fatalf("rtp timestamp advanced by %d, want 960", second.RTPTS-first.RTPTS)
	}
}

func TestAudioForward_RunStopsOnContextCancel(t *testing.T) {
	forward, err := newAudioForward(48000, 2, make(chan<- transportCommand, 4))
	if err != nil {
		t.Fatalf("newAudioForward: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan *AudioPacket)
	done := make(chan struct{})
	go func() { forward.Run(ctx, in); close(done) }()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestAudioForward_RunStopsOnChannelClose(t *testing.T) {
	forward, err := newAudioForward(48000, 2, make(chan<- transportCommand, 4))
	if err != nil {
		t.Fatalf("newAudioForward: %v", err)
	}
	in := make(chan *AudioPacket)
	done := make(chan struct{})
	go func() { forward.Run(context.Background(), in); close(done) }()

	close(in)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after input channel closed")
	}
}
