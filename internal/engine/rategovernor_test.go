package engine

import (
	"testing"
	"time"
)

func TestRateGovernor_NextReturnsDisconnectedWhenChannelClosed(t *testing.T) {
	in := make(chan *CapturedFrame)
	close(in)
	g := NewRateGovernor(in, 1000)

	_, err := g.Next()
	if err != rateGovernorDisconnected {
		t.Fatalf("Next() on closed empty channel = %v, want rateGovernorDisconnected", err)
	}
}

func TestRateGovernor_NextReturnsQueuedFrame(t *testing.T) {
	in := make(chan *CapturedFrame, 1)
	want := &CapturedFrame{Width: 7}
	in <- want
	g := NewRateGovernor(in, 1000)

	got, err := g.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != want {
		t.Fatalf("Next() returned a different frame than was queued")
	}
}

func TestRateGovernor_DrainKeepLastDiscardsStaleFrames(t *testing.T) {
	in := make(chan *CapturedFrame, 4)
	first := &CapturedFrame{Width: 1}
	second := &CapturedFrame{Width: 2}
	third := &CapturedFrame{Width: 3}
	in <- first
	in <- second
	in <- third
	g := NewRateGovernor(in, 1000)

	got, ok := g.drainKeepLast()
	if !ok {
		t.Fatal("drainKeepLast reported channel closed on an open, non-empty channel")
	}
	if got != third {
		t.Fatal("drainKeepLast should keep only the most recently queued frame")
	}
}

func TestRateGovernor_PacesToRequestedPeriod(t *testing.T) {
	in := make(chan *CapturedFrame, 10)
	for i := 0; i < 3; i++ {
		in <- &CapturedFrame{Width: i}
	}
	g := NewRateGovernor(in, 100) // 10ms period

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := g.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	elapsed := time.Since(start)
	if elapsed < 20*time.Millisecond {
		t.Fatalf("three calls at 100fps returned in %s, expected at least ~20ms of pacing", elapsed)
	}
}
