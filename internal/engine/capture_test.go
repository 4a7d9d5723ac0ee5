package engine

import (
	"context"
	"testing"
	"time"
)

func TestListDisplays_FirstEntryNonZero(t *testing.T) {
	displays := ListDisplays()
	if len(displays) == 0 {
		t.Fatal("expected at least one display")
	}
	if displays[0].Width <= 0 || displays[0].Height <= 0 {
		t.Fatalf("first display has non-positive dimensions: %+v", displays[0])
	}
}

func TestListWindows_DoesNotPanic(t *testing.T) {
	_ = ListWindows()
}

func TestSynthesizedFrameSource_RejectsInvalidDimensions(t *testing.T) {
	s := newSynthesizedFrameSource(0, 0, 30)
	out := make(chan *CapturedFrame, 1)
	if err := s.Start(context.Background(), out); err == nil {
		t.Fatal("expected an error starting a source with zero dimensions")
	}
}

func TestSynthesizedFrameSource_ProducesFramesAtRequestedRate(t *testing.T) {
	s := newSynthesizedFrameSource(4, 4, 100) // 10ms period
	out := make(chan *CapturedFrame, 4)
	if err := s.Start(context.Background(), out); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case frame := <-out:
		if frame.Width != 4 || frame.Height != 4 {
			t.Fatalf("frame dims = %dx%d, want 4x4", frame.Width, frame.Height)
		}
		if frame.RowPitch != 16 {
			t.Fatalf("RowPitch = %d, want 16", frame.RowPitch)
		}
	case <-time.After(time.Second):
		t.Fatal("no frame produced within 1s at 100fps")
	}
}

func TestSynthesizedFrameSource_DropsFramesWhenConsumerSlow(t *testing.T) {
	s := newSynthesizedFrameSource(2, 2, 1000) // 1ms period, fast producer
	out := make(chan *CapturedFrame, 1)
	if err := s.Start(context.Background(), out); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	// The single-slot channel should never have blocked the producer goroutine;
	// Stop() returning (wg.Wait() completing) is the proof the producer exited
	// cleanly rather than being stuck blocked on a full channel send.
	select {
	case <-out:
	default:
		t.Fatal("expected at least one frame to have been buffered")
	}
}

func TestSynthesizedFrameSource_DimensionsAndBGRA(t *testing.T) {
	s := newSynthesizedFrameSource(800, 600, 30)
	w, h := s.Dimensions()
	if w != 800 || h != 600 {
		t.Fatalf("Dimensions() = %d,%d, want 800,600", w, h)
	}
	if !s.IsBGRA() {
		t.Fatal("synthesizedFrameSource must report BGRA output")
	}
}

func TestSynthesizedFrameSource_StopWithoutStartIsSafe(t *testing.T) {
	s := newSynthesizedFrameSource(2, 2, 30)
	s.Stop() // cancel is nil; must not panic
}
