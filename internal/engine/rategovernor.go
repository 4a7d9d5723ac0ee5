package engine

import (
	"time"
)

// RateGovernor (C4) paces the capture stream to the target FPS, favoring
// recency over completeness: CapturedFrame buffers are multi-megabyte at
// 1080p, so queueing them across sleeps would exhaust memory within
// seconds. It is a latest-wins selector, not a queue.
type RateGovernor struct {
	in            <-chan *CapturedFrame
	period        time.Duration
	lastEncode    time.Time
}

func NewRateGovernor(in <-chan *CapturedFrame, fps int) *RateGovernor {
	if fps <= 0 {
		fps = 30
	}
	return &RateGovernor{in: in, period: time.Second / time.Duration(fps), lastEncode: time.Now()}
}

// rateGovernorDisconnected is returned by Next when the capture channel has
// been closed — the caller must stop.
var rateGovernorDisconnected = newCaptureErrorf("capture channel disconnected")

// Next blocks until the next frame to encode is ready, or returns
// rateGovernorDisconnected once the capture source is gone.
func (g *RateGovernor) Next() (*CapturedFrame, error) {
	for {
		sleepFor := time.Until(g.lastEncode.Add(g.period))
		if sleepFor > 0 {
			time.Sleep(sleepFor)
		}
		g.lastEncode = time.Now()

		frame, ok := g.drainKeepLast()
		if frame != nil {
			return frame, nil
		}
		if !ok {
			return nil, rateGovernorDisconnected
		}

		// Nothing queued: block-receive with a 100ms fallback so an idle
		// capture source doesn't spin this thread.
		select {
		case f, ok := <-g.in:
			if !ok {
				return nil, rateGovernorDisconnected
			}
			return f, nil
		case <-time.After(100 * time.Millisecond):
			// restart the loop from step 1
		}
	}
}

// drainKeepLast non-blockingly empties the channel, keeping only the most
// recent frame. ok is false only when the channel is closed and empty.
func (g *RateGovernor) drainKeepLast() (*CapturedFrame, bool) {
	var last *CapturedFrame
	for {
		select {
		case f, ok := <-g.in:
			if !ok {
				return last, last != nil
			}
			last = f
		default:
			return last, true
		}
	}
}
