package engine

import "testing"

func TestRoundUpEven(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0}, {1, 2}, {2, 2}, {3, 4}, {1920, 1920}, {1921, 1922},
	}
	for _, c := range cases {
		if got := RoundUpEven(c.in); got != c.want {
			t.Errorf("RoundUpEven(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSessionPhase_String(t *testing.T) {
	cases := map[SessionPhase]string{
		PhaseIdle:         "idle",
		PhaseSignalling:   "signalling",
		PhaseOffering:     "offering",
		PhaseConnecting:   "connecting",
		PhaseConnected:    "connected",
		PhaseClosing:      "closing",
		PhaseTerminated:   "terminated",
		PhaseDisconnected: "disconnected",
		SessionPhase(99):  "unknown",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Errorf("SessionPhase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}

func TestSessionState_StopFlagDefaultsFalseThenLatches(t *testing.T) {
	s := &SessionState{}
	if s.StopFlag() {
		t.Fatal("a fresh SessionState must not report a stop request")
	}
	s.RequestStop()
	if !s.StopFlag() {
		t.Fatal("RequestStop must latch the stop flag")
	}
}
