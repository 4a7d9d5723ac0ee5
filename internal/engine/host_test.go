package engine

import "testing"

func TestHost_ListDisplaysFirstEntryNonZero(t *testing.T) {
	h := NewHost()
	displays := h.ListDisplays()
	if len(displays) == 0 {
		t.Fatal("expected at least one display")
	}
	if displays[0].Width <= 0 || displays[0].Height <= 0 {
		t.Fatalf("first display has non-positive dimensions: %+v", displays[0])
	}
}

func TestHost_StopWhenNotRunningReturnsErrNotRunning(t *testing.T) {
	h := NewHost()
	if err := h.StopScreenShare(); err != ErrNotRunning {
		t.Fatalf("StopScreenShare on idle host = %v, want ErrNotRunning", err)
	}
}

func TestHost_ForceKeyframeWhenNotRunningReturnsErrNotRunning(t *testing.T) {
	h := NewHost()
	if err := h.ForceKeyframe(); err != ErrNotRunning {
		t.Fatalf("ForceKeyframe on idle host = %v, want ErrNotRunning", err)
	}
}

func TestHost_IsScreenShareRunningFalseInitially(t *testing.T) {
	h := NewHost()
	if h.IsScreenShareRunning() {
		t.Fatal("a freshly constructed host should not report running")
	}
}

func TestHost_StartWhileRunningRejected(t *testing.T) {
	h := NewHost()
	h.running = true // simulate an already-running session without dialing out
	err := h.StartScreenShare(ScreenShareConfig{ServerURL: "https://example.com", TargetType: "primary"}, nil, nil, nil)
	if err != ErrAlreadyRunning {
		t.Fatalf("StartScreenShare while running = %v, want ErrAlreadyRunning", err)
	}
}

func TestHost_ResolveTargetPrimaryUsesFirstDisplay(t *testing.T) {
	h := NewHost()
	width, height, err := h.resolveTarget(ScreenShareConfig{TargetType: "primary"})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	displays := ListDisplays()
	if width != displays[0].Width || height != displays[0].Height {
		t.Fatalf("resolveTarget(primary) = %dx%d, want %dx%d", width, height, displays[0].Width, displays[0].Height)
	}
}

func TestHost_ResolveTargetDisplayByIndex(t *testing.T) {
	h := NewHost()
	width, height, err := h.resolveTarget(ScreenShareConfig{TargetType: "display", TargetID: 0})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if width <= 0 || height <= 0 {
		t.Fatalf("resolveTarget(display 0) returned non-positive dimensions %dx%d", width, height)
	}
}

func TestHost_ResolveTargetUnknownDisplayIndexFails(t *testing.T) {
	h := NewHost()
	if _, _, err := h.resolveTarget(ScreenShareConfig{TargetType: "display", TargetID: 99}); err == nil {
		t.Fatal("expected an error for an out-of-range display index")
	}
}

func TestHost_ResolveTargetInvalidTypeFails(t *testing.T) {
	h := NewHost()
	if _, _, err := h.resolveTarget(ScreenShareConfig{TargetType: "bogus"}); err == nil {
		t.Fatal("expected an error for an invalid target_type")
	}
}

func TestScreenShareConfig_ApplyDefaults(t *testing.T) {
	cfg := ScreenShareConfig{}
	cfg.applyDefaults()
	if cfg.FPS != 30 {
		t.Fatalf("default FPS = %d, want 30", cfg.FPS)
	}
	if cfg.Bitrate != 4000 {
		t.Fatalf("default Bitrate = %d, want 4000", cfg.Bitrate)
	}
}

func TestParseTargetID(t *testing.T) {
	if v, err := ParseTargetID(""); err != nil || v != 0 {
		t.Fatalf("ParseTargetID(\"\") = %d, %v, want 0, nil", v, err)
	}
	if v, err := ParseTargetID("42"); err != nil || v != 42 {
		t.Fatalf("ParseTargetID(\"42\") = %d, %v, want 42, nil", v, err)
	}
	if _, err := ParseTargetID("not-a-number"); err == nil {
		t.Fatal("expected an error parsing a non-numeric target id")
	}
}
