package signaling

import (
	"net/url"
	"testing"
)

func TestBuildWSURL_HTTPSBecomesWSS(t *testing.T) {
	raw, err := buildWSURL("https://sfu.example.com", "tok123")
	if err != nil {
		t.Fatalf("buildWSURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if u.Scheme != "wss" {
		t.Fatalf("scheme = %q, want wss", u.Scheme)
	}
	if u.Path != "/rtc" {
		t.Fatalf("path = %q, want /rtc", u.Path)
	}
	if got := u.Query().Get("access_token"); got != "tok123" {
		t.Fatalf("access_token = %q, want tok123", got)
	}
}

func TestBuildWSURL_HTTPBecomesWS(t *testing.T) {
	raw, err := buildWSURL("http://sfu.example.com:7880", "tok")
	if err != nil {
		t.Fatalf("buildWSURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if u.Scheme != "ws" {
		t.Fatalf("scheme = %q, want ws", u.Scheme)
	}
}

func TestBuildWSURL_InvalidURLErrors(t *testing.T) {
	if _, err := buildWSURL("://not-a-url", "tok"); err == nil {
		t.Fatal("expected an error for a malformed server URL")
	}
}

func TestBuildWSURL_SetsProtocolQueryParams(t *testing.T) {
	raw, err := buildWSURL("wss://sfu.example.com", "tok")
	if err != nil {
		t.Fatalf("buildWSURL: %v", err)
	}
	u, _ := url.Parse(raw)
	q := u.Query()
	if q.Get("protocol") != "16" {
		t.Fatalf("protocol = %q, want 16", q.Get("protocol"))
	}
	if q.Get("auto_subscribe") != "1" {
		t.Fatalf("auto_subscribe = %q, want 1", q.Get("auto_subscribe"))
	}
}

func TestToEvent_Join(t *testing.T) {
	resp := signalResponse{Join: &joinResponse{
		Room:        &roomInfo{Name: "room1"},
		Participant: &participantInfo{Identity: "pub1"},
	}}
	ev, ok := toEvent(resp)
	if !ok || ev.Kind != EventJoin {
		t.Fatalf("toEvent(join) = %+v, %v", ev, ok)
	}
	if ev.Room != "room1" || ev.Participant != "pub1" {
		t.Fatalf("join event fields = %+v", ev)
	}
}

func TestToEvent_Answer(t *testing.T) {
	resp := signalResponse{Answer: &sessionDescription{Type: "answer", SDP: "v=0..."}}
	ev, ok := toEvent(resp)
	if !ok || ev.Kind != EventAnswer || ev.SDP != "v=0..." {
		t.Fatalf("toEvent(answer) = %+v, %v", ev, ok)
	}
}

func TestToEvent_Trickle(t *testing.T) {
	resp := signalResponse{Trickle: &trickleRequest{CandidateInit: `{"candidate":"..."}`, Target: TrickleTargetPublisher}}
	ev, ok := toEvent(resp)
	if !ok || ev.Kind != EventTrickle || ev.TrickleTarget != TrickleTargetPublisher {
		t.Fatalf("toEvent(trickle) = %+v, %v", ev, ok)
	}
}

func TestToEvent_TrackPublished(t *testing.T) {
	resp := signalResponse{TrackPublished: &trackPublishedResponse{CID: "cid-1", Track: &trackInfo{SID: "sid-1"}}}
	ev, ok := toEvent(resp)
	if !ok || ev.Kind != EventTrackPublished || ev.PublishedCID != "cid-1" || ev.PublishedSID != "sid-1" {
		t.Fatalf("toEvent(trackPublished) = %+v, %v", ev, ok)
	}
}

func TestToEvent_Leave(t *testing.T) {
	resp := signalResponse{Leave: &struct{}{}}
	ev, ok := toEvent(resp)
	if !ok || ev.Kind != EventLeave {
		t.Fatalf("toEvent(leave) = %+v, %v", ev, ok)
	}
}

func TestToEvent_EmptyResponseIsIgnored(t *testing.T) {
	_, ok := toEvent(signalResponse{})
	if ok {
		t.Fatal("an empty signalResponse should not produce an Event")
	}
}

func TestDecodeTrickleCandidate_RoundTrips(t *testing.T) {
	candidate, sdpMid, sdpMLineIndex, err := DecodeTrickleCandidate(
		`{"candidate":"candidate:1 1 UDP 1 1.2.3.4 5 typ host","sdpMid":"0","sdpMLineIndex":0}`)
	if err != nil {
		t.Fatalf("DecodeTrickleCandidate: %v", err)
	}
	if candidate == "" {
		t.Fatal("expected a non-empty candidate string")
	}
	if sdpMid != "0" {
		t.Fatalf("sdpMid = %q, want 0", sdpMid)
	}
	if sdpMLineIndex == nil || *sdpMLineIndex != 0 {
		t.Fatal("expected sdpMLineIndex to be set to 0")
	}
}

func TestDecodeTrickleCandidate_MalformedJSONErrors(t *testing.T) {
	if _, _, _, err := DecodeTrickleCandidate("not json"); err == nil {
		t.Fatal("expected an error decoding malformed trickle JSON")
	}
}
