package signaling

import "testing"

func TestTrickleTargetConstants(t *testing.T) {
	if TrickleTargetPublisher != 0 {
		t.Fatalf("TrickleTargetPublisher = %d, want 0", TrickleTargetPublisher)
	}
	if TrickleTargetSubscriber != 1 {
		t.Fatalf("TrickleTargetSubscriber = %d, want 1", TrickleTargetSubscriber)
	}
}

func TestTrackTypeAndSourceConstants(t *testing.T) {
	if TrackTypeAudio != 0 || TrackTypeVideo != 1 {
		t.Fatalf("track type constants changed: audio=%d video=%d", TrackTypeAudio, TrackTypeVideo)
	}
	if TrackSourceCamera != 0 || TrackSourceMicrophone != 1 || TrackSourceScreenShare != 3 {
		t.Fatalf("track source constants changed: camera=%d mic=%d screenshare=%d",
			TrackSourceCamera, TrackSourceMicrophone, TrackSourceScreenShare)
	}
}

func TestAddTrackRequest_MarshalsExpectedFields(t *testing.T) {
	req := signalRequest{AddTrack: &addTrackRequest{
		CID: "cid-1", Name: "screen", Type: TrackTypeVideo, Source: TrackSourceScreenShare,
		Width: 1920, Height: 1080,
	}}
	if req.AddTrack.Type != TrackTypeVideo {
		t.Fatal("AddTrack.Type not preserved")
	}
	if req.Offer != nil || req.Answer != nil || req.Trickle != nil || req.Leave != nil {
		t.Fatal("only AddTrack should be populated in this request")
	}
}
