package engine

// transportCommand is sent from EncodePublish (and the audio-forward loop)
// to WebRtcSession over a bounded, load-shedding channel, drained by
// WebRtcSession's command goroutine. Signaling events, which also call into
// the peer connection, are handled on a separate event goroutine. cmdStop
// shares that channel and can be dropped under backpressure the same as a
// frame; Host.StopScreenShare closes the session directly rather than
// depending on cmdStop delivery.
type transportCommand interface{ isTransportCommand() }

type cmdVideoFrame struct {
	Bytes      []byte
	RTPTS      uint32
	IsKeyframe bool
}

type cmdAudioFrame struct {
	Bytes []byte
	RTPTS uint32
}

type cmdForceKeyframe struct{}

type cmdStop struct{}

func (cmdVideoFrame) isTransportCommand()    {}
func (cmdAudioFrame) isTransportCommand()    {}
func (cmdForceKeyframe) isTransportCommand() {}
func (cmdStop) isTransportCommand()          {}
