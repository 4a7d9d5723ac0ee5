package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pion/rtcp"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/breeze-rmm/screenshare-engine/internal/logging"
	"github.com/breeze-rmm/screenshare-engine/internal/signaling"
)

var log = logging.L("engine")

const (
	joinTimeout           = 5 * time.Second
	pliRateLimit          = 500 * time.Millisecond
	playoutDelayHeaderURI = "http://www.webrtc.org/experiments/rtp-hdrext/playout-delay"
)

// WebRtcSession (C6) owns the one peer connection for a screen-share
// session. It is the *offerer*: unlike a browser-answering session, it
// builds the SDP offer itself and publishes it to the SFU over SignalClient,
// applying the SFU's answer in return (the LiveKit publisher pattern).
type WebRtcSession struct {
	mu    sync.Mutex
	phase atomic.Int32

	pc          *webrtc.PeerConnection
	videoTrack  *webrtc.TrackLocalStaticSample
	audioTrack  *webrtc.TrackLocalStaticSample
	signal      *signaling.Client
	session     *SessionState
	width       int
	height      int
	withAudio   bool

	commands  <-chan transportCommand
	keyframes chan<- controlCommand

	framesSent    atomic.Uint64
	framesDropped atomic.Uint64

	stopOnce sync.Once
	doneCh   chan struct{}
}

func NewWebRtcSession(session *SessionState, width, height int, withAudio bool, commands <-chan transportCommand, keyframes chan<- controlCommand) *WebRtcSession {
	s := &WebRtcSession{
		session:   session,
		width:     width,
		height:    height,
		withAudio: withAudio,
		commands:  commands,
		keyframes: keyframes,
		doneCh:    make(chan struct{}),
	}
	s.phase.Store(int32(PhaseIdle))
	return s
}

func (s *WebRtcSession) Phase() SessionPhase { return SessionPhase(s.phase.Load()) }

func (s *WebRtcSession) setPhase(p SessionPhase) { s.phase.Store(int32(p)) }

// Connect drives Idle -> Signalling -> Offering. It returns once the SDP
// offer has been sent and the background command/event loops are running;
// Offering -> Connecting (on the SFU's answer) and Connecting -> Connected
// (on ICE connect) happen asynchronously.
func (s *WebRtcSession) Connect(serverURL, token string) error {
	s.setPhase(PhaseSignalling)

	client, err := signaling.Connect(serverURL, token)
	if err != nil {
		s.setPhase(PhaseDisconnected)
		return newTransportErrorf("signaling connect: %v", err)
	}
	s.signal = client

	select {
	case ev, ok := <-client.Events:
		if !ok || ev.Kind != signaling.EventJoin {
			s.setPhase(PhaseDisconnected)
			return newTransportErrorf("signaling: expected join response")
		}
	case <-time.After(joinTimeout):
		s.setPhase(PhaseDisconnected)
		return newTransportErrorf("signaling: join response timed out after %s", joinTimeout)
	}

	s.setPhase(PhaseOffering)
	if err := s.offer(); err != nil {
		s.setPhase(PhaseDisconnected)
		return err
	}

	go s.eventLoop()
	go s.commandLoop()
	go s.statusLoop()
	return nil
}

// statusLoop logs a connected/frames_sent/frames_dropped summary every 5s,
// matching the periodic status line the original transport thread printed —
// information EncodePublish cannot see since it has no notion of pre-Connected
// frame drops.
func (s *WebRtcSession) statusLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.doneCh:
			return
		case <-ticker.C:
			log.Debug("session status",
				"phase", s.Phase(),
				"frames_sent", s.framesSent.Load(),
				"frames_dropped", s.framesDropped.Load())
		}
	}
}

func (s *WebRtcSession) offer() error {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return newTransportErrorf("register default codecs: %v", err)
	}
	if err := mediaEngine.RegisterHeaderExtension(
		webrtc.RTPHeaderExtensionCapability{URI: playoutDelayHeaderURI},
		webrtc.RTPCodecTypeVideo,
	); err != nil {
		log.Warn("failed to register playout-delay extension", "error", err)
	}
	api := webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine))

	pc, err := api.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return newTransportErrorf("create peer connection: %v", err)
	}
	s.pc = pc

	videoTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{
			MimeType:    webrtc.MimeTypeH264,
			ClockRate:   90000,
			SDPFmtpLine: "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=4d001f",
		},
		"video", "screenshare",
	)
	if err != nil {
		return newTransportErrorf("create video track: %v", err)
	}
	s.videoTrack = videoTrack

	sender, err := pc.AddTrack(videoTrack)
	if err != nil {
		return newTransportErrorf("add video track: %v", err)
	}
	go s.drainRTCP(sender)

	if s.withAudio {
		audioTrack, err := webrtc.NewTrackLocalStaticSample(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
			"audio", "screenshare-audio",
		)
		if err == nil {
			if _, addErr := pc.AddTrack(audioTrack); addErr == nil {
				s.audioTrack = audioTrack
			} else {
				log.Warn("failed to add audio track", "error", addErr)
			}
		} else {
			log.Warn("failed to create audio track", "error", err)
		}
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil || s.signal == nil {
			return
		}
		init := c.ToJSON()
		mid := "0"
		var mLineIndex uint16
		if init.SDPMLineIndex != nil {
			mLineIndex = *init.SDPMLineIndex
		}
		if err := s.signal.SendTrickle(init.Candidate, mid, mLineIndex, signaling.TrickleTargetPublisher); err != nil {
			log.Warn("failed to send trickle candidate", "error", err)
		}
	})

	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		switch state {
		case webrtc.ICEConnectionStateConnected:
			if s.Phase() == PhaseConnecting {
				s.setPhase(PhaseConnected)
			}
		case webrtc.ICEConnectionStateDisconnected, webrtc.ICEConnectionStateFailed:
			if s.Phase() == PhaseConnected {
				s.setPhase(PhaseDisconnected)
				s.session.RequestStop()
			}
		}
	})

	videoCID := uuid.NewString()
	if err := s.signal.SendAddTrack(videoCID, "screenshare", signaling.TrackTypeVideo, signaling.TrackSourceScreenShare, uint32(s.width), uint32(s.height)); err != nil {
		log.Warn("failed to send add-track request", "error", err)
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return newTransportErrorf("create offer: %v", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return newTransportErrorf("set local description: %v", err)
	}
	if err := s.signal.SendOffer(offer.SDP); err != nil {
		return newTransportErrorf("send offer: %v", err)
	}

	return nil
}

// drainRTCP reads RTCP from the video sender so backpressure never blocks
// pion's internal pipeline, and converts PLI/FIR into a rate-limited
// force-keyframe control command.
func (s *WebRtcSession) drainRTCP(sender *webrtc.RTPSender) {
	buf := make([]byte, 1500)
	var lastKeyframe time.Time
	for {
		n, _, err := sender.Read(buf)
		if err != nil {
			return
		}
		pkts, err := rtcp.Unmarshal(buf[:n])
		if err != nil {
			continue
		}
		for _, p := range pkts {
			switch p.(type) {
			case *rtcp.PictureLossIndication, *rtcp.FullIntraRequest:
				if time.Since(lastKeyframe) < pliRateLimit {
					continue
				}
				lastKeyframe = time.Now()
				select {
				case s.keyframes <- controlForceKeyframe:
				default:
				}
			}
		}
	}
}

func (s *WebRtcSession) eventLoop() {
	for {
		select {
		case <-s.doneCh:
			return
		case ev, ok := <-s.signal.Events:
			if !ok {
				return
			}
			s.handleEvent(ev)
		}
	}
}

func (s *WebRtcSession) handleEvent(ev signaling.Event) {
	switch ev.Kind {
	case signaling.EventAnswer:
		if err := s.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: ev.SDP}); err != nil {
			log.Warn("failed to apply sfu answer", "error", err)
			return
		}
		s.setPhase(PhaseConnecting)

	case signaling.EventTrickle:
		if ev.TrickleTarget != signaling.TrickleTargetPublisher {
			return
		}
		candidate, sdpMid, mLineIndex, err := signaling.DecodeTrickleCandidate(ev.CandidateJSON)
		if err != nil {
			log.Warn("malformed trickle candidate", "error", err)
			return
		}
		init := webrtc.ICECandidateInit{Candidate: candidate, SDPMid: &sdpMid, SDPMLineIndex: mLineIndex}
		if err := s.pc.AddICECandidate(init); err != nil {
			log.Warn("failed to add ice candidate", "error", err)
		}

	case signaling.EventOffer:
		// Subscriber offer from the SFU: accept and answer even with no
		// subscribed tracks, as LiveKit requires the publisher session to
		// keep its subscriber leg alive.
		if err := s.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: ev.SDP}); err != nil {
			log.Warn("failed to apply subscriber offer", "error", err)
			return
		}
		answer, err := s.pc.CreateAnswer(nil)
		if err != nil {
			log.Warn("failed to create subscriber answer", "error", err)
			return
		}
		if err := s.pc.SetLocalDescription(answer); err != nil {
			log.Warn("failed to set subscriber local description", "error", err)
			return
		}
		if err := s.signal.SendAnswer(answer.SDP); err != nil {
			log.Warn("failed to send subscriber answer", "error", err)
		}

	case signaling.EventTrackPublished:
		log.Info("track published", "cid", ev.PublishedCID, "sid", ev.PublishedSID)

	case signaling.EventLeave:
		s.session.RequestStop()
	}
}

func (s *WebRtcSession) commandLoop() {
	for {
		select {
		case <-s.doneCh:
			return
		case cmd, ok := <-s.commands:
			if !ok {
				return
			}
			s.handleCommand(cmd)
		}
	}
}

func (s *WebRtcSession) handleCommand(cmd transportCommand) {
	switch c := cmd.(type) {
	case cmdVideoFrame:
		// Frames submitted before the Connecting -> Connected transition are
		// dropped rather than queued.
		if s.Phase() != PhaseConnected {
			s.framesDropped.Add(1)
			return
		}
		if err := s.videoTrack.WriteSample(media.Sample{Data: c.Bytes, Duration: time.Second / time.Duration(max(1, s.fps())), PacketTimestamp: c.RTPTS}); err != nil {
			log.Warn("failed to write video sample", "error", err)
			s.framesDropped.Add(1)
			return
		}
		s.framesSent.Add(1)

	case cmdAudioFrame:
		if s.audioTrack == nil || s.Phase() != PhaseConnected {
			return
		}
		if err := s.audioTrack.WriteSample(media.Sample{Data: c.Bytes, Duration: 20 * time.Millisecond, PacketTimestamp: c.RTPTS}); err != nil {
			log.Warn("failed to write audio sample", "error", err)
		}

	case cmdStop:
		s.Close()
	}
}

func (s *WebRtcSession) fps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.FPS <= 0 {
		return 30
	}
	return s.session.FPS
}

// Close tears down the session: Closing -> Terminated. Idempotent.
func (s *WebRtcSession) Close() {
	s.stopOnce.Do(func() {
		s.setPhase(PhaseClosing)
		if s.signal != nil {
			_ = s.signal.SendLeave()
		}
		close(s.doneCh)
		if s.pc != nil {
			_ = s.pc.Close()
		}
		if s.signal != nil {
			s.signal.Close()
		}
		s.setPhase(PhaseTerminated)
	})
}
