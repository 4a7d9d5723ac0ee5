// Package signaling implements the LiveKit-style signaling protocol used to
// negotiate a publisher session with an SFU: a WebSocket handshake at /rtc
// followed by one JSON-encoded signaling message per Binary frame.
package signaling

// outbound request kinds, one field populated per message (mirrors the
// oneof shape of the original protobuf SignalRequest).
type signalRequest struct {
	Offer    *sessionDescription `json:"offer,omitempty"`
	Answer   *sessionDescription `json:"answer,omitempty"`
	Trickle  *trickleRequest     `json:"trickle,omitempty"`
	AddTrack *addTrackRequest    `json:"addTrack,omitempty"`
	Leave    *leaveRequest       `json:"leave,omitempty"`
}

// inbound response kinds.
type signalResponse struct {
	Join           *joinResponse           `json:"join,omitempty"`
	Offer          *sessionDescription     `json:"offer,omitempty"`
	Answer         *sessionDescription     `json:"answer,omitempty"`
	Trickle        *trickleRequest         `json:"trickle,omitempty"`
	TrackPublished *trackPublishedResponse `json:"trackPublished,omitempty"`
	Leave          *struct{}               `json:"leave,omitempty"`
}

type sessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// trickleTarget values match the original protocol: 0 is the publisher
// connection this session drives, 1 is the SFU's subscriber connection.
type trickleTarget int

const (
	TrickleTargetPublisher  trickleTarget = 0
	TrickleTargetSubscriber trickleTarget = 1
)

type trickleRequest struct {
	CandidateInit string        `json:"candidateInit"`
	Target        trickleTarget `json:"target"`
	Final         bool          `json:"final,omitempty"`
}

// iceCandidateInit is the JSON payload carried inside TrickleRequest's
// CandidateInit field — shaped like the browser's RTCIceCandidateInit.
type iceCandidateInit struct {
	Candidate        string  `json:"candidate"`
	SDPMid           *string `json:"sdpMid,omitempty"`
	SDPMLineIndex    *uint16 `json:"sdpMLineIndex,omitempty"`
	UsernameFragment *string `json:"usernameFragment,omitempty"`
}

type trackType int

const (
	TrackTypeAudio trackType = 0
	TrackTypeVideo trackType = 1
)

type trackSource int

const (
	TrackSourceCamera     trackSource = 0
	TrackSourceMicrophone trackSource = 1
	TrackSourceScreenShare trackSource = 3
)

type addTrackRequest struct {
	CID    string      `json:"cid"`
	Name   string      `json:"name"`
	Type   trackType   `json:"type"`
	Source trackSource `json:"source"`
	Width  uint32      `json:"width"`
	Height uint32      `json:"height"`
	Muted  bool        `json:"muted"`
}

type leaveRequest struct{}

type joinResponse struct {
	Room        *roomInfo        `json:"room,omitempty"`
	Participant *participantInfo `json:"participant,omitempty"`
}

type roomInfo struct {
	Name string `json:"name"`
}

type participantInfo struct {
	Identity string `json:"identity"`
}

type trackPublishedResponse struct {
	CID   string     `json:"cid"`
	Track *trackInfo `json:"track,omitempty"`
}

type trackInfo struct {
	SID string `json:"sid"`
}

// EventKind discriminates the Event union delivered over the Events channel.
type EventKind int

const (
	EventJoin EventKind = iota
	EventOffer
	EventAnswer
	EventTrickle
	EventTrackPublished
	EventLeave
)

// Event is the signaling-task-to-transport message SignalClient emits,
// mirroring SignalEvent in the original Rust transport.
type Event struct {
	Kind EventKind

	Room        string
	Participant string

	SDP string // Offer/Answer

	CandidateJSON string // Trickle — still JSON-encoded, caller decodes
	TrickleTarget trickleTarget

	PublishedCID string
	PublishedSID string
}
