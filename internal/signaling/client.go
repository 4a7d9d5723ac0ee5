package signaling

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/breeze-rmm/screenshare-engine/internal/logging"
)

var log = logging.L("signaling")

const (
	dialTimeout    = 10 * time.Second
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

// Client is a single-use connection to an SFU's /rtc signaling endpoint. One
// Client serves exactly one WebRtcSession; it is not reused across sessions.
type Client struct {
	conn     *websocket.Conn
	connMu   sync.Mutex
	sendChan chan []byte
	Events   chan Event
	done     chan struct{}
	stopOnce sync.Once
}

// Connect dials the SFU and starts the send/receive pumps. The caller reads
// Events for inbound Join/Offer/Answer/Trickle/TrackPublished/Leave messages.
func Connect(serverURL, token string) (*Client, error) {
	wsURL, err := buildWSURL(serverURL, token)
	if err != nil {
		return nil, fmt.Errorf("build signaling url: %w", err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial signaling endpoint: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	c := &Client{
		conn:     conn,
		sendChan: make(chan []byte, 64),
		Events:   make(chan Event, 64),
		done:     make(chan struct{}),
	}

	go c.writePump()
	go c.readPump()

	log.Info("connected", "url", wsURL)
	return c, nil
}

func buildWSURL(serverURL, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/rtc"
	q := u.Query()
	q.Set("sdk", "go-screenshare-engine")
	q.Set("protocol", "16")
	q.Set("version", "1.0.0")
	q.Set("auto_subscribe", "1")
	q.Set("adaptive_stream", "0")
	q.Set("access_token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Close tears down the connection. Idempotent.
func (c *Client) Close() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.connMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.conn.Close()
		c.connMu.Unlock()
	})
}

func (c *Client) readPump() {
	defer close(c.Events)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read error", "error", err)
			}
			return
		}

		var resp signalResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			log.Warn("malformed signaling message", "error", err)
			continue
		}

		event, ok := toEvent(resp)
		if !ok {
			continue
		}

		select {
		case c.Events <- event:
		case <-c.done:
			return
		}
	}
}

func toEvent(resp signalResponse) (Event, bool) {
	switch {
	case resp.Join != nil:
		ev := Event{Kind: EventJoin}
		if resp.Join.Room != nil {
			ev.Room = resp.Join.Room.Name
		}
		if resp.Join.Participant != nil {
			ev.Participant = resp.Join.Participant.Identity
		}
		return ev, true
	case resp.Offer != nil:
		return Event{Kind: EventOffer, SDP: resp.Offer.SDP}, true
	case resp.Answer != nil:
		return Event{Kind: EventAnswer, SDP: resp.Answer.SDP}, true
	case resp.Trickle != nil:
		return Event{Kind: EventTrickle, CandidateJSON: resp.Trickle.CandidateInit, TrickleTarget: resp.Trickle.Target}, true
	case resp.TrackPublished != nil:
		ev := Event{Kind: EventTrackPublished, PublishedCID: resp.TrackPublished.CID}
		if resp.TrackPublished.Track != nil {
			ev.PublishedSID = resp.TrackPublished.Track.SID
		}
		return ev, true
	case resp.Leave != nil:
		return Event{Kind: EventLeave}, true
	default:
		return Event{}, false
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.sendChan:
			c.connMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.BinaryMessage, msg)
			c.connMu.Unlock()
			if err != nil {
				log.Warn("write error", "error", err)
				return
			}
		case <-ticker.C:
			c.connMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.connMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) send(req signalRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal signal request: %w", err)
	}
	select {
	case c.sendChan <- data:
		return nil
	case <-c.done:
		return fmt.Errorf("signaling client closed")
	default:
		return fmt.Errorf("signaling send queue full")
	}
}

func (c *Client) SendOffer(sdp string) error {
	return c.send(signalRequest{Offer: &sessionDescription{Type: "offer", SDP: sdp}})
}

func (c *Client) SendAnswer(sdp string) error {
	return c.send(signalRequest{Answer: &sessionDescription{Type: "answer", SDP: sdp}})
}

// SendTrickle carries a browser-shaped RTCIceCandidateInit, JSON-encoded into
// CandidateInit, matching the original protocol's nested-JSON-in-protobuf
// convention for trickle candidates.
func (c *Client) SendTrickle(candidate string, sdpMid string, sdpMLineIndex uint16, target trickleTarget) error {
	init := iceCandidateInit{Candidate: candidate, SDPMid: &sdpMid, SDPMLineIndex: &sdpMLineIndex}
	raw, err := json.Marshal(init)
	if err != nil {
		return fmt.Errorf("marshal ice candidate: %w", err)
	}
	return c.send(signalRequest{Trickle: &trickleRequest{CandidateInit: string(raw), Target: target}})
}

func (c *Client) SendAddTrack(cid, name string, kind trackType, source trackSource, width, height uint32) error {
	return c.send(signalRequest{AddTrack: &addTrackRequest{CID: cid, Name: name, Type: kind, Source: source, Width: width, Height: height}})
}

func (c *Client) SendLeave() error {
	return c.send(signalRequest{Leave: &leaveRequest{}})
}

// DecodeTrickleCandidate parses an Event's CandidateJSON back into its parts
// for handing to a WebRTC ICE agent.
func DecodeTrickleCandidate(candidateJSON string) (candidate, sdpMid string, sdpMLineIndex *uint16, err error) {
	var init iceCandidateInit
	if err := json.Unmarshal([]byte(candidateJSON), &init); err != nil {
		return "", "", nil, err
	}
	mid := ""
	if init.SDPMid != nil {
		mid = *init.SDPMid
	}
	return init.Candidate, mid, init.SDPMLineIndex, nil
}
