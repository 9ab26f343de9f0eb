package deepl

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/lexigo/deepl-go/internal/json"
	"github.com/lexigo/deepl-go/internal/logging"
)

// VoiceEventType identifies one kind of message received during a realtime
// voice session.
type VoiceEventType string

const (
	VoiceEventSourceTranscript      VoiceEventType = "source_transcript_update"
	VoiceEventTargetTranscript      VoiceEventType = "target_transcript_update"
	VoiceEventEndOfSourceTranscript VoiceEventType = "end_of_source_transcript"
	VoiceEventEndOfTargetTranscript VoiceEventType = "end_of_target_transcript"
	VoiceEventEndOfStream           VoiceEventType = "end_of_stream"
	VoiceEventError                 VoiceEventType = "error"
)

// VoiceEvent is one transcript update or lifecycle message of a voice
// session.
type VoiceEvent struct {
	Type VoiceEventType

	// Text is the transcript text for transcript update events.
	Text string

	// Lang is the language of the transcript for transcript update events.
	Lang string

	// Message holds the server's description for error events.
	Message string
}

// VoiceRealtimeOptions configures a realtime voice translation session.
type VoiceRealtimeOptions struct {
	SourceLang string
	TargetLang string

	// AudioMediaType names the container or codec of the source audio,
	// for example "audio/ogg".
	AudioMediaType string
}

type voiceSessionRequest struct {
	SourceLang     string `json:"source_lang,omitempty"`
	TargetLang     string `json:"target_lang"`
	AudioMediaType string `json:"audio_media_type,omitempty"`
}

// VoiceSession is an open realtime voice translation stream. Audio is sent
// with SendAudio and closed with EndOfSourceMedia; transcript updates arrive
// on Events until the server reports the end of the stream.
type VoiceSession struct {
	conn      *websocket.Conn
	sessionID string

	events chan VoiceEvent
	// done releases a read loop parked on an undrained events channel.
	done  chan struct{}
	group *errgroup.Group

	writeMu sync.Mutex
	closed  bool
}

// StartVoiceSession requests a realtime session and connects its streaming
// websocket.
func (c *Client) StartVoiceSession(ctx context.Context, opts VoiceRealtimeOptions) (*VoiceSession, error) {
	if opts.TargetLang == "" {
		return nil, fmt.Errorf("TargetLang must not be empty")
	}
	payload, err := json.Marshal(voiceSessionRequest{
		SourceLang:     opts.SourceLang,
		TargetLang:     opts.TargetLang,
		AudioMediaType: opts.AudioMediaType,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal voice session request: %w", err)
	}

	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodPost,
		URL:    "/v3/voice/realtime",
		JSON:   payload,
	}, statusContext{})
	if err != nil {
		return nil, err
	}

	token := gjson.Get(resp.Text, "token").String()
	streamingURL := gjson.Get(resp.Text, "streaming_url").String()
	sessionID := gjson.Get(resp.Text, "session_id").String()
	if token == "" || streamingURL == "" {
		return nil, fmt.Errorf("voice session response is missing token or streaming_url")
	}

	u, err := url.Parse(streamingURL)
	if err != nil {
		return nil, fmt.Errorf("parse streaming URL: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("User-Agent", c.headers.Get("User-Agent"))
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, &ConnectionError{
			Message:     fmt.Sprintf("connecting voice stream: %v", err),
			ShouldRetry: true,
			Err:         err,
		}
	}

	s := &VoiceSession{
		conn:      conn,
		sessionID: sessionID,
		events:    make(chan VoiceEvent, 16),
		done:      make(chan struct{}),
		group:     &errgroup.Group{},
	}
	s.group.Go(s.readLoop)
	logging.Debugf("voice session %s connected", sessionID)
	return s, nil
}

// SessionID returns the server-assigned identifier of this session.
func (s *VoiceSession) SessionID() string {
	return s.sessionID
}

// Events returns the stream of transcript and lifecycle events. The channel
// is closed once the server ends the stream or the connection fails.
func (s *VoiceSession) Events() <-chan VoiceEvent {
	return s.events
}

type sourceMediaChunk struct {
	Data string `json:"data"`
}

type voiceClientMessage struct {
	SourceMediaChunk *sourceMediaChunk `json:"source_media_chunk,omitempty"`
	EndOfSourceMedia *struct{}         `json:"end_of_source_media,omitempty"`
}

// SendAudio sends one chunk of source audio.
func (s *VoiceSession) SendAudio(chunk []byte) error {
	return s.writeMessage(voiceClientMessage{
		SourceMediaChunk: &sourceMediaChunk{Data: base64.StdEncoding.EncodeToString(chunk)},
	})
}

// EndOfSourceMedia signals that no further audio follows. The server then
// flushes remaining transcripts and ends the stream.
func (s *VoiceSession) EndOfSourceMedia() error {
	return s.writeMessage(voiceClientMessage{EndOfSourceMedia: &struct{}{}})
}

func (s *VoiceSession) writeMessage(msg voiceClientMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal voice message: %w", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return fmt.Errorf("voice session is closed")
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return &ConnectionError{
			Message: fmt.Sprintf("writing voice stream: %v", err),
			Err:     err,
		}
	}
	return nil
}

func (s *VoiceSession) readLoop() error {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return &ConnectionError{
				Message: fmt.Sprintf("reading voice stream: %v", err),
				Err:     err,
			}
		}
		event, last := parseVoiceEvent(string(data))
		select {
		case s.events <- event:
		case <-s.done:
			return nil
		}
		if last {
			return nil
		}
	}
}

// parseVoiceEvent maps one server message to its event. done reports that no
// further events follow on this session.
func parseVoiceEvent(data string) (VoiceEvent, bool) {
	body := gjson.Parse(data)
	for _, kind := range []VoiceEventType{
		VoiceEventSourceTranscript,
		VoiceEventTargetTranscript,
	} {
		if v := body.Get(string(kind)); v.Exists() {
			return VoiceEvent{
				Type: kind,
				Text: v.Get("text").String(),
				Lang: v.Get("lang").String(),
			}, false
		}
	}
	for _, kind := range []VoiceEventType{
		VoiceEventEndOfSourceTranscript,
		VoiceEventEndOfTargetTranscript,
	} {
		if body.Get(string(kind)).Exists() {
			return VoiceEvent{Type: kind}, false
		}
	}
	if v := body.Get(string(VoiceEventError)); v.Exists() {
		return VoiceEvent{Type: VoiceEventError, Message: v.Get("message").String()}, true
	}
	// Unknown messages are treated as the end of the stream marker; the
	// server sends nothing after end_of_stream.
	return VoiceEvent{Type: VoiceEventEndOfStream}, true
}

// Close tears down the websocket connection and waits for the read loop to
// finish. It is safe to call more than once.
func (s *VoiceSession) Close() error {
	s.writeMu.Lock()
	if s.closed {
		s.writeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()

	err := s.conn.Close()
	s.group.Wait()
	return err
}
