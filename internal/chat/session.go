// Package chat implements the live session core: the connection manager for
// the gateway's duplex channel, the result poller that reconciles against the
// persisted message store, and the in-memory conversation timeline.
package chat

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/helmdeck/helmdeck/internal/bus"
	"github.com/helmdeck/helmdeck/internal/identity"
)

// Router maps the active conversation id to the visible location. The session
// asks it to switch when the gateway mints a new conversation.
type Router interface {
	Navigate(conversationID string)
}

// Config holds session tuning. Zero values fall back to defaults.
type Config struct {
	SocketURL         string
	KeepaliveInterval time.Duration
	PollInterval      time.Duration
	PollMaxAttempts   int
}

// Deps are the session's collaborators.
type Deps struct {
	Identity *identity.Store
	Dialer   Dialer
	History  FetchFunc
	Router   Router
	Events   *bus.Bus
}

// Session owns the live channel for one (identity, conversation) pair, with
// automatic capped-backoff reconnection and liveness probing. At most one
// channel is open at any time; opening a new one always tears down the
// previous one first.
//
// Every long-lived async operation (read loop, reconnect timer, poll cycle)
// carries a generation token compared against the current one; stale
// comparisons are the cancellation mechanism.
type Session struct {
	cfg      Config
	identity *identity.Store
	dialer   Dialer
	history  FetchFunc
	router   Router
	events   *bus.Bus

	timeline *Timeline
	poller   *ResultPoller

	// backoff is ReconnectDelay in production; tests shorten it.
	backoff func(attempts int) time.Duration

	mu             sync.Mutex
	state          State
	conversationID string
	skipNextLoad   bool
	conn           Conn
	connGen        int64
	attempts       int
	reconnect      *time.Timer
	keepaliveStop  chan struct{}
	closing        bool
}

// NewSession creates a session. It does not connect; call Open.
func NewSession(cfg Config, deps Deps) *Session {
	if cfg.KeepaliveInterval <= 0 {
		cfg.KeepaliveInterval = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = 20
	}
	dialer := deps.Dialer
	if dialer == nil {
		dialer = WebsocketDialer{}
	}

	s := &Session{
		cfg:      cfg,
		identity: deps.Identity,
		dialer:   dialer,
		history:  deps.History,
		router:   deps.Router,
		events:   deps.Events,
		timeline: NewTimeline(),
		backoff:  ReconnectDelay,
	}
	s.poller = NewResultPoller(cfg.PollInterval, cfg.PollMaxAttempts, deps.History, s.timeline.Len, s.applyPoll)
	return s
}

// Timeline returns the session's message timeline.
func (s *Session) Timeline() *Timeline {
	return s.timeline
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConversationID returns the active conversation id ("" when the session is
// in its create-on-first-message mode).
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Open establishes the live channel for the given conversation, tearing down
// any previous one first. An empty id means "create on first message".
// History for a non-empty id is loaded asynchronously.
func (s *Session) Open(conversationID string) {
	s.mu.Lock()
	s.teardownLocked()
	s.closing = false
	s.attempts = 0
	s.skipNextLoad = false
	s.conversationID = conversationID
	s.setStateLocked(StateConnecting)
	gen := s.connGen
	s.mu.Unlock()

	if conversationID != "" {
		go s.loadHistory(conversationID)
	}
	go s.dial(gen)
}

// SwitchConversation makes conversationID the active conversation: the old
// channel is torn down, the timeline replaced, and a new channel opened.
//
// When the gateway just minted this exact id over the live channel, the
// switch is a no-op consumed once: the timeline already holds the echoed
// exchange and a redundant history fetch would duplicate or blank it.
func (s *Session) SwitchConversation(conversationID string) {
	s.mu.Lock()
	if s.skipNextLoad && conversationID == s.conversationID {
		s.skipNextLoad = false
		s.mu.Unlock()
		slog.Debug("Initial load skipped for minted conversation", "conversation_id", conversationID)
		return
	}
	s.mu.Unlock()

	s.timeline.Clear()
	s.Open(conversationID)
}

// Close tears the session down: closes the channel without reconnecting and
// synchronously invalidates the reconnect timer, the keepalive, and any poll
// cycle. Called on identity loss or when leaving the chat view.
func (s *Session) Close() {
	s.mu.Lock()
	s.closing = true
	s.setStateLocked(StateClosing)
	s.teardownLocked()
	s.setStateLocked(StateDisconnected)
	s.mu.Unlock()
}

// Send transmits a user message. Returns false without side effects unless
// the session is connected. On success the text is appended to the timeline
// immediately as a local echo, not waiting for acknowledgment.
func (s *Session) Send(text string) bool {
	s.mu.Lock()
	if s.state != StateConnected || s.conn == nil {
		s.mu.Unlock()
		return false
	}
	conn := s.conn
	conv := s.conversationID
	s.mu.Unlock()

	if err := conn.WriteFrame(&OutboundFrame{Content: text}); err != nil {
		slog.Warn("Send failed", "error", err)
		return false
	}
	s.timeline.AppendUser(text)
	s.publishTimeline(conv)
	return true
}

// teardownLocked invalidates everything tied to the current channel: the
// generation token, the reconnect timer, the keepalive, the poll cycle, and
// the channel itself. Caller holds s.mu.
func (s *Session) teardownLocked() {
	s.connGen++
	if s.reconnect != nil {
		s.reconnect.Stop()
		s.reconnect = nil
	}
	s.stopKeepaliveLocked()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.poller.Cancel()
}

// buildTarget constructs the channel URL. The credential is re-read from the
// identity store at every connect attempt, so reconnects scheduled before a
// refresh observe the latest token.
func (s *Session) buildTarget() string {
	s.mu.Lock()
	conv := s.conversationID
	s.mu.Unlock()

	q := url.Values{}
	if tok := s.identity.Token(); tok != "" {
		q.Set("token", tok)
	}
	if conv != "" {
		q.Set("conversation_id", conv)
	}
	target := s.cfg.SocketURL
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}
	return target
}

func (s *Session) dial(gen int64) {
	target := s.buildTarget()
	conn, err := s.dialer.Dial(context.Background(), target)

	s.mu.Lock()
	if s.connGen != gen || s.closing {
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		slog.Warn("Dial failed", "error", err)
		s.setStateLocked(StateDisconnected)
		s.scheduleReconnectLocked()
		s.mu.Unlock()
		return
	}
	s.conn = conn
	s.attempts = 0
	s.setStateLocked(StateConnected)
	s.startKeepaliveLocked(conn)
	s.mu.Unlock()

	go s.readLoop(gen, conn)
}

func (s *Session) readLoop(gen int64, conn Conn) {
	for {
		f, err := conn.ReadFrame()
		if err != nil {
			s.handleClose(gen, err)
			return
		}
		s.handleFrame(gen, f)
	}
}

// handleClose runs when the channel drops without the manager asking for it.
// A stale generation means an intentional teardown already happened.
func (s *Session) handleClose(gen int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connGen != gen {
		return
	}
	s.stopKeepaliveLocked()
	s.conn = nil
	s.setStateLocked(StateDisconnected)
	if s.closing {
		return
	}
	slog.Warn("Live channel closed", "error", err)
	s.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the backoff timer. Caller holds s.mu.
func (s *Session) scheduleReconnectLocked() {
	delay := s.backoff(s.attempts)
	s.attempts++
	gen := s.connGen
	slog.Info("Reconnect scheduled", "delay", delay, "attempt", s.attempts)

	s.reconnect = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.connGen != gen || s.closing {
			s.mu.Unlock()
			return
		}
		s.reconnect = nil
		s.setStateLocked(StateConnecting)
		s.mu.Unlock()
		s.dial(gen)
	})
}

func (s *Session) handleFrame(gen int64, f *InboundFrame) {
	if f.Type == FrameTypePong {
		return
	}

	s.mu.Lock()
	if s.connGen != gen {
		s.mu.Unlock()
		return
	}
	active := s.conversationID

	var minted bool
	if f.ConversationID != "" && active == "" {
		s.conversationID = f.ConversationID
		s.skipNextLoad = true
		active = f.ConversationID
		minted = true
	}

	// A background-task result naming a conversation not on screen is
	// dropped: it is durably stored server-side and surfaces on that
	// conversation's next load.
	if f.IsTaskResult() && f.ConversationID != "" && f.ConversationID != active {
		s.mu.Unlock()
		slog.Debug("Dropped task result for inactive conversation",
			"conversation_id", f.ConversationID, "active", active)
		return
	}
	router := s.router
	s.mu.Unlock()

	if minted {
		slog.Info("Conversation minted by gateway", "conversation_id", active)
		if s.events != nil {
			s.events.Publish(&bus.Event{Type: bus.EventConversationMinted, ConversationID: active})
		}
		if router != nil {
			router.Navigate(active)
		}
	}

	if body := f.Body(); body != "" {
		s.timeline.AppendAssistant(body, f.IsTaskResult())
		s.publishTimeline(active)
	}

	if f.TaskDispatched && active != "" {
		s.poller.Start(active)
	}
}

// loadHistory performs the initial wholesale load for a conversation.
func (s *Session) loadHistory(conversationID string) {
	if s.history == nil {
		return
	}
	msgs, err := s.history(context.Background(), conversationID)
	if err != nil {
		slog.Warn("History load failed", "conversation_id", conversationID, "error", err)
		return
	}

	s.mu.Lock()
	current := s.conversationID
	s.mu.Unlock()
	if current != conversationID {
		return
	}
	s.timeline.Replace(msgs)
	s.publishTimeline(conversationID)
}

// applyPoll is the poller's reconciliation hook: wholesale replace from the
// canonical persisted list, guarded against a conversation switch that
// happened while the fetch was in flight.
func (s *Session) applyPoll(conversationID string, msgs []Message) {
	s.mu.Lock()
	current := s.conversationID
	s.mu.Unlock()
	if current != conversationID {
		return
	}
	s.timeline.Replace(msgs)
	s.publishTimeline(conversationID)
}

func (s *Session) startKeepaliveLocked(conn Conn) {
	stop := make(chan struct{})
	s.keepaliveStop = stop
	interval := s.cfg.KeepaliveInterval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := conn.WriteFrame(&OutboundFrame{Type: FrameTypePing}); err != nil {
					// The read loop observes the close and handles it.
					return
				}
			}
		}
	}()
}

func (s *Session) stopKeepaliveLocked() {
	if s.keepaliveStop != nil {
		close(s.keepaliveStop)
		s.keepaliveStop = nil
	}
}

// setStateLocked transitions the state and publishes the change. Caller
// holds s.mu. Publishing never blocks.
func (s *Session) setStateLocked(st State) {
	if s.state == st {
		return
	}
	s.state = st
	if s.events != nil {
		s.events.Publish(&bus.Event{
			Type:           bus.EventStateChanged,
			State:          st.String(),
			ConversationID: s.conversationID,
		})
	}
}

func (s *Session) publishTimeline(conversationID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(&bus.Event{Type: bus.EventTimelineUpdated, ConversationID: conversationID})
}
