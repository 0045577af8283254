package chat

import (
	"encoding/json"
	"testing"
	"time"
)

func TestReconnectDelay(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{6, 30 * time.Second},
		// Attempt counts past the int64 range of 2^n must still clamp, not
		// wrap to zero or negative and hot-loop the reconnect.
		{34, 30 * time.Second},
		{63, 30 * time.Second},
		{100, 30 * time.Second},
	}
	for _, tc := range cases {
		got := ReconnectDelay(tc.attempts)
		if got != tc.want {
			t.Errorf("ReconnectDelay(%d) = %v, want %v", tc.attempts, got, tc.want)
		}
		if got <= 0 {
			t.Errorf("ReconnectDelay(%d) = %v, must be positive", tc.attempts, got)
		}
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateDisconnected: "disconnected",
		StateConnecting:   "connecting",
		StateConnected:    "connected",
		StateClosing:      "closing",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", st, got, want)
		}
	}
}

func TestInboundFrameBodyPrefersContent(t *testing.T) {
	f := &InboundFrame{Content: "from content", Message: "from message"}
	if got := f.Body(); got != "from content" {
		t.Errorf("Body() = %q", got)
	}
	f = &InboundFrame{Message: "from message"}
	if got := f.Body(); got != "from message" {
		t.Errorf("Body() = %q", got)
	}
}

func TestInboundFrameDecode(t *testing.T) {
	raw := `{"type":"task_result","conversation_id":"c9","content":"done","task_dispatched":true}`
	var f InboundFrame
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !f.IsTaskResult() || f.ConversationID != "c9" || f.Body() != "done" || !f.TaskDispatched {
		t.Errorf("decoded frame = %+v", f)
	}

	// A plain assistant reply has no type at all.
	var plain InboundFrame
	if err := json.Unmarshal([]byte(`{"message":"hello"}`), &plain); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if plain.IsTaskResult() || plain.Body() != "hello" {
		t.Errorf("decoded plain frame = %+v", plain)
	}
}

func TestOutboundFrameEncode(t *testing.T) {
	ping, err := json.Marshal(&OutboundFrame{Type: FrameTypePing})
	if err != nil {
		t.Fatal(err)
	}
	if string(ping) != `{"type":"ping"}` {
		t.Errorf("ping frame = %s", ping)
	}

	msg, err := json.Marshal(&OutboundFrame{Content: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if string(msg) != `{"content":"hi"}` {
		t.Errorf("message frame = %s", msg)
	}
}
