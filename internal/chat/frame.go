package chat

// Frame type discriminators on the live channel. A plain assistant reply
// carries no type at all.
const (
	FrameTypePing       = "ping"
	FrameTypePong       = "pong"
	FrameTypeTaskResult = "task_result"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// InboundFrame is a message pushed by the gateway over the live channel.
type InboundFrame struct {
	Type           string `json:"type,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Message        string `json:"message,omitempty"`
	TaskDispatched bool   `json:"task_dispatched,omitempty"`
}

// Body returns the textual payload, preferring "content" over "message".
func (f *InboundFrame) Body() string {
	if f.Content != "" {
		return f.Content
	}
	return f.Message
}

// IsTaskResult reports whether the frame carries a background-task result.
func (f *InboundFrame) IsTaskResult() bool {
	return f.Type == FrameTypeTaskResult
}

// OutboundFrame is a client-to-gateway frame: either a user message
// ({"content": ...}) or a liveness probe ({"type": "ping"}).
type OutboundFrame struct {
	Type    string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`
}
