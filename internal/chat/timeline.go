package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is a single entry in the conversation timeline.
type Message struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	TaskResult bool      `json:"task_result,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Timeline holds the ordered message log for exactly one conversation.
//
// Three writers touch it: the initial history load, live-channel appends, and
// poll reconciliation. Each write is total for its own event; conflicts
// resolve as last-writer-wins. Display order is the slice's natural order;
// the persisted store's ordering is authoritative and entries are never
// re-sorted by timestamp.
type Timeline struct {
	mu   sync.RWMutex
	msgs []Message
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// AppendUser appends a locally-echoed user message and returns it. The entry
// gets a client-generated id and the current local time as its ordering key.
func (t *Timeline) AppendUser(content string) Message {
	return t.append(RoleUser, content, false)
}

// AppendAssistant appends an assistant message pushed over the live channel.
func (t *Timeline) AppendAssistant(content string, taskResult bool) Message {
	return t.append(RoleAssistant, content, taskResult)
}

func (t *Timeline) append(role, content string, taskResult bool) Message {
	msg := Message{
		ID:         uuid.NewString(),
		Role:       role,
		Content:    content,
		TaskResult: taskResult,
		Timestamp:  time.Now(),
	}
	t.mu.Lock()
	t.msgs = append(t.msgs, msg)
	t.mu.Unlock()
	return msg
}

// Replace overwrites the whole timeline with the canonical persisted list.
func (t *Timeline) Replace(msgs []Message) {
	copied := make([]Message, len(msgs))
	copy(copied, msgs)
	t.mu.Lock()
	t.msgs = copied
	t.mu.Unlock()
}

// Clear drops all entries. Used when the active conversation changes.
func (t *Timeline) Clear() {
	t.mu.Lock()
	t.msgs = nil
	t.mu.Unlock()
}

// Len returns the current entry count.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.msgs)
}

// Snapshot returns a copy of the current entries.
func (t *Timeline) Snapshot() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}
