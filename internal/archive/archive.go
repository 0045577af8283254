// Package archive keeps a local sqlite mirror of conversation history, so
// past sessions stay readable when the gateway is unreachable.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/helmdeck/helmdeck/internal/chat"
)

// Store is the sqlite-backed mirror.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveMessages mirrors a conversation's current timeline. Each entry upserts
// by its gateway-assigned id; the seq column records the timeline's display
// order, which is not necessarily timestamp order.
func (s *Store) SaveMessages(conversationID string, msgs []chat.Message) error {
	if conversationID == "" {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO conversations (id, last_seen) VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET last_seen = CURRENT_TIMESTAMP`,
		conversationID); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	for i, m := range msgs {
		if _, err := tx.Exec(`
			INSERT INTO messages (id, conversation_id, seq, role, content, task_result, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				seq = excluded.seq,
				content = excluded.content,
				task_result = excluded.task_result`,
			m.ID, conversationID, i, m.Role, m.Content, m.TaskResult, m.Timestamp); err != nil {
			return fmt.Errorf("upsert message %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// Messages returns the mirrored history for a conversation in archived order.
func (s *Store) Messages(conversationID string) ([]chat.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, role, content, task_result, created_at
		FROM messages WHERE conversation_id = ? ORDER BY seq`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.TaskResult, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ConversationSummary is one row from the archived conversation list.
type ConversationSummary struct {
	ID           string
	MessageCount int
	LastSeen     time.Time
}

// Conversations lists the archived conversations, most recently seen first.
func (s *Store) Conversations() ([]ConversationSummary, error) {
	rows, err := s.db.Query(`
		SELECT c.id, COUNT(m.id), c.last_seen
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		GROUP BY c.id ORDER BY c.last_seen DESC`)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []ConversationSummary
	for rows.Next() {
		var c ConversationSummary
		if err := rows.Scan(&c.ID, &c.MessageCount, &c.LastSeen); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
