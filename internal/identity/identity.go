// Package identity holds the bearer credential for the gateway session.
package identity

import "sync"

// Store is a read-mostly cell for the current bearer credential.
//
// Long-lived timers and reconnect callbacks keep a pointer to the Store and
// re-read the token at connect time, so a refreshed credential is observed
// without re-creating the callbacks that were scheduled before the refresh.
type Store struct {
	mu    sync.RWMutex
	token string
}

// NewStore creates a store holding the given token. An empty token is valid
// input; it means "not logged in yet".
func NewStore(token string) *Store {
	return &Store{token: token}
}

// Token returns the current bearer credential.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the credential.
func (s *Store) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear invalidates the credential (logout).
func (s *Store) Clear() {
	s.Set("")
}

// Valid reports whether a credential is present.
func (s *Store) Valid() bool {
	return s.Token() != ""
}
