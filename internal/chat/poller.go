package chat

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// FetchFunc retrieves the full persisted message list for a conversation.
// The returned order is the store's order and is authoritative.
type FetchFunc func(ctx context.Context, conversationID string) ([]Message, error)

// ResultPoller compensates for unreliable out-of-band delivery of
// background-task completions. The gateway has two independent write paths
// into persisted history (the synchronous acknowledgment, and a worker that
// appends the real result later), so after a "task dispatched" signal the
// persisted store is re-queried on a fixed cadence.
//
// Only the most recently started cycle may act: every cycle carries a
// generation token compared against the current one before and after each
// fetch, and a stale cycle exits without touching anything.
type ResultPoller struct {
	interval    time.Duration
	maxAttempts int
	fetch       FetchFunc
	localLen    func() int
	apply       func(conversationID string, msgs []Message)

	gen    atomic.Int64
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewResultPoller creates a poller. localLen reports the current local
// message count; apply replaces the timeline with a fetched canonical list.
func NewResultPoller(interval time.Duration, maxAttempts int, fetch FetchFunc, localLen func() int, apply func(string, []Message)) *ResultPoller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 20
	}
	return &ResultPoller{
		interval:    interval,
		maxAttempts: maxAttempts,
		fetch:       fetch,
		localLen:    localLen,
		apply:       apply,
	}
}

// Start begins a new poll cycle for the conversation, superseding any cycle
// still in flight.
func (p *ResultPoller) Start(conversationID string) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	gen := p.gen.Add(1)
	p.mu.Unlock()

	slog.Debug("Result poller started", "conversation_id", conversationID, "generation", gen)
	go p.run(ctx, gen, conversationID)
}

// Cancel invalidates the current cycle. Safe to call with none running.
func (p *ResultPoller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen.Add(1)
}

// Generation returns the current cycle token.
func (p *ResultPoller) Generation() int64 {
	return p.gen.Load()
}

func (p *ResultPoller) run(ctx context.Context, gen int64, conversationID string) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if p.gen.Load() != gen {
			return
		}

		msgs, err := p.fetch(ctx, conversationID)

		// Re-check after the asynchronous fetch: a newer cycle or a
		// teardown may have started while it was in flight.
		if p.gen.Load() != gen {
			return
		}
		if err != nil {
			// Treated as "no new messages this cycle".
			slog.Debug("Result poll fetch failed", "conversation_id", conversationID, "attempt", attempt, "error", err)
		} else if len(msgs) > p.localLen() {
			p.apply(conversationID, msgs)
			// Keep polling: multiple background tasks may be in
			// flight and later ones may still be pending.
		}

		timer.Reset(p.interval)
	}
	slog.Debug("Result poller exhausted", "conversation_id", conversationID, "attempts", p.maxAttempts)
}
