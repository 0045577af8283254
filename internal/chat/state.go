package chat

import (
	"math"
	"time"
)

// State is the connection state of a session.
type State int32

const (
	// StateDisconnected means no live channel is open.
	StateDisconnected State = iota
	// StateConnecting means a dial or reconnect is in flight.
	StateConnecting
	// StateConnected means the live channel is established.
	StateConnected
	// StateClosing is the transient state during intentional teardown; it
	// suppresses auto-reconnect.
	StateClosing
)

// String returns the state name used in events and the status bar.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	default:
		return "disconnected"
	}
}

// ReconnectDelay calculates the backoff before reconnect attempt n.
// Returns min(1s * 2^attempts, 30s). The exponent is clamped before the
// duration arithmetic: attempts is unbounded during a long outage, and
// 2^attempts overflows int64 long before the cap could catch it.
func ReconnectDelay(attempts int) time.Duration {
	if attempts >= 5 {
		return 30 * time.Second
	}
	return time.Duration(1000*math.Pow(2, float64(attempts))) * time.Millisecond
}
