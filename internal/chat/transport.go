package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is a live duplex channel to the gateway.
type Conn interface {
	// ReadFrame blocks until the next inbound frame or a read error.
	ReadFrame() (*InboundFrame, error)
	// WriteFrame sends a frame. Safe for concurrent use.
	WriteFrame(f *OutboundFrame) error
	// Close tears down the channel. Unblocks a pending ReadFrame.
	Close() error
}

// Dialer opens a Conn against a channel target URL.
type Dialer interface {
	Dial(ctx context.Context, target string) (Conn, error)
}

// WebsocketDialer is the production Dialer.
type WebsocketDialer struct{}

// Dial opens a websocket to the target.
func (WebsocketDialer) Dial(ctx context.Context, target string) (Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &wsConn{ws: ws}, nil
}

// wsConn adapts *websocket.Conn to the Conn interface. The gorilla connection
// allows only one concurrent writer, so writes are serialized here; the
// keepalive probe and user sends share the channel.
type wsConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) ReadFrame() (*InboundFrame, error) {
	var f InboundFrame
	if err := c.ws.ReadJSON(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *wsConn) WriteFrame(f *OutboundFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(f)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
