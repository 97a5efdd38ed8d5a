// Package wsgorilla adapts a Gorilla websocket connection into a
// wirecall.Channel.
package wsgorilla

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Channel is a wirecall.Channel over a websocket connection. Each flushed
// write becomes one websocket text message; reads concatenate incoming
// messages into a single byte stream. A normal closure surfaces as io.EOF,
// so stream consumers observe a clean end-of-stream.
type Channel struct {
	conn *websocket.Conn
	w    io.WriteCloser
	r    io.Reader
}

// New wraps an established websocket connection.
func New(conn *websocket.Conn) *Channel {
	return &Channel{conn: conn}
}

// Dial connects to a websocket URL and returns the channel around it.
func Dial(ctx context.Context, url string) (*Channel, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return New(conn), nil
}

var upgrader = websocket.Upgrader{}

// Upgrade upgrades an incoming HTTP request to a websocket and returns the
// channel around it.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Channel, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

func (c *Channel) Write(p []byte) (int, error) {
	if c.w == nil {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return 0, err
		}
		c.w = w
	}
	return c.w.Write(p)
}

// Flush completes the current websocket message. Flushing with nothing
// written is a no-op.
func (c *Channel) Flush() error {
	if c.w == nil {
		return nil
	}
	err := c.w.Close()
	c.w = nil
	return err
}

func (c *Channel) Read(p []byte) (int, error) {
	for {
		if c.r == nil {
			_, r, err := c.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			c.r = r
		}
		n, err := c.r.Read(p)
		if err == io.EOF {
			// End of this message; roll over to the next one.
			c.r = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

// Close sends a close frame and closes the underlying connection.
func (c *Channel) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
