// Package wsgobwas adapts a gobwas/ws websocket connection into a
// wirecall.Channel.
package wsgobwas

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Channel is a wirecall.Channel over a websocket connection. Each flushed
// write becomes one websocket text message; reads concatenate incoming
// frames into a single byte stream. A close frame or a closed connection
// surfaces as io.EOF.
type Channel struct {
	conn net.Conn
	r    *wsutil.Reader
	w    *wsutil.Writer
}

// Client wraps a connection from the client side of the handshake.
func Client(conn net.Conn) *Channel {
	return newChannel(conn, ws.StateClientSide)
}

// Server wraps a connection from the server side of the handshake.
func Server(conn net.Conn) *Channel {
	return newChannel(conn, ws.StateServerSide)
}

func newChannel(conn net.Conn, state ws.State) *Channel {
	return &Channel{
		conn: conn,
		r:    wsutil.NewReader(conn, state),
		w:    wsutil.NewWriter(conn, state, ws.OpText),
	}
}

// Dial connects to a websocket URL and returns the client-side channel
// around it.
func Dial(ctx context.Context, url string) (*Channel, error) {
	conn, _, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return Client(conn), nil
}

// Upgrader upgrades an HTTP request to a websocket and returns the
// server-side channel around it.
type Upgrader struct {
	Upgrader ws.HTTPUpgrader
}

func (u *Upgrader) Upgrade(r *http.Request, w http.ResponseWriter) (*Channel, error) {
	conn, _, _, err := u.Upgrader.Upgrade(r, w)
	if err != nil {
		return nil, err
	}
	return Server(conn), nil
}

func (c *Channel) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

// Flush completes the current websocket message.
func (c *Channel) Flush() error {
	return c.w.Flush()
}

func (c *Channel) Read(p []byte) (int, error) {
	for {
		n, err := c.r.Read(p)
		switch {
		case err == nil:
			return n, nil
		case err == io.EOF || err == wsutil.ErrNoFrameAdvance:
			// End of the current frame, or no frame yet: advance.
			if n > 0 {
				return n, nil
			}
			hdr, err := c.r.NextFrame()
			if err != nil {
				return 0, closedToEOF(err)
			}
			if hdr.OpCode == ws.OpClose {
				return 0, io.EOF
			}
		default:
			return n, closedToEOF(err)
		}
	}
}

// Close closes the underlying connection.
func (c *Channel) Close() error {
	return c.conn.Close()
}

// closedToEOF maps an orderly websocket closure to io.EOF so stream
// consumers see a clean end-of-stream.
func closedToEOF(err error) error {
	var closed wsutil.ClosedError
	if errors.As(err, &closed) {
		switch closed.Code {
		case ws.StatusNormalClosure, ws.StatusGoingAway:
			return io.EOF
		}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return err
}
