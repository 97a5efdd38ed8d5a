// Package channel provides wirecall.Channel adapters over plain byte
// streams. Websocket-backed channels live in the wsgorilla and wsgobwas
// subpackages.
package channel

import (
	"bufio"
	"io"
	"net"

	"github.com/wirecall/wirecall"
)

// Buffered adapts any io.ReadWriter into a wirecall.Channel with a buffered,
// flushable write side. Reads pass through unbuffered.
func Buffered(rw io.ReadWriter) wirecall.Channel {
	return &buffered{
		r: rw,
		w: bufio.NewWriter(rw),
	}
}

type buffered struct {
	r io.Reader
	w *bufio.Writer
}

func (b *buffered) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *buffered) Write(p []byte) (int, error) {
	return b.w.Write(p)
}

func (b *buffered) Flush() error {
	return b.w.Flush()
}

// Pipe returns a connected pair of in-process channels over net.Pipe.
// Useful for tests and for wiring a client and a server in one process.
// Writes block until the other side reads, so drive the two ends from
// separate goroutines.
func Pipe() (wirecall.Channel, wirecall.Channel) {
	c1, c2 := net.Pipe()
	return Buffered(c1), Buffered(c2)
}
