package main

import (
	"github.com/google/uuid"
)

const (
	connBufSize  = bufSize // 64 bytes, spec.md §3/§6
	maxConns     = 200     // spec.md §6
	greeting     = "OK:onkyocontrol v1.1\n"
	maxConnsMsg  = "ERROR:Max Connections Reached\n"
	invalidMsg   = "ERROR:Invalid Command\n"
	overflowNote = "buffer size exceeded"
)

// Connection owns one client socket and its line assembler (spec.md §3).
// Invariant: buf[0:writePos) holds at most one unterminated line in
// progress; everything from writePos to len(buf) is zero.
type Connection struct {
	ID       string
	Conn     duplexTransport
	buf      [connBufSize]byte
	writePos int
	closing  bool
}

// duplexTransport is the minimal contract Connection needs from a socket
// (spec.md §1: "a byte-oriented duplex transport"). A net.Conn has no Fd
// method of its own; accepted TCP and UNIX connections satisfy it through
// the netConn wrapper (fdutil.go), which supplies the raw fd.
type duplexTransport interface {
	Fd() int
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

func newConnection(c duplexTransport) *Connection {
	return &Connection{ID: uuid.New().String(), Conn: c}
}

// onReadable implements spec.md §4.6: read what's available, extract and
// dispatch every newline-terminated line, compact the remainder forward.
// It returns false when the connection should be destroyed (EOF, a failed
// write back to the peer, an explicit quit, or an overflow is NOT fatal —
// overflow only discards the pending line per spec.md §7).
func (c *Connection) onReadable(d *Daemon) bool {
	n, err := c.Conn.Read(c.buf[c.writePos:])
	if n == 0 || err != nil {
		return false
	}
	c.writePos += n

	for {
		nl := indexByte(c.buf[:c.writePos], '\n')
		if nl < 0 {
			break
		}
		line := string(c.buf[:nl])
		c.compact(nl + 1)

		if !c.dispatchLine(d, line) {
			return false
		}
		if c.closing {
			return false
		}
	}

	if c.writePos == connBufSize {
		d.logf("connection %s: %s", c.ID, overflowNote)
		c.reset()
	}
	return true
}

// dispatchLine runs one stripped input line through the translator for
// every registered receiver, per spec.md §4.6 step 2: one line may affect
// every receiver, the daemon is multi-receiver-capable.
func (c *Connection) dispatchLine(d *Daemon, line string) bool {
	line = trimCR(line)
	sawInvalid := false
	for _, r := range d.receivers {
		switch Translate(d, r, line) {
		case resultQuit:
			c.closing = true
		case resultInvalid:
			sawInvalid = true
		}
	}
	if sawInvalid {
		if d.metrics != nil {
			d.metrics.invalidCommands.Inc()
		}
		if !c.writeLine(invalidMsg) {
			return false
		}
	}
	return true
}

func (c *Connection) writeLine(s string) bool {
	return writeRetrying(c.Conn, []byte(s))
}

// compact moves the bytes from consumed onward down to offset 0 and
// zero-fills the remainder (spec.md §4.6 step 3).
func (c *Connection) compact(consumed int) {
	tail := c.writePos - consumed
	copy(c.buf[:tail], c.buf[consumed:c.writePos])
	for i := tail; i < c.writePos; i++ {
		c.buf[i] = 0
	}
	c.writePos = tail
}

func (c *Connection) reset() {
	for i := 0; i < c.writePos; i++ {
		c.buf[i] = 0
	}
	c.writePos = 0
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}
