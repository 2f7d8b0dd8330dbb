package main

import (
	"github.com/google/uuid"
)

// Power bitmask bits (spec.md §3).
const (
	zoneMain = 1 << iota
	zoneZone2
	zoneZone3
)

func zoneBit(zone int) uint8 {
	switch zone {
	case 1:
		return zoneMain
	case 2:
		return zoneZone2
	case 3:
		return zoneZone3
	}
	return 0
}

// serialTransport is the byte-oriented duplex transport contract spec.md
// §1 asks the core to consume without knowing how it was set up. The
// concrete implementation (serial_linux.go) wraps github.com/daedaluz/goserial.
type serialTransport interface {
	Fd() int
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// cmdQueueEntry is the immutable queue record of spec.md §3: a hash plus
// the literal code string to send. Stored by value in a slice (an
// arena-backed vector, per the redesign note in spec.md §9, rather than a
// hand-linked list) — the owning Receiver is the sole owner.
type cmdQueueEntry struct {
	hash uint64
	code string
}

// recvBufSize is the per-receiver serial read buffer capacity
// (statusparser.go's frame extractor): large enough to hold several
// queued-up "!1"-framed replies between reactor polls, the same way
// connBufSize bounds one client's unterminated line.
const recvBufSize = 256

// Receiver models one Onkyo A/V receiver owned for the life of the process
// (spec.md §3). It owns its serial transport and its pending-command
// queue; it is touched only by the reactor goroutine (reactor.go).
type Receiver struct {
	ID     string
	Device string
	Port   serialTransport

	power uint8

	cmdsSent     uint64
	msgsReceived uint64

	lastCmd Timestamp

	zone2Sleep      Timestamp
	zone3Sleep      Timestamp
	nextSleepUpdate Timestamp

	queue []cmdQueueEntry

	// readBuf accumulates bytes read from the serial link across reactor
	// polls until a complete "!1"..."\r"/"\n" frame has been assembled
	// (spec.md §4.12's "the daemon does its own line framing for replies").
	// readBuf[0:readPos) holds whatever has arrived but not yet been
	// consumed as a complete frame.
	readBuf [recvBufSize]byte
	readPos int
}

func newReceiver(device string, port serialTransport) *Receiver {
	return &Receiver{
		ID:     uuid.New().String(),
		Device: device,
		Port:   port,
	}
}

func (r *Receiver) powered(zone int) bool {
	return r.power&zoneBit(zone) != 0
}

func (r *Receiver) anyPowered() bool {
	return r.power != 0
}

func (r *Receiver) setPower(zone int, on bool) {
	bit := zoneBit(zone)
	if on {
		r.power |= bit
	} else {
		r.power &^= bit
		switch zone {
		case 2:
			r.zone2Sleep = zeroTimestamp
		case 3:
			r.zone3Sleep = zeroTimestamp
		}
	}
}

// isPowerCommand reports whether code belongs to the "power-command"
// family that may be sent even while the receiver's power bitmask is
// clear (spec.md §4.5 pop()).
func isPowerCommand(code string) bool {
	return containsAny(code, "PWR", "ZPW", "PW3")
}

// compact moves the bytes from consumed onward down to offset 0 and
// zero-fills the remainder, mirroring Connection.compact (connection.go).
func (r *Receiver) compact(consumed int) {
	tail := r.readPos - consumed
	copy(r.readBuf[:tail], r.readBuf[consumed:r.readPos])
	for i := tail; i < r.readPos; i++ {
		r.readBuf[i] = 0
	}
	r.readPos = tail
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if len(s) >= len(sub) {
			for i := 0; i+len(sub) <= len(s); i++ {
				if s[i:i+len(sub)] == sub {
					return true
				}
			}
		}
	}
	return false
}
