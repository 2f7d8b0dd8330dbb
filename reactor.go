package main

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// fdKind tags each entry in the poll set so dispatch (step 6 of
// spec.md §4.7) knows how to interpret a ready fd.
type fdKind int

const (
	fdSignal fdKind = iota
	fdReceiver
	fdListener
	fdConnection
)

type fdEntry struct {
	kind fdKind
	idx  int // index into the relevant Daemon slice
}

// Run drives the single-threaded cooperative reactor of spec.md §4.7
// until shutdown is requested (SIGINT) or an unrecoverable select(2)-ish
// failure occurs.
func (d *Daemon) Run() error {
	for !d.shuttingDown {
		if err := d.runOnce(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Daemon) runOnce() error {
	n := now()

	// Per-receiver sleep-timer expiry and countdown scheduling (spec.md
	// §4.7 step 3), before the poll set and timeout are assembled.
	var timeout Timestamp
	for _, r := range d.receivers {
		timeout = min(timeout, d.serviceSleepTimers(r, n))
	}

	var fds []unix.PollFd
	var entries []fdEntry

	fds = append(fds, unix.PollFd{Fd: int32(d.sigPipeReadFd()), Events: unix.POLLIN})
	entries = append(entries, fdEntry{kind: fdSignal})

	for i, r := range d.receivers {
		events := int16(unix.POLLIN)
		if len(r.queue) > 0 {
			if cs := canSend(r, n); cs.yes {
				events |= unix.POLLOUT
			} else {
				timeout = min(timeout, Timestamp{}.addDuration(cs.wait))
			}
		}
		fds = append(fds, unix.PollFd{Fd: int32(r.Port.Fd()), Events: events})
		entries = append(entries, fdEntry{kind: fdReceiver, idx: i})
	}

	for i, l := range d.listeners {
		fds = append(fds, unix.PollFd{Fd: int32(l.Fd()), Events: unix.POLLIN})
		entries = append(entries, fdEntry{kind: fdListener, idx: i})
	}

	conns := append([]*Connection(nil), d.connections...)
	for i, c := range conns {
		fds = append(fds, unix.PollFd{Fd: int32(c.Conn.Fd()), Events: unix.POLLIN})
		entries = append(entries, fdEntry{kind: fdConnection, idx: i})
	}

	timeoutMs := -1
	if !timeout.isZero() {
		ms := timeout.duration().Milliseconds()
		if ms < 0 {
			ms = 0
		}
		timeoutMs = int(ms)
	}

	_, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		if isRetryable(err) {
			return nil
		}
		d.shuttingDown = true
		return err
	}

	n = now()

	// Receiver reads before receiver writes (spec.md §5 ordering
	// guarantee (ii)): two passes over the poll results.
	for i, pf := range fds {
		if pf.Revents&unix.POLLIN == 0 {
			continue
		}
		e := entries[i]
		switch e.kind {
		case fdSignal:
			d.drainSignal()
		case fdReceiver:
			d.receiverReadable(d.receivers[e.idx])
		}
	}
	for i, pf := range fds {
		if pf.Revents&unix.POLLOUT == 0 {
			continue
		}
		e := entries[i]
		if e.kind == fdReceiver {
			r := d.receivers[e.idx]
			if len(r.queue) > 0 {
				sendOne(d, r)
			}
		}
	}
	for i, pf := range fds {
		if pf.Revents&unix.POLLIN == 0 {
			continue
		}
		e := entries[i]
		switch e.kind {
		case fdListener:
			d.listenerReadable(d.listeners[e.idx])
		case fdConnection:
			d.connectionReadable(conns[e.idx])
		}
	}

	// Per-receiver post-pass: advance countdown schedules that have come
	// due (spec.md §4.7 step 6 "Per-receiver post-pass").
	for _, r := range d.receivers {
		d.advanceSleepSchedule(r, now())
	}

	return nil
}

// serviceSleepTimers implements spec.md §4.7 step 3: synthesize a
// zone-power-off when a fake-sleep deadline has passed, and fold the
// remaining wait (deadline, or next countdown tick) into the timeout.
func (d *Daemon) serviceSleepTimers(r *Receiver, n Timestamp) Timestamp {
	var fold Timestamp
	fold = min(fold, d.checkZoneSleep(r, n, 2))
	fold = min(fold, d.checkZoneSleep(r, n, 3))
	if !r.nextSleepUpdate.isZero() {
		tick := diff(r.nextSleepUpdate, n)
		if !positive(tick) {
			tick = Timestamp{Usec: 1}
		}
		fold = min(fold, tick)
	}
	return fold
}

func (d *Daemon) checkZoneSleep(r *Receiver, n Timestamp, zone int) Timestamp {
	deadline := r.zone2Sleep
	if zone == 3 {
		deadline = r.zone3Sleep
	}
	if deadline.isZero() {
		return zeroTimestamp
	}
	remaining := diff(deadline, n)
	if !positive(remaining) {
		var line string
		if zone == 2 {
			line = "zone2power off"
			r.zone2Sleep = zeroTimestamp
		} else {
			line = "zone3power off"
			r.zone3Sleep = zeroTimestamp
		}
		Translate(d, r, line)
		d.broadcast(sleepZeroLine(zone))
		return zeroTimestamp
	}
	if r.nextSleepUpdate.isZero() {
		r.nextSleepUpdate = n.addDuration(60 * time.Second)
	}
	return remaining
}

func sleepZeroLine(zone int) string {
	if zone == 2 {
		return "OK:zone2sleep:0\n"
	}
	return "OK:zone3sleep:0\n"
}

// advanceSleepSchedule emits the 60-second countdown broadcast for each
// still-active zone sleep timer once nextSleepUpdate has come due, then
// advances it in 60s increments until it is back in the future
// (spec.md §4.7 "Per-receiver post-pass").
func (d *Daemon) advanceSleepSchedule(r *Receiver, n Timestamp) {
	if r.nextSleepUpdate.isZero() || positive(diff(r.nextSleepUpdate, n)) {
		return
	}
	if !r.zone2Sleep.isZero() {
		writeFakeSleepStatus(d, r, n, 2)
	}
	if !r.zone3Sleep.isZero() {
		writeFakeSleepStatus(d, r, n, 3)
	}
	for !positive(diff(r.nextSleepUpdate, n)) {
		r.nextSleepUpdate = r.nextSleepUpdate.addDuration(60 * time.Second)
	}
	if r.zone2Sleep.isZero() && r.zone3Sleep.isZero() {
		r.nextSleepUpdate = zeroTimestamp
	}
}

func (d *Daemon) receiverReadable(r *Receiver) {
	n, err := r.Port.Read(r.readBuf[r.readPos:])
	if err != nil && !isRetryable(err) {
		d.logf("receiver %s: read error: %v", r.ID, err)
		d.broadcast("ERROR:Receiver Error\n")
		return
	}
	if n == 0 {
		d.broadcast("ERROR:Receiver Error\n")
		return
	}
	r.readPos += n
	r.extractFrames(d)
}

func (d *Daemon) listenerReadable(l *Listener) {
	conn, addr, err := l.accept()
	if err != nil {
		if isRetryable(err) || err == syscall.EAGAIN {
			return
		}
		d.logf("accept on %s failed: %v", l.addr, err)
		return
	}
	d.logf("accepted connection from %s on %s", addr, l.addr)

	if tc, ok := conn.(interface {
		SetNoDelay(bool) error
		SetKeepAlive(bool) error
	}); ok {
		_ = tc.SetNoDelay(true)
		_ = tc.SetKeepAlive(true)
	}

	nc := wrapNetConn(conn)
	c := newConnection(nc)

	if len(d.connections) >= maxConns {
		writeRetrying(nc, []byte(maxConnsMsg))
		nc.Close()
		return
	}

	d.addConnection(c)
	if !writeRetrying(nc, []byte(greeting)) {
		d.dropConnection(c)
	}
}

func (d *Daemon) connectionReadable(c *Connection) {
	if !c.onReadable(d) {
		d.dropConnection(c)
	}
}
