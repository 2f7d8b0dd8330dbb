package main

import "time"

// commandWait is the pacing constant: 80ms minimum gap between successive
// serial writes to one receiver (spec.md §6 COMMAND_WAIT).
const commandWait = 80 * time.Millisecond

// enqueue appends code to r's queue, unless an entry with the same SDBM
// hash is already pending (spec.md §4.5: duplicate enqueue is a silent
// no-op — invariant: no two entries share a hash).
func enqueue(r *Receiver, code string) {
	h := sdbmHash(code)
	for _, e := range r.queue {
		if e.hash == h {
			return
		}
	}
	r.queue = append(r.queue, cmdQueueEntry{hash: h, code: code})
}

// popResult distinguishes "nothing to send" from "sent this code", since a
// power-gated pop may skip (and log) several entries before returning one.
type popResult struct {
	code string
	ok   bool
}

// pop removes and returns the first sendable entry from r's queue,
// dropping (and logging) any power-command-gated entry while the
// receiver's power bitmask is entirely clear (spec.md §4.5).
func pop(d *Daemon, r *Receiver) popResult {
	for len(r.queue) > 0 {
		e := r.queue[0]
		r.queue = r.queue[1:]
		if r.anyPowered() || isPowerCommand(e.code) {
			return popResult{code: e.code, ok: true}
		}
		d.logf("receiver %s: skipping %q, power off", r.ID, e.code)
	}
	return popResult{}
}

// canSendResult reports whether a receiver may send its next queued
// command right now, and if not, how long the caller should wait.
type canSendResult struct {
	yes  bool
	wait time.Duration
}

// canSend implements spec.md §4.5's pacing check. If the clock has gone
// backwards (now < lastCmd), it is treated as a fresh 80ms wait and
// lastCmd is reset to now, per spec.md §4.1/§4.5.
func canSend(r *Receiver, n Timestamp) canSendResult {
	if r.lastCmd.isZero() {
		return canSendResult{yes: true}
	}
	d := diff(n, r.lastCmd)
	if d.Sec < 0 {
		r.lastCmd = n
		return canSendResult{wait: commandWait}
	}
	elapsed := d.duration()
	if elapsed >= commandWait {
		return canSendResult{yes: true}
	}
	return canSendResult{wait: commandWait - elapsed}
}

// sendOne pops one code, frames it with the ISCP envelope "!1<code>\r\n",
// and writes it as a single byte sequence (spec.md §4.5 send_one). The
// caller (reactor.go) has already confirmed canSend and writability.
func sendOne(d *Daemon, r *Receiver) bool {
	res := pop(d, r)
	if d.metrics != nil {
		d.metrics.queueDepth.WithLabelValues(r.ID).Set(float64(len(r.queue)))
	}
	if !res.ok {
		return false
	}
	frame := []byte("!1" + res.code + "\r\n")
	if !writeRetrying(r.Port, frame) {
		d.logf("receiver %s: short write sending %q", r.ID, res.code)
		d.broadcast("ERROR:Receiver Error\n")
		return true
	}
	r.lastCmd = now()
	r.cmdsSent++
	if d.metrics != nil {
		d.metrics.commandsSent.WithLabelValues(r.ID).Inc()
	}
	d.logf("receiver %s: sent %q", r.ID, res.code)
	return true
}

// writeRetrying writes all of buf to w, retrying on EINTR/EAGAIN, and
// reports whether the full buffer was written (spec.md §4.5/§5: every
// non-blocking write is retried in place and completes because the
// reactor only calls it when the fd was reported writable).
func writeRetrying(w serialTransport, buf []byte) bool {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if n > 0 {
			buf = buf[n:]
		}
		if err != nil {
			if isRetryable(err) {
				continue
			}
			return false
		}
	}
	return true
}
