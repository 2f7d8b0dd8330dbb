package main

import (
	"bytes"
	"fmt"
	"strconv"
)

// frameMarker is the ISCP start-of-frame marker every receiver reply
// carries after whatever leading noise the serial link delivered
// (spec.md §4.4, §6).
const frameMarker = "!1"

// extractFrames implements spec.md §4.12: canonical mode is off, so the
// daemon does its own line framing for replies via the "!1"/terminator
// search. r.readBuf accumulates bytes across reactor polls; this scans it
// for complete "!1"...("\r"|"\n") frames, dispatching each to Parse,
// discarding any leading noise before the marker, and leaving a partial
// trailing frame buffered for the next read — mirroring Connection's
// onReadable/compact pattern (connection.go) on the receiver side.
func (r *Receiver) extractFrames(d *Daemon) {
	for {
		idx := bytes.Index(r.readBuf[:r.readPos], []byte(frameMarker))
		if idx < 0 {
			if r.readPos == len(r.readBuf) {
				d.logf("receiver %s: no frame marker in a full read buffer, discarding", r.ID)
				r.readPos = 0
			}
			return
		}
		if idx > 0 {
			r.compact(idx)
		}
		end := frameTerminator(r.readBuf[:r.readPos], len(frameMarker))
		if end < 0 {
			if r.readPos == len(r.readBuf) {
				d.logf("receiver %s: frame never terminated within the read buffer, discarding", r.ID)
				r.readPos = 0
			}
			return
		}
		frame := append([]byte(nil), r.readBuf[:end+1]...)
		r.compact(end + 1)
		Parse(d, r, frame)
	}
}

// frameTerminator returns the index of the last byte of the "\r"/"\n"/"\r\n"
// run starting at the first terminator character at or after from, so the
// caller consumes the whole line ending in one shot instead of leaving a
// lone trailing '\n' behind to be mistaken for noise ahead of the next
// frame. Returns -1 if the frame has not terminated yet.
func frameTerminator(buf []byte, from int) int {
	for i := from; i < len(buf); i++ {
		if buf[i] == '\r' || buf[i] == '\n' {
			for i+1 < len(buf) && (buf[i+1] == '\r' || buf[i+1] == '\n') {
				i++
			}
			return i
		}
	}
	return -1
}

// Parse implements spec.md §4.4: locate "!1" in buf (which may contain
// leading noise, including NULs), then classify the payload that follows.
// buf is consumed up to the first NUL or end of slice, matching the
// "NUL-terminated before table lookup" requirement. Called once per
// complete frame already extracted by extractFrames.
func Parse(d *Daemon, r *Receiver, buf []byte) bool {
	idx := bytes.Index(buf, []byte(frameMarker))
	if idx < 0 {
		d.broadcast("ERROR:Receiver Error\n")
		return false
	}
	payload := buf[idx+len(frameMarker):]
	if nul := bytes.IndexByte(payload, 0); nul >= 0 {
		payload = payload[:nul]
	}
	payload = bytes.TrimRight(payload, "\r\n")

	r.msgsReceived++
	if d.metrics != nil {
		d.metrics.messagesReceived.WithLabelValues(r.ID).Inc()
	}

	s := string(payload)

	if event, ok := statusIndex[sdbmHash(s)]; ok {
		d.broadcast(event)
		return true
	}

	if pe, ok := powerIndex[sdbmHash(s)]; ok {
		r.setPower(pe.zone, pe.on)
		d.broadcast(pe.event)
		return true
	}

	if len(s) >= 3 {
		if parsed := parseSpecialCase(d, r, s); parsed {
			return true
		}
	}

	d.broadcast(fmt.Sprintf("OK:todo:%s\n", s))
	return true
}

// parseSpecialCase implements the numerically-coded families of spec.md
// §4.4 step 5 that are not enumerable in the static tables: volume,
// tune, preset, sleep, sw-level and avsync.
func parseSpecialCase(d *Daemon, r *Receiver, s string) bool {
	prefix, suffix := s[:3], s[3:]

	switch prefix {
	case "MVL", "ZVL", "VL3":
		v, err := strconv.ParseInt(suffix, 16, 32)
		if err != nil {
			return false
		}
		key := volumeKey(prefix)
		dbKey := dbVolumeKey(prefix)
		d.broadcast(fmt.Sprintf("OK:%s:%d\n", key, v))
		d.broadcast(fmt.Sprintf("OK:%s:%d\n", dbKey, v-82))
		return true

	case "TUN", "TUZ", "TU3":
		f, err := strconv.Atoi(suffix)
		if err != nil {
			return false
		}
		key := tuneKey(prefix)
		if f > 8000 {
			d.broadcast(fmt.Sprintf("OK:%s:%d.%d FM\n", key, f/100, (f/10)%10))
		} else {
			d.broadcast(fmt.Sprintf("OK:%s:%d AM\n", key, f))
		}
		return true

	case "PRS", "PRZ", "PR3":
		v, err := strconv.ParseInt(suffix, 16, 32)
		if err != nil {
			return false
		}
		d.broadcast(fmt.Sprintf("OK:%s:%d\n", presetKey(prefix), v))
		return true

	case "SLP":
		v, err := strconv.ParseInt(suffix, 16, 32)
		if err != nil {
			return false
		}
		d.broadcast(fmt.Sprintf("OK:sleep:%d\n", v))
		return true

	case "SWL":
		v, err := parseSignedHex(suffix)
		if err != nil {
			return false
		}
		d.broadcast(fmt.Sprintf("OK:swlevel:%+d\n", v))
		return true

	case "AVS":
		v, err := strconv.Atoi(suffix)
		if err != nil {
			return false
		}
		d.broadcast(fmt.Sprintf("OK:avsync:%d\n", v/10))
		return true
	}
	return false
}

func volumeKey(prefix string) string {
	switch prefix {
	case "ZVL":
		return "zone2volume"
	case "VL3":
		return "zone3volume"
	default:
		return "volume"
	}
}

func dbVolumeKey(prefix string) string {
	switch prefix {
	case "ZVL":
		return "zone2dbvolume"
	case "VL3":
		return "zone3dbvolume"
	default:
		return "dbvolume"
	}
}

func tuneKey(prefix string) string {
	switch prefix {
	case "TUZ":
		return "zone2tune"
	case "TU3":
		return "zone3tune"
	default:
		return "tune"
	}
}

func presetKey(prefix string) string {
	switch prefix {
	case "PRZ":
		return "zone2preset"
	case "PR3":
		return "zone3preset"
	default:
		return "mainpreset"
	}
}

// parseSignedHex parses the "+<hex>"/"-<hex>"/"00" encoding handleSWLevel
// produces, e.g. "+C" -> 12, "-F" -> -15, "00" -> 0.
func parseSignedHex(s string) (int, error) {
	if s == "00" {
		return 0, nil
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("swlevel payload too short: %q", s)
	}
	v, err := strconv.ParseInt(s[1:], 16, 32)
	if err != nil {
		return 0, err
	}
	if s[0] == '-' {
		return -int(v), nil
	}
	return int(v), nil
}
