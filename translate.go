package main

import (
	"fmt"
	"strconv"
	"strings"
)

// bufSize is the per-connection line buffer capacity (spec.md §4.6/§6);
// the translator must reject any encoded code that would not fit the
// ISCP envelope once framed.
const bufSize = 64

// envelopeOverhead accounts for "!1" + code + "\r\n" against bufSize
// (spec.md §4.3: "output codes exceeding BUF_SIZE-minus-envelope").
const envelopeOverhead = len("!1") + len("\r\n")

// Translate implements spec.md §4.3: split the (already trimmed) line on
// its first space, look the command name up by SDBM hash, and dispatch to
// its handler family.
func Translate(d *Daemon, r *Receiver, line string) translateResult {
	name, arg := splitCommand(line)
	desc, ok := commandIndex[sdbmHash(name)]
	if !ok {
		return resultInvalid
	}
	return desc.handler(d, r, desc.prefix, arg)
}

func splitCommand(line string) (name, arg string) {
	if idx := strings.IndexByte(line, ' '); idx >= 0 {
		return line[:idx], line[idx+1:]
	}
	return line, ""
}

// standard recognizes the verbs common to every non-virtual command
// family (spec.md §4.3).
func standard(verb string) (code string, matched bool) {
	switch verb {
	case "", "status":
		return "QSTN", true
	case "up":
		return "UP", true
	case "down":
		return "DOWN", true
	}
	return "", false
}

func enqueueChecked(d *Daemon, r *Receiver, code string) translateResult {
	if len(code)+envelopeOverhead > bufSize {
		return resultInvalid
	}
	enqueue(r, code)
	if d.metrics != nil {
		d.metrics.queueDepth.WithLabelValues(r.ID).Set(float64(len(r.queue)))
	}
	return resultOK
}

// parseIntFull parses s as a base-10 integer, requiring the entire string
// to be consumed (spec.md §4.3: "reject any trailing non-digit").
func parseIntFull(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func handleBoolean(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	if code, ok := standard(arg); ok {
		return enqueueChecked(d, r, prefix+code)
	}
	switch arg {
	case "on":
		return enqueueChecked(d, r, prefix+"01")
	case "off":
		return enqueueChecked(d, r, prefix+"00")
	case "toggle":
		if prefix == "AMT" || prefix == "ZMT" || prefix == "MT3" {
			return enqueueChecked(d, r, prefix+"TG")
		}
	}
	return resultInvalid
}

func rangedHex2(d *Daemon, r *Receiver, prefix, arg string, lo, hi, offset int) translateResult {
	if code, ok := standard(arg); ok {
		return enqueueChecked(d, r, prefix+code)
	}
	n, ok := parseIntFull(arg)
	if !ok || n < lo || n > hi {
		return resultInvalid
	}
	return enqueueChecked(d, r, prefix+fmt.Sprintf("%02X", n+offset))
}

func handleRangedVolume(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	return rangedHex2(d, r, prefix, arg, 0, 100, 0)
}

func handleRangedDBVolume(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	return rangedHex2(d, r, prefix, arg, -82, 18, 82)
}

func handleRangedPreset(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	return rangedHex2(d, r, prefix, arg, 0, 40, 0)
}

func handleRangedAVSync(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	if code, ok := standard(arg); ok {
		return enqueueChecked(d, r, prefix+code)
	}
	n, ok := parseIntFull(arg)
	if !ok || n < 0 || n > 250 {
		return resultInvalid
	}
	return enqueueChecked(d, r, prefix+fmt.Sprintf("%03d", n))
}

func handleSWLevel(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	if code, ok := standard(arg); ok {
		return enqueueChecked(d, r, prefix+code)
	}
	n, ok := parseIntFull(arg)
	if !ok || n < -15 || n > 12 {
		return resultInvalid
	}
	var code string
	switch {
	case n == 0:
		code = "00"
	case n > 0:
		code = fmt.Sprintf("+%X", n)
	default:
		code = fmt.Sprintf("-%X", -n)
	}
	return enqueueChecked(d, r, prefix+code)
}

func handleInput(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	if code, ok := standard(arg); ok {
		return enqueueChecked(d, r, prefix+code)
	}
	upper := strings.ToUpper(arg)
	if prefix == "SLZ" || prefix == "SL3" {
		switch upper {
		case "OFF":
			return enqueueChecked(d, r, prefix+"7F")
		case "SOURCE":
			return enqueueChecked(d, r, prefix+"80")
		}
	}
	if code, ok := lookupCode(inputCodes, strings.ToLower(arg)); ok {
		return enqueueChecked(d, r, prefix+strings.ToUpper(code))
	}
	return resultInvalid
}

func handleMode(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	if code, ok := standard(arg); ok {
		return enqueueChecked(d, r, prefix+code)
	}
	if code, ok := lookupCode(modeCodes, strings.ToLower(arg)); ok {
		return enqueueChecked(d, r, prefix+strings.ToUpper(code))
	}
	return resultInvalid
}

func handleTune(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	if code, ok := standard(arg); ok {
		return enqueueChecked(d, r, prefix+code)
	}
	if idx := strings.IndexByte(arg, '.'); idx >= 0 {
		left, right := arg[:idx], arg[idx+1:]
		f, ok := parseIntFull(left)
		if !ok || len(right) != 1 || right[0] < '0' || right[0] > '9' {
			return resultInvalid
		}
		dd := int(right[0] - '0')
		val := f*10 + dd
		if val < 875 || val > 1079 {
			return resultInvalid
		}
		return enqueueChecked(d, r, prefix+fmt.Sprintf("%05d", f*100+dd*10))
	}
	n, ok := parseIntFull(arg)
	if !ok || n < 530 || n > 1710 {
		return resultInvalid
	}
	return enqueueChecked(d, r, prefix+fmt.Sprintf("%05d", n))
}

func handleSleep(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	if arg == "" || arg == "status" {
		return enqueueChecked(d, r, prefix+"QSTN")
	}
	if arg == "off" {
		return enqueueChecked(d, r, prefix+"OFF")
	}
	n, ok := parseIntFull(arg)
	if !ok || n < 0 || n > 90 {
		return resultInvalid
	}
	return enqueueChecked(d, r, prefix+fmt.Sprintf("%02X", n))
}

func handleMemory(d *Daemon, r *Receiver, prefix, arg string) translateResult {
	switch arg {
	case "lock":
		return enqueueChecked(d, r, prefix+"LOCK")
	case "unlock":
		return enqueueChecked(d, r, prefix+"UNLK")
	}
	return resultInvalid
}

// handleFakeSleep implements spec.md §4.3's fakesleep family: the virtual
// zone2/zone3 sleep timers the receiver itself does not support. The
// command's "prefix" field is repurposed (it is a fake command with no
// wire opcode) to carry the zone digit, '2' or '3'.
func handleFakeSleep(d *Daemon, r *Receiver, zoneDigit, arg string) translateResult {
	zone := int(zoneDigit[0] - '0')
	switch {
	case arg == "" || arg == "off":
		switch zone {
		case 2:
			r.zone2Sleep = zeroTimestamp
		case 3:
			r.zone3Sleep = zeroTimestamp
		}
	default:
		n, ok := parseIntFull(arg)
		if !ok || n < 0 {
			return resultInvalid
		}
		deadline := now().addSeconds(int64(n) * 60)
		switch zone {
		case 2:
			r.zone2Sleep = deadline
		case 3:
			r.zone3Sleep = deadline
		}
	}
	writeFakeSleepStatus(d, r, now(), zone)
	return resultOK
}

// handleStatus implements spec.md §4.3's status(zone) family: rather than
// enqueuing a single code it enqueues a fixed battery of QSTN queries for
// one zone. The zone is named by the argument ("zone2"/"zone3"), defaulting
// to main when absent.
func handleStatus(d *Daemon, r *Receiver, _ string, arg string) translateResult {
	zone := arg
	if zone == "" {
		zone = "main"
	}
	var prefixes []string
	switch zone {
	case "main":
		prefixes = []string{"PWR", "MVL", "AMT", "SLI", "LMD", "TUN"}
	case "zone2":
		prefixes = []string{"ZPW", "ZVL", "ZMT", "SLZ", "TUZ"}
	case "zone3":
		prefixes = []string{"PW3", "VL3", "MT3", "SL3", "TU3"}
	default:
		return resultInvalid
	}
	for _, p := range prefixes {
		if res := enqueueChecked(d, r, p+"QSTN"); res != resultOK {
			return res
		}
	}
	return resultOK
}

func handleRaw(d *Daemon, r *Receiver, _ string, arg string) translateResult {
	return enqueueChecked(d, r, arg)
}

func handleQuit(d *Daemon, r *Receiver, _ string, _ string) translateResult {
	return resultQuit
}
