package main

import "testing"

// feedReceiver appends data to r's read buffer as if the serial port had
// just returned it, then runs the frame extractor — the same two steps
// receiverReadable (reactor.go) performs on every POLLIN.
func feedReceiver(d *Daemon, r *Receiver, data []byte) {
	n := copy(r.readBuf[r.readPos:], data)
	r.readPos += n
	r.extractFrames(d)
}

func TestExtractFramesTwoFramesInOneRead(t *testing.T) {
	d, rt := newStatusTestDaemon()
	r := newTestReceiver()

	feedReceiver(d, r, []byte("!1PWR01\r\n!1MVL2A\r\n"))

	if !r.powered(1) {
		t.Error("receiver should be powered after PWR01")
	}
	if len(rt.lines) != 3 {
		t.Fatalf("expected 3 broadcast lines (power, volume, dbvolume), got %v", rt.lines)
	}
	if rt.lines[0] != "OK:power:on\n" {
		t.Errorf("first broadcast = %q, want OK:power:on", rt.lines[0])
	}
	if rt.lines[1] != "OK:volume:42\n" || rt.lines[2] != "OK:dbvolume:-40\n" {
		t.Errorf("volume broadcasts = %v", rt.lines[1:])
	}
	if r.readPos != 0 {
		t.Errorf("readPos should be 0 once both frames are consumed, got %d", r.readPos)
	}
}

func TestExtractFramesSplitAcrossReads(t *testing.T) {
	d, rt := newStatusTestDaemon()
	r := newTestReceiver()

	feedReceiver(d, r, []byte("!1PWR0"))
	if len(rt.lines) != 0 {
		t.Fatalf("a partial frame should not be parsed yet, got %v", rt.lines)
	}
	if r.readPos != len("!1PWR0") {
		t.Errorf("readPos should hold the partial frame, got %d", r.readPos)
	}

	feedReceiver(d, r, []byte("1\r\n"))
	if !r.powered(1) {
		t.Error("receiver should be powered once the frame completes")
	}
	if len(rt.lines) != 1 || rt.lines[0] != "OK:power:on\n" {
		t.Errorf("broadcast lines = %v, want [OK:power:on]", rt.lines)
	}
	if r.readPos != 0 {
		t.Errorf("readPos should be 0 after the completed frame is consumed, got %d", r.readPos)
	}
}

func TestExtractFramesLeadingNoiseDiscarded(t *testing.T) {
	d, rt := newStatusTestDaemon()
	r := newTestReceiver()

	feedReceiver(d, r, append([]byte{0, 0, 'x'}, []byte("!1PWR00\r\n")...))

	if r.powered(1) {
		t.Error("receiver should not be powered after PWR00")
	}
	if len(rt.lines) != 1 || rt.lines[0] != "OK:power:off\n" {
		t.Errorf("broadcast lines = %v", rt.lines)
	}
}

func TestExtractFramesNoiseThenPartialFrame(t *testing.T) {
	d, rt := newStatusTestDaemon()
	r := newTestReceiver()

	// Three reads: noise, a marker with no terminator yet, then the rest.
	feedReceiver(d, r, []byte{0, 0})
	feedReceiver(d, r, []byte("!1MVL"))
	feedReceiver(d, r, []byte("0A\r\n"))

	if len(rt.lines) != 2 {
		t.Fatalf("expected volume+dbvolume broadcasts, got %v", rt.lines)
	}
	if rt.lines[0] != "OK:volume:10\n" || rt.lines[1] != "OK:dbvolume:-72\n" {
		t.Errorf("broadcast lines = %v", rt.lines)
	}
}
