package main

import "testing"

func lastQueued(r *Receiver) string {
	if len(r.queue) == 0 {
		return ""
	}
	return r.queue[len(r.queue)-1].code
}

func TestTranslateVolumeBoundaries(t *testing.T) {
	cases := []struct {
		arg     string
		want    translateResult
		code    string
	}{
		{"0", resultOK, "MVL00"},
		{"100", resultOK, "MVL64"},
		{"101", resultInvalid, ""},
		{"-1", resultInvalid, ""},
	}
	for _, c := range cases {
		d, r := newTestDaemon(), newTestReceiver()
		got := Translate(d, r, "volume "+c.arg)
		if got != c.want {
			t.Errorf("volume %s: result=%v want=%v", c.arg, got, c.want)
		}
		if c.want == resultOK && lastQueued(r) != c.code {
			t.Errorf("volume %s: queued %q want %q", c.arg, lastQueued(r), c.code)
		}
	}
}

func TestTranslateSleepBoundaries(t *testing.T) {
	cases := []struct {
		arg  string
		want translateResult
	}{
		{"0", resultOK},
		{"90", resultOK},
		{"91", resultInvalid},
		{"off", resultOK},
		{"", resultOK},
	}
	for _, c := range cases {
		d, r := newTestDaemon(), newTestReceiver()
		got := Translate(d, r, "sleep "+c.arg)
		if got != c.want {
			t.Errorf("sleep %q: result=%v want=%v", c.arg, got, c.want)
		}
	}
}

func TestTranslateTuneFMBoundaries(t *testing.T) {
	cases := []struct {
		arg  string
		want translateResult
	}{
		{"87.5", resultOK},
		{"87.4", resultInvalid},
		{"107.9", resultOK},
		{"108.0", resultInvalid},
	}
	for _, c := range cases {
		d, r := newTestDaemon(), newTestReceiver()
		got := Translate(d, r, "tune "+c.arg)
		if got != c.want {
			t.Errorf("tune %s: result=%v want=%v", c.arg, got, c.want)
		}
	}
}

func TestTranslateTuneAMBoundaries(t *testing.T) {
	cases := []struct {
		arg  string
		want translateResult
	}{
		{"530", resultOK},
		{"529", resultInvalid},
		{"1710", resultOK},
		{"1711", resultInvalid},
	}
	for _, c := range cases {
		d, r := newTestDaemon(), newTestReceiver()
		got := Translate(d, r, "tune "+c.arg)
		if got != c.want {
			t.Errorf("tune %s: result=%v want=%v", c.arg, got, c.want)
		}
	}
}

func TestTranslateSWLevelEncoding(t *testing.T) {
	cases := []struct {
		arg  string
		want string
	}{
		{"0", "SWL00"},
		{"12", "SWL+C"},
		{"-15", "SWL-F"},
	}
	for _, c := range cases {
		d, r := newTestDaemon(), newTestReceiver()
		if got := Translate(d, r, "swlevel "+c.arg); got != resultOK {
			t.Fatalf("swlevel %s: unexpected result %v", c.arg, got)
		}
		if lastQueued(r) != c.want {
			t.Errorf("swlevel %s: queued %q want %q", c.arg, lastQueued(r), c.want)
		}
	}
	d, r := newTestDaemon(), newTestReceiver()
	if got := Translate(d, r, "swlevel 13"); got != resultInvalid {
		t.Errorf("swlevel 13 should be invalid, got %v", got)
	}
	if got := Translate(d, r, "swlevel -16"); got != resultInvalid {
		t.Errorf("swlevel -16 should be invalid, got %v", got)
	}
}

func TestTranslateBooleanFamily(t *testing.T) {
	d, r := newTestDaemon(), newTestReceiver()
	if got := Translate(d, r, "power on"); got != resultOK || lastQueued(r) != "PWR01" {
		t.Errorf("power on: result=%v queued=%q", got, lastQueued(r))
	}
	if got := Translate(d, r, "power off"); got != resultOK || lastQueued(r) != "PWR00" {
		t.Errorf("power off: result=%v queued=%q", got, lastQueued(r))
	}
	if got := Translate(d, r, "mute toggle"); got != resultOK || lastQueued(r) != "AMTTG" {
		t.Errorf("mute toggle: result=%v queued=%q", got, lastQueued(r))
	}
	if got := Translate(d, r, "power toggle"); got != resultInvalid {
		t.Errorf("power toggle should be invalid (PWR has no toggle), got %v", got)
	}
}

func TestTranslateUnknownCommand(t *testing.T) {
	d, r := newTestDaemon(), newTestReceiver()
	if got := Translate(d, r, "frobnicate 1"); got != resultInvalid {
		t.Errorf("unknown command should be invalid, got %v", got)
	}
}

func TestTranslateQuit(t *testing.T) {
	d, r := newTestDaemon(), newTestReceiver()
	if got := Translate(d, r, "quit"); got != resultQuit {
		t.Errorf("quit should return resultQuit, got %v", got)
	}
}

func TestTranslateInputLookup(t *testing.T) {
	d, r := newTestDaemon(), newTestReceiver()
	if got := Translate(d, r, "input cd"); got != resultOK || lastQueued(r) != "SLI23" {
		t.Errorf("input cd: result=%v queued=%q", got, lastQueued(r))
	}
	if got := Translate(d, r, "input nonexistent"); got != resultInvalid {
		t.Errorf("input nonexistent should be invalid, got %v", got)
	}
}

func TestTranslateModePliigame(t *testing.T) {
	d, r := newTestDaemon(), newTestReceiver()
	if got := Translate(d, r, "mode pliigame"); got != resultOK || lastQueued(r) != "LMD86" {
		t.Errorf("mode pliigame: result=%v queued=%q, want LMD86", got, lastQueued(r))
	}
}

func TestTranslateFakeSleepZones(t *testing.T) {
	d, r := newTestDaemon(), newTestReceiver()
	if got := Translate(d, r, "zone2sleep 5"); got != resultOK {
		t.Fatalf("zone2sleep 5: result=%v", got)
	}
	if r.zone2Sleep.isZero() {
		t.Error("zone2Sleep deadline should be set")
	}
	if got := Translate(d, r, "zone2sleep off"); got != resultOK {
		t.Fatalf("zone2sleep off: result=%v", got)
	}
	if !r.zone2Sleep.isZero() {
		t.Error("zone2Sleep deadline should be cleared")
	}
}

func TestTranslateStatusEnqueuesZoneBattery(t *testing.T) {
	d, r := newTestDaemon(), newTestReceiver()
	if got := Translate(d, r, "status"); got != resultOK {
		t.Fatalf("status: result=%v", got)
	}
	if len(r.queue) != 6 {
		t.Errorf("status (main) should enqueue 6 queries, got %d", len(r.queue))
	}
}

func TestTranslateOversizedRawRejected(t *testing.T) {
	d, r := newTestDaemon(), newTestReceiver()
	big := make([]byte, bufSize)
	for i := range big {
		big[i] = 'A'
	}
	if got := Translate(d, r, "raw "+string(big)); got != resultInvalid {
		t.Errorf("oversized raw command should be rejected, got %v", got)
	}
}
