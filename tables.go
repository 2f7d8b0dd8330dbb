package main

import (
	"fmt"
	"strings"
)

// statusEntry is one row of the "static code tables" described in spec.md
// §3: a receiver reply payload (already hashed) mapped to the normalized
// event line the parser should broadcast verbatim.
type statusEntry struct {
	hash  uint64
	code  string
	event string
}

// powerStatusEntry additionally carries the zone/new-value pair the parser
// needs to mutate Receiver.power (spec.md §3, §4.4 step 4).
type powerStatusEntry struct {
	hash  uint64
	code  string
	zone  int
	on    bool
	event string
}

var statusIndex map[uint64]string // hash(code) -> event line, first match wins

var powerIndex map[uint64]powerStatusEntry

// nameCode pairs an uppercase wire token with its user-facing lowercase
// name, used for both the input and listening-mode tables: the translator
// looks up by uppercased user argument, the status parser looks up by wire
// code (spec.md §4.3 input/mode family, §4.4 step 2/3).
type nameCode struct {
	name string // lowercase, as it appears in broadcast lines
	code string // wire hex code
}

// Input selector table shared by SLI (main), SLZ (zone2) and SL3 (zone3).
// Values follow the commonly documented Onkyo/Integra ISCP SLI codes;
// exact hardware fidelity is not a tested property (spec.md §8 only pins
// down power/volume/tune round-trips), only internal consistency is.
var inputCodes = []nameCode{
	{"video1", "00"},
	{"video2", "01"},
	{"video3", "02"},
	{"video4", "03"},
	{"video5", "04"},
	{"video6", "05"},
	{"video7", "06"},
	{"dvd", "10"},
	{"bd", "10"},
	{"tape", "20"},
	{"tape2", "21"},
	{"phono", "22"},
	{"cd", "23"},
	{"fm", "24"},
	{"am", "25"},
	{"tuner", "26"},
	{"musicserver", "27"},
	{"iradio", "28"},
	{"usb", "29"},
	{"usb2", "2a"},
	{"net", "2b"},
	{"usbrear", "2c"},
	{"ipod", "2d"},
	{"airplay", "2d"},
	{"bluetooth", "2e"},
	{"multich", "30"},
	{"xm", "31"},
	{"sirius", "32"},
	{"dab", "33"},
	{"hdmi5", "55"},
	{"hdmi6", "56"},
	{"hdmi7", "57"},
}

// Listening-mode table shared by LMD (main only; zones do not carry a
// listening-mode family in this design). "neo6thx" / "pliigame" are called
// out in spec.md §9 as the source's one known collision bug: the spec
// mandates "86" for PLIIGAME, not the buggy "85" some revisions used.
var modeCodes = []nameCode{
	{"stereo", "00"},
	{"direct", "01"},
	{"surround", "02"},
	{"film", "03"},
	{"thx", "04"},
	{"action", "05"},
	{"musical", "06"},
	{"monomovie", "07"},
	{"orchestra", "08"},
	{"unplugged", "09"},
	{"studiomix", "0a"},
	{"tvlogic", "0b"},
	{"allchstereo", "0c"},
	{"thxcinema", "13"},
	{"thxmusic", "14"},
	{"thxgames", "15"},
	{"pliix", "80"},
	{"neural", "81"},
	{"pliimovie", "82"},
	{"pliimusic", "83"},
	{"neo6cinema", "84"},
	{"neo6thx", "85"},
	{"pliigame", "86"},
	{"straightdecode", "40"},
	{"dolbyvirtual", "50"},
}

func lookupCode(table []nameCode, name string) (string, bool) {
	for _, e := range table {
		if e.name == name {
			return e.code, true
		}
	}
	return "", false
}

// addStatus registers a fixed, non-power status reply -> event mapping.
func addStatus(code, event string) {
	e := statusEntry{hash: sdbmHash(code), code: code, event: event}
	if _, exists := statusIndex[e.hash]; !exists {
		statusIndex[e.hash] = e.event
	}
}

// addPower registers a fixed power-status reply -> (zone, on, event) entry.
func addPower(code string, zone int, on bool, event string) {
	e := powerStatusEntry{hash: sdbmHash(code), code: code, zone: zone, on: on, event: event}
	if _, exists := powerIndex[e.hash]; !exists {
		powerIndex[e.hash] = e
	}
}

// addZoneFamily registers the full input or mode table for one zone prefix
// under one broadcast key name, e.g. prefix "SLI" key "input" for main.
func addZoneFamily(prefix, key string, table []nameCode) {
	for _, e := range table {
		addStatus(prefix+strings.ToUpper(e.code), fmt.Sprintf("OK:%s:%s\n", key, e.name))
	}
}

func init() {
	statusIndex = make(map[uint64]string)
	powerIndex = make(map[uint64]powerStatusEntry)

	// Power status: PWR (main), ZPW (zone2), PW3 (zone3).
	addPower("PWR00", 1, false, "OK:power:off\n")
	addPower("PWR01", 1, true, "OK:power:on\n")
	addPower("ZPW00", 2, false, "OK:zone2power:off\n")
	addPower("ZPW01", 2, true, "OK:zone2power:on\n")
	addPower("PW300", 3, false, "OK:zone3power:off\n")
	addPower("PW301", 3, true, "OK:zone3power:on\n")

	// Mute: AMT (main), ZMT (zone2), MT3 (zone3).
	addStatus("AMT00", "OK:mute:off\n")
	addStatus("AMT01", "OK:mute:on\n")
	addStatus("ZMT00", "OK:zone2mute:off\n")
	addStatus("ZMT01", "OK:zone2mute:on\n")
	addStatus("MT300", "OK:zone3mute:off\n")
	addStatus("MT301", "OK:zone3mute:on\n")

	// Inputs, shared table across zones.
	addZoneFamily("SLI", "input", inputCodes)
	addZoneFamily("SLZ", "zone2input", inputCodes)
	addZoneFamily("SL3", "zone3input", inputCodes)

	// Listening mode, main zone only.
	addZoneFamily("LMD", "mode", modeCodes)

	// Memory lock/unlock (spec.md §4.3 memory family).
	addStatus("MEMLOCK", "OK:memory:locked\n")
	addStatus("MEMUNLK", "OK:memory:unlocked\n")

	// Miscellaneous receiver-reported, receiver-only status keys named in
	// spec.md §6's broadcast key enumeration. No user command sets these
	// directly; they only ever arrive as unsolicited receiver events.
	addStatus("DIF00", "OK:display:wide\n")
	addStatus("DIF01", "OK:display:ltr\n")
	addStatus("DIF02", "OK:display:channel\n")
	addStatus("DIM00", "OK:dimmer:bright\n")
	addStatus("DIM01", "OK:dimmer:dim\n")
	addStatus("DIM02", "OK:dimmer:dark\n")
	addStatus("DIM03", "OK:dimmer:off\n")
	addStatus("LTN00", "OK:latenight:off\n")
	addStatus("LTN01", "OK:latenight:low\n")
	addStatus("LTN02", "OK:latenight:high\n")
	addStatus("REQ00", "OK:re-eq:off\n")
	addStatus("REQ01", "OK:re-eq:on\n")
	addStatus("ADY00", "OK:audyssey:off\n")
	addStatus("ADY01", "OK:audyssey:on\n")
	addStatus("DEQ00", "OK:dynamiceq:off\n")
	addStatus("DEQ01", "OK:dynamiceq:on\n")
	addStatus("HDO00", "OK:hdmiout:no\n")
	addStatus("HDO01", "OK:hdmiout:out1\n")
	addStatus("HDO02", "OK:hdmiout:out2\n")
	addStatus("HDO03", "OK:hdmiout:both\n")
	addStatus("RES00", "OK:resolution:auto\n")
	addStatus("RES01", "OK:resolution:through\n")
	addStatus("RES06", "OK:resolution:1080p\n")
	addStatus("AUS00", "OK:audioselector:auto\n")
	addStatus("AUS01", "OK:audioselector:manual\n")
	addStatus("TGA00", "OK:triggera:off\n")
	addStatus("TGA01", "OK:triggera:on\n")
	addStatus("TGB00", "OK:triggerb:off\n")
	addStatus("TGB01", "OK:triggerb:on\n")
	addStatus("TGC00", "OK:triggerc:off\n")
	addStatus("TGC01", "OK:triggerc:on\n")

	registerCommandTable()
}

// Command descriptor table (spec.md §3/§4.3).

type translateResult int

const (
	resultOK translateResult = iota
	resultInvalid
	resultQuit
)

// cmdHandler dispatches one command argument against the owning receiver
// and returns the outcome. Handlers enqueue their own codes on the
// receiver's queue (most enqueue exactly one; "status" enqueues several,
// "fakesleep" enqueues none).
type cmdHandler func(d *Daemon, r *Receiver, prefix string, arg string) translateResult

type cmdDescriptor struct {
	hash    uint64
	name    string
	prefix  string
	handler cmdHandler
	isFake  bool
}

var commandTable []cmdDescriptor
var commandIndex map[uint64]*cmdDescriptor

func addCommand(name, prefix string, h cmdHandler, isFake bool) {
	d := cmdDescriptor{hash: sdbmHash(name), name: name, prefix: prefix, handler: h, isFake: isFake}
	commandTable = append(commandTable, d)
	commandIndex[d.hash] = &commandTable[len(commandTable)-1]
}

func registerCommandTable() {
	commandIndex = make(map[uint64]*cmdDescriptor)

	addCommand("power", "PWR", handleBoolean, false)
	addCommand("zone2power", "ZPW", handleBoolean, false)
	addCommand("zone3power", "PW3", handleBoolean, false)

	addCommand("mute", "AMT", handleBoolean, false)
	addCommand("zone2mute", "ZMT", handleBoolean, false)
	addCommand("zone3mute", "MT3", handleBoolean, false)

	addCommand("volume", "MVL", handleRangedVolume, false)
	addCommand("zone2volume", "ZVL", handleRangedVolume, false)
	addCommand("zone3volume", "VL3", handleRangedVolume, false)
	addCommand("dbvolume", "MVL", handleRangedDBVolume, false)

	addCommand("preset", "PRS", handleRangedPreset, false)
	addCommand("zone2preset", "PRZ", handleRangedPreset, false)
	addCommand("zone3preset", "PR3", handleRangedPreset, false)

	addCommand("avsync", "AVS", handleRangedAVSync, false)

	addCommand("swlevel", "SWL", handleSWLevel, false)

	addCommand("input", "SLI", handleInput, false)
	addCommand("zone2input", "SLZ", handleInput, false)
	addCommand("zone3input", "SL3", handleInput, false)

	addCommand("mode", "LMD", handleMode, false)

	addCommand("tune", "TUN", handleTune, false)
	addCommand("zone2tune", "TUZ", handleTune, false)
	addCommand("zone3tune", "TU3", handleTune, false)

	addCommand("sleep", "SLP", handleSleep, false)

	addCommand("memory", "MEM", handleMemory, false)

	addCommand("zone2sleep", "2", handleFakeSleep, true)
	addCommand("zone3sleep", "3", handleFakeSleep, true)

	addCommand("status", "", handleStatus, false)

	addCommand("raw", "", handleRaw, false)

	addCommand("quit", "", handleQuit, false)
}
