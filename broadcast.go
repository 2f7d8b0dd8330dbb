package main

import (
	"fmt"
	"math"
)

// broadcast implements spec.md §4.8: write line to every live connection,
// dropping any that fail; also echo it to stdout prefixed "response: ",
// matching the teacher's (websocket.go) pattern of mirroring fanned-out
// state to the process's own output for operator visibility.
func (d *Daemon) broadcast(line string) {
	fmt.Print("response: " + line)
	if d.metrics != nil {
		d.metrics.broadcasts.Inc()
	}

	dead := d.connections[:0:0]
	for _, c := range d.connections {
		if !writeRetrying(c.Conn, []byte(line)) {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		d.dropConnection(c)
	}
}

// writeFakeSleepStatus implements spec.md §4.8: broadcast the remaining
// whole minutes on zone 2 or 3's virtual sleep timer.
func writeFakeSleepStatus(d *Daemon, r *Receiver, n Timestamp, zone int) {
	var deadline Timestamp
	switch zone {
	case 2:
		deadline = r.zone2Sleep
	case 3:
		deadline = r.zone3Sleep
	default:
		return
	}

	mins := 0
	if deadline.Sec != 0 || deadline.Usec != 0 {
		remaining := diff(deadline, n)
		if positive(remaining) {
			secs := float64(remaining.Sec) + float64(remaining.Usec)/1e6
			mins = int(math.Ceil(secs / 60))
		}
	}
	d.broadcast(fmt.Sprintf("OK:zone%dsleep:%d\n", zone, mins))
}
