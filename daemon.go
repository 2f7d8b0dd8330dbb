package main

import (
	"log"
	"os"
)

// Daemon is the single aggregate the reactor threads through every
// operation (spec.md §9 "Global mutable state" redesign note): it
// exclusively owns the receivers, listeners and connections, replacing
// the teacher-style file-scope statics with one constructed value.
type Daemon struct {
	receivers   []*Receiver
	listeners   []*Listener
	connections []*Connection

	logger  *log.Logger
	metrics *Metrics

	sigPipeRead  *os.File
	sigPipeWrite *os.File

	shuttingDown bool
}

func newDaemon(logger *log.Logger, metrics *Metrics) *Daemon {
	return &Daemon{
		logger:  logger,
		metrics: metrics,
	}
}

func (d *Daemon) logf(format string, args ...interface{}) {
	d.logger.Printf(format, args...)
}

func (d *Daemon) addConnection(c *Connection) {
	d.connections = append(d.connections, c)
	if d.metrics != nil {
		d.metrics.connections.Set(float64(len(d.connections)))
	}
}

// dropConnection removes c from the live connection list and closes its
// socket. Later connections shift down one slot; their buffers are
// untouched (spec.md §8 invariant 6). The reactor dispatches from its own
// per-iteration copy of the list, so a drop does not shift its indices.
func (d *Daemon) dropConnection(c *Connection) {
	for i, other := range d.connections {
		if other == c {
			d.connections = append(d.connections[:i], d.connections[i+1:]...)
			break
		}
	}
	c.Conn.Close()
	if d.metrics != nil {
		d.metrics.connections.Set(float64(len(d.connections)))
	}
}

// statusDump renders the SIGUSR1 human status dump (spec.md §4.7/§6).
func (d *Daemon) statusDump() {
	d.logf("status dump: %d receiver(s), %d listener(s), %d connection(s)",
		len(d.receivers), len(d.listeners), len(d.connections))
	for _, r := range d.receivers {
		d.logf("  receiver %s (%s): power=%03b queue=%d cmds_sent=%d msgs_received=%d",
			r.ID, r.Device, r.power, len(r.queue), r.cmdsSent, r.msgsReceived)
	}
	for _, l := range d.listeners {
		d.logf("  listener: %s", l.addr)
	}
	real, fake := 0, 0
	for _, c := range commandTable {
		if c.isFake {
			fake++
		} else {
			real++
		}
	}
	d.logf("  %d wire command(s), %d virtual command(s) registered", real, fake)
}
