package main

import (
	"net"
)

// listenerKind distinguishes the two socket families spec.md §3 allows.
type listenerKind int

const (
	listenerTCP listenerKind = iota
	listenerUnix
)

// Listener is a single server-side socket descriptor (spec.md §3), owned
// exclusively by the reactor.
type Listener struct {
	kind listenerKind
	addr string // bind address or unix socket path, for logging/cleanup
	ln   net.Listener
}

func (l *Listener) Fd() int {
	return fdOf(l.ln)
}

// accept wraps net.Listener.Accept and returns its error unchanged; the
// caller (listenerReadable in reactor.go) treats EAGAIN/EINTR as a silent
// retry and any other error as the "log, continue" case for accept failures.
func (l *Listener) accept() (net.Conn, string, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, "", err
	}
	return c, peerAddrString(c), nil
}

func peerAddrString(c net.Conn) string {
	addr := c.RemoteAddr()
	if addr == nil {
		return "(unix socket)"
	}
	switch addr.Network() {
	case "unix":
		return "(unix socket)"
	default:
		return addr.String()
	}
}
