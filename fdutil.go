package main

import (
	"net"
	"syscall"
)

// rawFd extracts the underlying file descriptor from anything exposing
// SyscallConn, without taking ownership of it (no dup, no Close-on-GC
// surprises) — used only so the reactor can add the fd to its poll set;
// all actual reads/writes still go through the normal net.Conn methods.
func rawFd(sc syscall.Conn) (int, error) {
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, err
	}
	var fd int
	ctrlErr := raw.Control(func(f uintptr) {
		fd = int(f)
	})
	if ctrlErr != nil {
		return -1, ctrlErr
	}
	return fd, nil
}

func fdOf(v interface{}) int {
	sc, ok := v.(syscall.Conn)
	if !ok {
		return -1
	}
	fd, err := rawFd(sc)
	if err != nil {
		return -1
	}
	return fd
}

// netConn adapts a net.Conn (TCP or UNIX) to duplexTransport by caching
// its raw fd once at accept time.
type netConn struct {
	net.Conn
	fd int
}

func wrapNetConn(c net.Conn) *netConn {
	return &netConn{Conn: c, fd: fdOf(c)}
}

func (n *netConn) Fd() int { return n.fd }
