package main

import "log"

// fakeTransport is an in-memory stand-in for a serial port or socket,
// shared by the translator, queue and connection tests so none of them
// need a real fd to exercise reads/writes/framing against.
type fakeTransport struct {
	written [][]byte
	toRead  []byte
	closed  bool
}

func (f *fakeTransport) Fd() int { return -1 }

func (f *fakeTransport) Read(p []byte) (int, error) {
	if len(f.toRead) == 0 {
		return 0, nil
	}
	n := copy(p, f.toRead)
	f.toRead = f.toRead[n:]
	return n, nil
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	f.written = append(f.written, cp)
	return len(p), nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func newTestDaemon() *Daemon {
	return &Daemon{logger: log.New(nullWriter{}, "", 0)}
}

func newTestReceiver() *Receiver {
	return &Receiver{Device: "/dev/test", Port: &fakeTransport{}}
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
