package main

// newStatusTestDaemon wires up a Daemon with one connection whose writes
// are captured, so parser tests can assert on the exact broadcast lines.
func newStatusTestDaemon() (*Daemon, *recordingTransport) {
	d := newTestDaemon()
	rt := &recordingTransport{}
	c := newConnection(rt)
	d.connections = append(d.connections, c)
	return d, rt
}

type recordingTransport struct {
	lines []string
}

func (rt *recordingTransport) Fd() int { return -1 }
func (rt *recordingTransport) Read(p []byte) (int, error) {
	return 0, nil
}
func (rt *recordingTransport) Write(p []byte) (int, error) {
	rt.lines = append(rt.lines, string(p))
	return len(p), nil
}
func (rt *recordingTransport) Close() error { return nil }
