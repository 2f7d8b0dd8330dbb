package main

import (
	"fmt"

	serial "github.com/daedaluz/goserial"
)

// openReceiverPort opens device in raw mode at 9600-8N1, no parity, no
// flow control, matching spec.md §6's wire requirements. This is the
// concrete fulfillment of the "terminal/serial port mode setup" external
// collaborator spec.md §1 explicitly places out of scope for the core —
// the setup itself lives here, behind the serialTransport contract the
// rest of the daemon consumes.
func openReceiverPort(device string) (*serial.Port, error) {
	port, err := serial.Open(device, serial.NewOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	if err := port.MakeRaw(); err != nil {
		port.Close()
		return nil, fmt.Errorf("make raw %s: %w", device, err)
	}
	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("get attrs %s: %w", device, err)
	}
	attrs.Cflag &= ^(serial.CSIZE | serial.PARENB | serial.CSTOPB)
	attrs.Cflag |= serial.CS8 | serial.CLOCAL | serial.CREAD
	attrs.SetSpeed(serial.B9600)
	if err := port.SetAttr(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("set attrs %s: %w", device, err)
	}
	return port, nil
}
