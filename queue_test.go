package main

import "testing"

func TestEnqueueDedup(t *testing.T) {
	r := newTestReceiver()
	enqueue(r, "MVL32")
	enqueue(r, "MVL32")
	if len(r.queue) != 1 {
		t.Errorf("duplicate enqueue should be a no-op, queue has %d entries", len(r.queue))
	}
	enqueue(r, "MVL33")
	if len(r.queue) != 2 {
		t.Errorf("distinct code should enqueue, queue has %d entries", len(r.queue))
	}
}

func TestPopSkipsWhilePoweredOff(t *testing.T) {
	d := newTestDaemon()
	r := newTestReceiver()
	enqueue(r, "MVL32")
	enqueue(r, "PWR01")

	res := pop(d, r)
	if !res.ok || res.code != "PWR01" {
		t.Errorf("pop should skip MVL32 and return PWR01 while off, got %+v", res)
	}
	if len(r.queue) != 0 {
		t.Errorf("queue should be drained, has %d entries left", len(r.queue))
	}
}

func TestPopAllowsAnyCommandWhenPowered(t *testing.T) {
	d := newTestDaemon()
	r := newTestReceiver()
	r.setPower(1, true)
	enqueue(r, "MVL32")

	res := pop(d, r)
	if !res.ok || res.code != "MVL32" {
		t.Errorf("pop should return MVL32 once powered, got %+v", res)
	}
}

func TestCanSendFirstCommandAlwaysReady(t *testing.T) {
	r := newTestReceiver()
	if cs := canSend(r, now()); !cs.yes {
		t.Error("first command should always be sendable")
	}
}

func TestCanSendPacing(t *testing.T) {
	r := newTestReceiver()
	r.lastCmd = Timestamp{Sec: 10, Usec: 0}
	soon := Timestamp{Sec: 10, Usec: 10000} // 10ms later
	cs := canSend(r, soon)
	if cs.yes {
		t.Error("command sent 10ms ago should still be paced")
	}
	if cs.wait.Milliseconds() != 70 {
		t.Errorf("wait = %v, want ~70ms", cs.wait)
	}

	later := Timestamp{Sec: 10, Usec: 100000} // 100ms later
	cs = canSend(r, later)
	if !cs.yes {
		t.Error("command sent 100ms ago should be sendable")
	}
}

func TestCanSendClockWentBackwards(t *testing.T) {
	r := newTestReceiver()
	r.lastCmd = Timestamp{Sec: 100, Usec: 0}
	past := Timestamp{Sec: 50, Usec: 0}
	cs := canSend(r, past)
	if cs.yes {
		t.Error("clock-backwards case should not be immediately sendable")
	}
	if cs.wait != commandWait {
		t.Errorf("clock-backwards wait = %v, want %v", cs.wait, commandWait)
	}
	if r.lastCmd != past {
		t.Errorf("lastCmd should reset to now on clock-backwards, got %+v", r.lastCmd)
	}
}

func TestSendOneFramesCode(t *testing.T) {
	d := newTestDaemon()
	r := newTestReceiver()
	enqueue(r, "PWR01")

	if !sendOne(d, r) {
		t.Fatal("sendOne should report success")
	}
	ft := r.Port.(*fakeTransport)
	if len(ft.written) != 1 {
		t.Fatalf("expected 1 write, got %d", len(ft.written))
	}
	if string(ft.written[0]) != "!1PWR01\r\n" {
		t.Errorf("framed write = %q, want %q", ft.written[0], "!1PWR01\r\n")
	}
	if r.cmdsSent != 1 {
		t.Errorf("cmdsSent = %d, want 1", r.cmdsSent)
	}
}
