package main

import (
	"errors"
	"syscall"
)

// isRetryable reports whether err is EINTR or EAGAIN/EWOULDBLOCK, the two
// transient conditions spec.md §7 requires the core to retry in place
// rather than treat as failure.
func isRetryable(err error) bool {
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)
}
