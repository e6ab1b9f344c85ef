// Package probe checks whether the dev server port already has a listener.
package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
)

// Status is the outcome of a port probe
type Status string

const (
	StatusFree Status = "free"
	StatusBusy Status = "busy"
)

// Result carries the probe status and, when the port was judged free because
// the dial failed in an unexpected way, the error behind that judgement.
type Result struct {
	Address string
	Status  Status
	Err     error
}

// Busy reports whether something is already accepting connections
func (r Result) Busy() bool {
	return r.Status == StatusBusy
}

// Unexpected reports whether the dial failed for a reason other than
// "connection refused". Such results are still treated as free.
func (r Result) Unexpected() bool {
	return r.Err != nil && !errors.Is(r.Err, syscall.ECONNREFUSED)
}

// Address formats a dial address for host and port
func Address(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Probe attempts a single TCP connection to host:port. There is no retry and
// no timeout beyond ctx and the OS default.
func Probe(ctx context.Context, host string, port int) Result {
	addr := Address(host, port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{Address: addr, Status: StatusFree, Err: err}
	}
	conn.Close()
	return Result{Address: addr, Status: StatusBusy}
}
