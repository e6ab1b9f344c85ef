package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Candidate is a running process that may match the kill pattern
type Candidate interface {
	PID() int32
	Cmdline(ctx context.Context) (string, error)
	Terminate(ctx context.Context) error
}

// Killer terminates processes by command-line substring. It is the fallback
// for when the launcher holds no handle, e.g. the server was already running
// when the launcher started. Anything else whose command line contains the
// pattern is terminated too.
type Killer struct {
	logger *slog.Logger
	list   func(ctx context.Context) ([]Candidate, error)
	self   int32
}

// NewKiller creates a killer backed by the OS process list
func NewKiller(logger *slog.Logger) *Killer {
	return &Killer{
		logger: logger.With("component", "killer"),
		list:   listProcesses,
		self:   int32(os.Getpid()),
	}
}

// KillMatching terminates every process whose command line contains pattern
// and returns how many were signalled. No match is not an error.
func (k *Killer) KillMatching(ctx context.Context, pattern string) (int, error) {
	if pattern == "" {
		return 0, nil
	}

	procs, err := k.list(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list processes: %w", err)
	}

	killed := 0
	var errs []error
	for _, p := range procs {
		if p.PID() == k.self {
			continue
		}
		cmdline, err := p.Cmdline(ctx)
		if err != nil {
			// Exited meanwhile, or not ours to inspect
			continue
		}
		if !strings.Contains(cmdline, pattern) {
			continue
		}

		k.logger.Info("Terminating matching process", "pid", p.PID(), "cmdline", cmdline)
		if err := p.Terminate(ctx); err != nil {
			k.logger.Warn("Failed to terminate process", "pid", p.PID(), "error", err)
			errs = append(errs, fmt.Errorf("pid %d: %w", p.PID(), err))
			continue
		}
		killed++
	}

	if killed == 0 && len(errs) == 0 {
		k.logger.Debug("No process matched kill pattern", "pattern", pattern)
	}
	return killed, errors.Join(errs...)
}

type psProcess struct {
	p *process.Process
}

func (c psProcess) PID() int32 { return c.p.Pid }

func (c psProcess) Cmdline(ctx context.Context) (string, error) {
	return c.p.CmdlineWithContext(ctx)
}

func (c psProcess) Terminate(ctx context.Context) error {
	return c.p.TerminateWithContext(ctx)
}

func listProcesses(ctx context.Context) ([]Candidate, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(procs))
	for _, p := range procs {
		out = append(out, psProcess{p: p})
	}
	return out, nil
}
