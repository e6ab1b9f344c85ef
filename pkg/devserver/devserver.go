// Package devserver starts the development web server as a detached child
// process and stops it again when the launcher quits.
package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dailystart-tray/pkg/config"
)

// Launcher spawns the dev server command described by the configuration
type Launcher struct {
	config config.Config
	logger *slog.Logger
	spawn  func(cmd *exec.Cmd) error
}

// NewLauncher creates a launcher that starts real processes
func NewLauncher(cfg config.Config, logger *slog.Logger) *Launcher {
	return &Launcher{
		config: cfg,
		logger: logger.With("component", "devserver"),
		spawn:  func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// CommandLine returns the human-readable invocation, e.g. "npm run dev"
func (l *Launcher) CommandLine() string {
	return strings.Join(append([]string{l.config.Server.Command}, l.config.Server.Args...), " ")
}

// Start spawns the dev server in the application root with stdout and stderr
// appended to the log file, in a process group of its own. It does not wait
// for the server to come up and never restarts it.
func (l *Launcher) Start() (*Process, error) {
	srv := l.config.Server

	if err := os.MkdirAll(filepath.Dir(srv.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(srv.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open server log: %w", err)
	}
	// The child inherits its own descriptor; ours is only needed until spawn.
	defer logFile.Close()

	fmt.Fprintf(logFile, "--- %s launcher starting %s at %s ---\n",
		l.config.App.Name, l.CommandLine(), time.Now().Format(time.RFC3339))

	cmd := exec.Command(srv.Command, srv.Args...)
	cmd.Dir = l.config.App.Root
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	setProcessGroup(cmd)

	l.logger.Debug("Spawning dev server",
		"command", l.CommandLine(),
		"dir", cmd.Dir,
		"log_file", srv.LogFile)

	if err := l.spawn(cmd); err != nil {
		return nil, fmt.Errorf("failed to start %q in %s: %w", l.CommandLine(), cmd.Dir, err)
	}

	p := newProcess(cmd, time.Duration(srv.StopTimeoutSeconds)*time.Second, l.logger)
	l.logger.Info("Dev server started",
		"pid", p.PID(),
		"command", l.CommandLine(),
		"log_file", srv.LogFile)
	return p, nil
}

// Process is the handle to a spawned dev server
type Process struct {
	cmd         *exec.Cmd
	stopTimeout time.Duration
	logger      *slog.Logger

	done     chan struct{}
	exitErr  error
	stopOnce sync.Once
	stopErr  error
}

func newProcess(cmd *exec.Cmd, stopTimeout time.Duration, logger *slog.Logger) *Process {
	p := &Process{
		cmd:         cmd,
		stopTimeout: stopTimeout,
		logger:      logger,
		done:        make(chan struct{}),
	}
	// Reap the child so it never lingers as a zombie.
	go func() {
		p.exitErr = cmd.Wait()
		close(p.done)
	}()
	return p
}

// PID returns the process id, or 0 if the process never started
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Done is closed once the process has exited
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its exit error
func (p *Process) Wait() error {
	<-p.done
	return p.exitErr
}

// Exited reports whether the process has already exited
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Stop terminates the process group: a polite signal first, then a hard kill
// once the stop timeout elapses or ctx is cancelled. Safe to call repeatedly.
func (p *Process) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.stopErr = p.stop(ctx)
	})
	return p.stopErr
}

func (p *Process) stop(ctx context.Context) error {
	pid := p.PID()
	if pid == 0 || p.Exited() {
		p.logger.Debug("Dev server already exited", "pid", pid)
		return nil
	}

	p.logger.Info("Stopping dev server", "pid", pid)
	if err := terminateGroup(pid); err != nil {
		if p.Exited() {
			return nil
		}
		return fmt.Errorf("failed to signal dev server (pid %d): %w", pid, err)
	}

	timer := time.NewTimer(p.stopTimeout)
	defer timer.Stop()

	select {
	case <-p.done:
		p.logger.Info("Dev server stopped", "pid", pid)
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	p.logger.Warn("Dev server did not exit in time, killing process group",
		"pid", pid,
		"timeout", p.stopTimeout)
	if err := killGroup(pid); err != nil && !p.Exited() {
		return fmt.Errorf("failed to kill dev server (pid %d): %w", pid, err)
	}
	return nil
}
