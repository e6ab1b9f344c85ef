package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"dailystart-tray/pkg/config"
)

// testLogger creates a logger for tests (discards output)
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Defaults(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to build config: %v", err)
	}
	return cfg
}

// spyLauncher records every command instead of starting it
func spyLauncher(cfg config.Config, run func(cmd *exec.Cmd) error) (*Launcher, *[]*exec.Cmd) {
	var spawned []*exec.Cmd
	l := NewLauncher(cfg, testLogger())
	l.spawn = func(cmd *exec.Cmd) error {
		spawned = append(spawned, cmd)
		if run != nil {
			return run(cmd)
		}
		return nil
	}
	return l, &spawned
}

func TestLauncherStart_SpawnsOnceInAppRoot(t *testing.T) {
	cfg := testConfig(t)
	l, spawned := spyLauncher(cfg, nil)

	if _, err := l.Start(); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}

	if len(*spawned) != 1 {
		t.Fatalf("Expected exactly one spawn, got %d", len(*spawned))
	}
	cmd := (*spawned)[0]
	if cmd.Dir != cfg.App.Root {
		t.Errorf("Expected working directory %s, got %s", cfg.App.Root, cmd.Dir)
	}
	if !reflect.DeepEqual(cmd.Args, []string{"npm", "run", "dev"}) {
		t.Errorf("Expected args [npm run dev], got %v", cmd.Args)
	}
	if cmd.Stdout == nil || cmd.Stdout != cmd.Stderr {
		t.Error("Expected stdout and stderr to share the log file")
	}
	if cmd.SysProcAttr == nil {
		t.Error("Expected the child to get its own process group")
	}
}

func TestLauncherStart_AppendsToLog(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.Server.LogFile, []byte("previous session\n"), 0644); err != nil {
		t.Fatalf("Failed to seed log: %v", err)
	}

	run := 0
	l, _ := spyLauncher(cfg, func(cmd *exec.Cmd) error {
		run++
		_, err := fmt.Fprintf(cmd.Stdout, "server output %d\n", run)
		return err
	})

	for i := 0; i < 2; i++ {
		if _, err := l.Start(); err != nil {
			t.Fatalf("Start %d failed: %v", i+1, err)
		}
	}

	data, err := os.ReadFile(cfg.Server.LogFile)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	log := string(data)

	if !strings.HasPrefix(log, "previous session\n") {
		t.Errorf("Log was truncated: %q", log)
	}
	for _, want := range []string{"server output 1", "server output 2"} {
		if !strings.Contains(log, want) {
			t.Errorf("Expected %q in log, got %q", want, log)
		}
	}
	if n := strings.Count(log, "launcher starting npm run dev"); n != 2 {
		t.Errorf("Expected 2 session headers, got %d", n)
	}
	if strings.Index(log, "server output 1") > strings.Index(log, "server output 2") {
		t.Error("Expected runs to be appended in order")
	}
}

func TestLauncherStart_SpawnError(t *testing.T) {
	cfg := testConfig(t)
	spawnErr := errors.New("executable file not found in $PATH")
	l, _ := spyLauncher(cfg, func(cmd *exec.Cmd) error { return spawnErr })

	p, err := l.Start()
	if err == nil {
		t.Fatal("Expected spawn error, got nil")
	}
	if !errors.Is(err, spawnErr) {
		t.Errorf("Expected wrapped spawn error, got %v", err)
	}
	if p != nil {
		t.Error("Expected no process handle on failure")
	}
}

func TestLauncherStart_UnwritableLog(t *testing.T) {
	cfg := testConfig(t)
	// A directory where the log file should be
	if err := os.Mkdir(cfg.Server.LogFile, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	l, spawned := spyLauncher(cfg, nil)

	if _, err := l.Start(); err == nil {
		t.Fatal("Expected error when the log cannot be opened")
	}
	if len(*spawned) != 0 {
		t.Error("Expected no spawn when the log cannot be opened")
	}
}

func TestLauncherCommandLine(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Command = "pnpm"
	cfg.Server.Args = []string{"dev", "--port", "4000"}

	l := NewLauncher(cfg, testLogger())
	if got := l.CommandLine(); got != "pnpm dev --port 4000" {
		t.Errorf("Expected 'pnpm dev --port 4000', got '%s'", got)
	}
}

func TestProcessStop_NeverStarted(t *testing.T) {
	cfg := testConfig(t)
	l, _ := spyLauncher(cfg, nil)

	p, err := l.Start()
	if err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if p.PID() != 0 {
		t.Errorf("Expected pid 0 for a spied spawn, got %d", p.PID())
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Expected nil stopping a process that never ran, got %v", err)
	}
	// Idempotent
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Expected second stop to be nil, got %v", err)
	}
}
