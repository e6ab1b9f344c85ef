// Package launcher is the tray controller: it probes the port, starts the dev
// server when the port is free, shows the tray icon and serves the two menu
// actions until the user quits.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"dailystart-tray/pkg/config"
	"dailystart-tray/pkg/dashboard"
	"dailystart-tray/pkg/devserver"
	"dailystart-tray/pkg/icon"
	"dailystart-tray/pkg/notify"
	"dailystart-tray/pkg/probe"
	"dailystart-tray/pkg/tray"
)

// State represents the lifecycle state of the launcher
type State string

const (
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopped  State = "stopped"
)

// Server is a handle to a spawned dev server
type Server interface {
	PID() int
	Exited() bool
	Stop(ctx context.Context) error
}

// ServerLauncher spawns the dev server
type ServerLauncher interface {
	Start() (Server, error)
}

// PatternKiller terminates processes by command-line substring
type PatternKiller interface {
	KillMatching(ctx context.Context, pattern string) (int, error)
}

// Opener opens a URL in the browser
type Opener interface {
	Open(url string) error
}

// Notifier shows a desktop warning
type Notifier interface {
	Warn(message string) error
}

// Loop is the native tray event loop
type Loop interface {
	Run(cfg tray.Config)
	Quit()
	SetStatus(text string)
}

// ProbeFunc checks whether host:port is accepting connections
type ProbeFunc func(ctx context.Context, host string, port int) probe.Result

// Dependencies are the collaborators the launcher drives
type Dependencies struct {
	Probe    ProbeFunc
	Launcher ServerLauncher
	Killer   PatternKiller
	Opener   Opener
	Notifier Notifier
	Loop     Loop
}

// DefaultDependencies wires the real implementations
func DefaultDependencies(cfg config.Config, logger *slog.Logger) Dependencies {
	return Dependencies{
		Probe:    probe.Probe,
		Launcher: processLauncher{devserver.NewLauncher(cfg, logger)},
		Killer:   devserver.NewKiller(logger),
		Opener:   dashboard.NewBrowser(logger),
		Notifier: notify.NewDesktop(cfg.App.Name, cfg.NotificationsEnabled(), logger),
		Loop:     tray.Systray{},
	}
}

// processLauncher adapts devserver.Launcher to ServerLauncher
type processLauncher struct {
	l *devserver.Launcher
}

func (p processLauncher) Start() (Server, error) {
	proc, err := p.l.Start()
	if err != nil {
		return nil, err
	}
	return proc, nil
}

// App owns the dev server handle from spawn until quit
type App struct {
	config config.Config
	deps   Dependencies
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	server   Server
	quitOnce sync.Once
}

// New creates a launcher
func New(cfg config.Config, deps Dependencies, logger *slog.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config: cfg,
		deps:   deps,
		logger: logger.With("component", "launcher"),
		ctx:    ctx,
		cancel: cancel,
		state:  StateStarting,
	}
}

// State returns the current lifecycle state
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *App) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Run starts the server if needed and blocks on the tray loop. A spawn error
// is returned before the tray is shown. Once the tray is up, Run returns nil
// whatever happens during quit.
func (a *App) Run(ctx context.Context) error {
	status, err := a.startServer(ctx)
	if err != nil {
		return err
	}

	iconData, err := icon.Bytes()
	if err != nil {
		return err
	}

	a.setState(StateRunning)
	a.logger.Info("Tray icon starting", "app", a.config.App.Name, "url", a.config.Dashboard.URL)
	a.deps.Loop.Run(tray.Config{
		Controller: a,
		Logger:     a.logger,
		Title:      a.config.App.Name,
		Tooltip:    fmt.Sprintf("%s (%s)", a.config.App.Name, a.config.Dashboard.URL),
		Icon:       iconData,
		Status:     status,
		OnReady:    a.MonitorServer,
	})

	// The native loop can also end without a Quit selection
	a.quitOnce.Do(a.shutdown)
	a.logger.Info("Launcher stopped")
	return nil
}

// startServer probes the port and spawns the server only if it is free.
// It returns the initial status line.
func (a *App) startServer(ctx context.Context) (string, error) {
	srv := a.config.Server
	res := a.deps.Probe(ctx, srv.Host, srv.Port)

	if res.Busy() {
		// The OAuth redirect is registered for this exact port, so a second
		// instance on another port would break sign-in.
		a.logger.Warn("Port is busy, not starting the dev server; Google sign-in may fail",
			"address", res.Address)
		if err := a.deps.Notifier.Warn(fmt.Sprintf("Port %d is busy - Google Auth may fail.", srv.Port)); err != nil {
			a.logger.Warn("Failed to show notification", "error", err)
		}
		return fmt.Sprintf("Server already running on :%d", srv.Port), nil
	}
	if res.Unexpected() {
		a.logger.Warn("Port probe failed, assuming port is free", "address", res.Address, "error", res.Err)
	}

	server, err := a.deps.Launcher.Start()
	if err != nil {
		return "", fmt.Errorf("failed to launch dev server: %w", err)
	}

	a.mu.Lock()
	a.server = server
	a.mu.Unlock()
	return fmt.Sprintf("Starting server on :%d", srv.Port), nil
}

// OpenDashboard opens the dashboard URL. The server is not checked first.
func (a *App) OpenDashboard() {
	if err := a.deps.Opener.Open(a.config.Dashboard.URL); err != nil {
		a.logger.Warn("Failed to open dashboard", "url", a.config.Dashboard.URL, "error", err)
	}
}

// Quit stops the dev server and ends the tray loop. Failure to stop the
// server is logged and does not prevent the launcher from exiting.
func (a *App) Quit() {
	a.quitOnce.Do(a.shutdown)
	a.deps.Loop.Quit()
}

func (a *App) shutdown() {
	a.logger.Info("Shutting down")
	a.cancel()
	a.stopServer(context.Background())
	a.setState(StateStopped)
}

// stopServer signals the spawned process group. Without a handle (the server
// was already running at startup) or if that fails, it falls back to matching
// the server's command line.
func (a *App) stopServer(ctx context.Context) {
	a.mu.Lock()
	server := a.server
	a.mu.Unlock()

	if server != nil {
		err := server.Stop(ctx)
		if err == nil {
			return
		}
		a.logger.Warn("Failed to stop dev server by pid, falling back to pattern match",
			"pid", server.PID(),
			"error", err)
	}

	pattern := a.config.Server.KillPattern
	n, err := a.deps.Killer.KillMatching(ctx, pattern)
	if err != nil {
		a.logger.Error("Error stopping process", "pattern", pattern, "error", err)
		return
	}
	a.logger.Info("Pattern kill finished", "pattern", pattern, "terminated", n)
}
