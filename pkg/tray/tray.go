package tray

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"fyne.io/systray"
)

// Controller receives the two menu actions
type Controller interface {
	OpenDashboard()
	Quit()
}

// Config holds the system tray configuration
type Config struct {
	Controller Controller
	Logger     *slog.Logger
	Title      string
	Tooltip    string
	Icon       []byte
	Status     string // Initial text of the status line
	OnReady    func() // Called when tray is ready
}

// Action is a menu selection
type Action int

const (
	ActionOpenDashboard Action = iota
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionOpenDashboard:
		return "open_dashboard"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

var (
	globalConfig Config

	statusMu   sync.Mutex
	statusItem *systray.MenuItem
	statusText string
)

// Systray drives the native tray runtime
type Systray struct{}

// Run starts the system tray application (blocking call)
// This must be called from the main goroutine
func (Systray) Run(cfg Config) {
	Run(cfg)
}

// Quit stops the native loop, making Run return
func (Systray) Quit() {
	systray.Quit()
}

// SetStatus updates the status line
func (Systray) SetStatus(text string) {
	SetStatus(text)
}

// Run starts the system tray application (blocking call)
// This must be called from the main goroutine
func Run(cfg Config) {
	globalConfig = cfg
	statusMu.Lock()
	statusText = cfg.Status
	statusMu.Unlock()
	systray.Run(onReady, onExit)
}

// SetStatus updates the disabled status line at the top of the menu. Calls
// made before the tray is ready are shown once it is.
func SetStatus(text string) {
	statusMu.Lock()
	defer statusMu.Unlock()
	statusText = text
	if statusItem != nil {
		statusItem.SetTitle(text)
	}
}

// onReady is called when the system tray is ready
func onReady() {
	cfg := globalConfig

	if len(cfg.Icon) > 0 {
		systray.SetIcon(cfg.Icon)
	}
	systray.SetTitle(cfg.Title)
	systray.SetTooltip(cfg.Tooltip)

	cfg.Logger.Info("System tray initialized")

	statusMu.Lock()
	statusItem = systray.AddMenuItem(statusText, "")
	statusItem.Disable()
	statusMu.Unlock()

	systray.AddSeparator()
	mOpen := systray.AddMenuItem("Open Dashboard", "Open the dashboard in your browser")
	mQuit := systray.AddMenuItem("Quit", "Stop the server and exit")

	// Signal that tray is ready
	if cfg.OnReady != nil {
		go cfg.OnReady()
	}

	// Setup signal handling in the background
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		cfg.Logger.Info("Received shutdown signal", "signal", sig.String())
		dispatch(cfg, ActionQuit)
	}()

	// Handle menu item clicks in a goroutine
	go func() {
		for {
			select {
			case <-mOpen.ClickedCh:
				dispatch(cfg, ActionOpenDashboard)
			case <-mQuit.ClickedCh:
				dispatch(cfg, ActionQuit)
				return
			}
		}
	}()
}

// dispatch routes a menu action to the controller
func dispatch(cfg Config, action Action) {
	cfg.Logger.Info("Menu action selected", "action", action.String())

	switch action {
	case ActionOpenDashboard:
		cfg.Controller.OpenDashboard()
	case ActionQuit:
		cfg.Controller.Quit()
	}
}

// onExit is called when the system tray is exiting
func onExit() {
	globalConfig.Logger.Info("System tray exiting")

	statusMu.Lock()
	statusItem = nil
	statusMu.Unlock()
}
