package launcher

import (
	"fmt"
	"path/filepath"
	"time"
)

// MonitorServer refreshes the tray status line until the launcher quits
func (a *App) MonitorServer() {
	if a.config.Monitoring.StatusIntervalSeconds <= 0 {
		return
	}
	interval := time.Duration(a.config.Monitoring.StatusIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Debug("Started status monitoring", "interval", interval)
	a.refreshStatus()

	for {
		select {
		case <-a.ctx.Done():
			a.logger.Debug("Stopping status monitoring due to shutdown")
			return
		case <-ticker.C:
			a.refreshStatus()
		}
	}
}

func (a *App) refreshStatus() {
	a.deps.Loop.SetStatus(a.checkStatus())
}

// checkStatus describes the server as seen from the port and the handle
func (a *App) checkStatus() string {
	srv := a.config.Server
	res := a.deps.Probe(a.ctx, srv.Host, srv.Port)
	if res.Busy() {
		return fmt.Sprintf("Server running on :%d", srv.Port)
	}

	a.mu.Lock()
	server := a.server
	a.mu.Unlock()

	if server != nil && server.Exited() {
		return fmt.Sprintf("Server exited (see %s)", filepath.Base(srv.LogFile))
	}
	return fmt.Sprintf("Server not responding on :%d", srv.Port)
}
