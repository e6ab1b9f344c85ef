package launcher

import (
	"context"
	"sync"

	"dailystart-tray/pkg/probe"
	"dailystart-tray/pkg/tray"
)

func probeResult(status probe.Status, err error) ProbeFunc {
	return func(ctx context.Context, host string, port int) probe.Result {
		return probe.Result{Address: probe.Address(host, port), Status: status, Err: err}
	}
}

type mockServer struct {
	mu      sync.Mutex
	pid     int
	exited  bool
	stopErr error
	stops   int
}

func (m *mockServer) PID() int { return m.pid }

func (m *mockServer) Exited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exited
}

func (m *mockServer) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return m.stopErr
}

type mockLauncher struct {
	server *mockServer
	err    error
	starts int
}

func (m *mockLauncher) Start() (Server, error) {
	m.starts++
	if m.err != nil {
		return nil, m.err
	}
	return m.server, nil
}

type mockKiller struct {
	mu       sync.Mutex
	patterns []string
	killed   int
	err      error
}

func (m *mockKiller) KillMatching(ctx context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
	return m.killed, m.err
}

type mockOpener struct {
	urls []string
	err  error
}

func (m *mockOpener) Open(url string) error {
	m.urls = append(m.urls, url)
	return m.err
}

type mockNotifier struct {
	messages []string
}

func (m *mockNotifier) Warn(message string) error {
	m.messages = append(m.messages, message)
	return nil
}

// mockLoop stands in for the native tray. Run executes the script (the
// user's clicks) and then blocks until Quit, like the real loop.
type mockLoop struct {
	script func(ctrl tray.Controller)

	mu       sync.Mutex
	ran      bool
	cfg      tray.Config
	quits    int
	statuses []string
	quitCh   chan struct{}
	quitOnce sync.Once
}

func newMockLoop(script func(ctrl tray.Controller)) *mockLoop {
	return &mockLoop{script: script, quitCh: make(chan struct{})}
}

func (m *mockLoop) Run(cfg tray.Config) {
	m.mu.Lock()
	m.ran = true
	m.cfg = cfg
	m.mu.Unlock()

	if m.script != nil {
		go m.script(cfg.Controller)
	}
	<-m.quitCh
}

func (m *mockLoop) Quit() {
	m.mu.Lock()
	m.quits++
	m.mu.Unlock()
	m.quitOnce.Do(func() { close(m.quitCh) })
}

func (m *mockLoop) SetStatus(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, text)
}
