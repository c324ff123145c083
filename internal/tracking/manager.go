package tracking

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"liquidity-monitor/internal/interfaces"
	"liquidity-monitor/internal/models"
)

// Manager owns the account identity and the single live session derived
// from it. On every identity change the prior session is fully torn down
// (fetch-stop issued, snapshots cleared) before a new session starts, so an
// update racing in for the old account can never land on the new one.
type Manager struct {
	client interfaces.TransferIndexClient
	logger *zerolog.Logger
	window time.Duration

	mu      sync.Mutex
	session *Session
}

func NewManager(client interfaces.TransferIndexClient, logger *zerolog.Logger) *Manager {
	m := &Manager{
		client: client,
		logger: logger,
		window: DefaultWindow,
	}
	client.Subscribe(m.dispatch)
	return m
}

// SetWindow overrides the session fetch window for sessions started after
// the call.
func (m *Manager) SetWindow(window time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = window
}

// SetAccount switches tracking to the given account. The empty string means
// "no account" and only tears down. Switching to the already-tracked account
// is a no-op.
func (m *Manager) SetAccount(account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil && m.session.Active() && m.session.Account() == account {
		return nil
	}

	if m.session != nil {
		m.session.Stop()
		m.session = nil
	}

	if account == "" {
		return nil
	}

	session := NewSession(m.client, m.logger)
	session.Window = m.window
	m.session = session
	return session.Start(account)
}

// Session returns the current session, or nil when no account is tracked.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *Manager) dispatch(update models.TransfersUpdate) {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	if session != nil {
		session.OnUpdate(update)
	}
}

// Close tears down whatever session is live.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.Stop()
		m.session = nil
	}
}
