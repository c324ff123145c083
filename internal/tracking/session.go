package tracking

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"liquidity-monitor/internal/interfaces"
	"liquidity-monitor/internal/models"
)

// DefaultWindow is how long a session keeps fetching before it stops itself.
const DefaultWindow = 5 * time.Minute

var ErrEmptyAccount = errors.New("account cannot be empty")

// Session maintains a live, time-bounded view of one account's pending and
// filled transfers. Updates for any other account are dropped at delivery,
// which keeps a superseded account's in-flight updates from overwriting the
// current snapshots.
type Session struct {
	client interfaces.TransferIndexClient
	logger *zerolog.Logger

	// Window overrides DefaultWindow when set before Start.
	Window time.Duration

	mu             sync.Mutex
	account        string
	active         bool
	initialLoading bool
	startedAt      time.Time
	deadline       *time.Timer
	filled         []models.Transfer
	pending        []models.Transfer
}

func NewSession(client interfaces.TransferIndexClient, logger *zerolog.Logger) *Session {
	return &Session{
		client: client,
		logger: logger,
		Window: DefaultWindow,
	}
}

// Start begins fetching transfers for the account and arms the deadline
// timer. It is a no-op when a session for the same account is already
// active. A fetch-start failure deactivates the session and disarms the
// timer, so a later Start for the same account issues a fresh fetch
// request; retry is the caller's decision.
func (s *Session) Start(account string) error {
	if account == "" {
		return ErrEmptyAccount
	}

	s.mu.Lock()
	if s.active && s.account == account {
		s.mu.Unlock()
		return nil
	}

	s.account = account
	s.active = true
	s.initialLoading = true
	s.startedAt = time.Now()

	if s.deadline != nil {
		s.deadline.Stop()
	}
	s.deadline = time.AfterFunc(s.Window, func() {
		s.onDeadline(account)
	})
	s.mu.Unlock()

	if err := s.client.StartFetchingTransfers(account); err != nil {
		s.logger.Error().
			Err(err).
			Str("account", account).
			Msg("Failed to start fetching transfers")

		s.mu.Lock()
		if s.deadline != nil {
			s.deadline.Stop()
			s.deadline = nil
		}
		s.active = false
		s.initialLoading = false
		s.mu.Unlock()
		return err
	}

	s.logger.Debug().
		Str("account", account).
		Dur("window", s.Window).
		Msg("Tracking session started")

	return nil
}

// OnUpdate receives an indexer emission. Updates whose depositor does not
// match the session account are ignored. The filled and pending snapshots
// are replaced together under one lock hold, so observers never see a
// half-updated pair.
func (s *Session) OnUpdate(update models.TransfersUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || update.DepositorAddr != s.account {
		return
	}

	filled, pending := models.PartitionTransfers(update.Transfers)
	s.filled = filled
	s.pending = pending
	s.initialLoading = false
}

// Stop tears the session down: disarms the deadline timer, asks the indexer
// to stop fetching, clears both snapshots and deactivates. Idempotent and
// safe to call on a session that never started.
func (s *Session) Stop() {
	s.mu.Lock()
	account := s.account
	wasActive := s.active

	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
	s.account = ""
	s.active = false
	s.initialLoading = false
	s.filled = nil
	s.pending = nil
	s.mu.Unlock()

	if !wasActive || account == "" {
		return
	}

	if err := s.client.StopFetchingTransfers(account); err != nil {
		s.logger.Warn().
			Err(err).
			Str("account", account).
			Msg("Failed to stop fetching transfers")
	}

	s.logger.Debug().Str("account", account).Msg("Tracking session stopped")
}

// onDeadline fires when the window elapses before Stop. Fetching stops but
// the last snapshots are retained; only an explicit Stop clears them.
func (s *Session) onDeadline(account string) {
	s.mu.Lock()
	if !s.active || s.account != account {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.deadline = nil
	s.mu.Unlock()

	if err := s.client.StopFetchingTransfers(account); err != nil {
		s.logger.Warn().
			Err(err).
			Str("account", account).
			Msg("Failed to stop fetching after deadline")
	}

	s.logger.Info().
		Str("account", account).
		Msg("Tracking session deadline elapsed, snapshots retained")
}

// Snapshots returns copies of the filled and pending partitions.
func (s *Session) Snapshots() (filled, pending []models.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filled = make([]models.Transfer, len(s.filled))
	copy(filled, s.filled)
	pending = make([]models.Transfer, len(s.pending))
	copy(pending, s.pending)
	return filled, pending
}

func (s *Session) Account() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) InitialLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialLoading
}

func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}
