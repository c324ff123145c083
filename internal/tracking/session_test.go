package tracking

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-monitor/internal/models"
)

// mockIndexClient records fetch start/stop calls and lets tests push
// updates through the subscription.
type mockIndexClient struct {
	mu       sync.Mutex
	started  []string
	stopped  []string
	startErr error
	listener func(models.TransfersUpdate)
}

func (m *mockIndexClient) StartFetchingTransfers(account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.started = append(m.started, account)
	return nil
}

func (m *mockIndexClient) StopFetchingTransfers(account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = append(m.stopped, account)
	return nil
}

func (m *mockIndexClient) Subscribe(fn func(models.TransfersUpdate)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = fn
}

func (m *mockIndexClient) emit(update models.TransfersUpdate) {
	m.mu.Lock()
	fn := m.listener
	m.mu.Unlock()
	if fn != nil {
		fn(update)
	}
}

func (m *mockIndexClient) setStartErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

func (m *mockIndexClient) startedCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.started...)
}

func (m *mockIndexClient) stoppedCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.stopped...)
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func update(account string, transfers ...models.Transfer) models.TransfersUpdate {
	return models.TransfersUpdate{DepositorAddr: account, Transfers: transfers}
}

func transfer(id string, status models.TransferStatus) models.Transfer {
	return models.Transfer{ID: id, Status: status, Amount: "1", TokenSymbol: "USDC"}
}

func TestSessionStartAndUpdate(t *testing.T) {
	client := &mockIndexClient{}
	session := NewSession(client, testLogger())

	require.NoError(t, session.Start("0xAA"))
	assert.True(t, session.Active())
	assert.True(t, session.InitialLoading())
	assert.Equal(t, []string{"0xAA"}, client.startedCalls())

	session.OnUpdate(update("0xAA",
		transfer("t1", models.StatusFilled),
		transfer("t2", models.StatusPending),
		transfer("t3", models.StatusPending),
	))

	filled, pending := session.Snapshots()
	assert.Len(t, filled, 1)
	assert.Len(t, pending, 2)
	assert.False(t, session.InitialLoading())
}

func TestSessionStartEmptyAccount(t *testing.T) {
	session := NewSession(&mockIndexClient{}, testLogger())
	assert.ErrorIs(t, session.Start(""), ErrEmptyAccount)
}

func TestSessionStartSameAccountIsNoop(t *testing.T) {
	client := &mockIndexClient{}
	session := NewSession(client, testLogger())

	require.NoError(t, session.Start("0xAA"))
	require.NoError(t, session.Start("0xAA"))
	assert.Equal(t, []string{"0xAA"}, client.startedCalls())
}

func TestSessionIgnoresForeignAccountUpdate(t *testing.T) {
	client := &mockIndexClient{}
	session := NewSession(client, testLogger())
	require.NoError(t, session.Start("0xBB"))

	// An update for a superseded account must not land on this session.
	session.OnUpdate(update("0xAA", transfer("t1", models.StatusFilled)))

	filled, pending := session.Snapshots()
	assert.Empty(t, filled)
	assert.Empty(t, pending)
	assert.True(t, session.InitialLoading())
}

func TestSessionPartitionsAreExclusive(t *testing.T) {
	client := &mockIndexClient{}
	session := NewSession(client, testLogger())
	require.NoError(t, session.Start("0xAA"))

	session.OnUpdate(update("0xAA",
		transfer("t1", models.StatusPending),
		transfer("t2", models.StatusFilled),
	))
	// The transfer moved from pending to filled in the next emission.
	session.OnUpdate(update("0xAA",
		transfer("t1", models.StatusFilled),
		transfer("t2", models.StatusFilled),
	))

	filled, pending := session.Snapshots()
	seen := map[string]int{}
	for _, tr := range filled {
		seen[tr.ID]++
	}
	for _, tr := range pending {
		seen[tr.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "transfer %s appears in both partitions", id)
	}
	assert.Len(t, filled, 2)
	assert.Empty(t, pending)
}

func TestSessionStopClearsEverything(t *testing.T) {
	client := &mockIndexClient{}
	session := NewSession(client, testLogger())
	require.NoError(t, session.Start("0xAA"))
	session.OnUpdate(update("0xAA", transfer("t1", models.StatusFilled)))

	session.Stop()

	assert.False(t, session.Active())
	filled, pending := session.Snapshots()
	assert.Empty(t, filled)
	assert.Empty(t, pending)
	assert.Equal(t, []string{"0xAA"}, client.stoppedCalls())

	// Idempotent: a second stop issues no further fetch-stop.
	session.Stop()
	assert.Equal(t, []string{"0xAA"}, client.stoppedCalls())
}

func TestSessionStopWithoutStart(t *testing.T) {
	client := &mockIndexClient{}
	session := NewSession(client, testLogger())

	session.Stop()
	assert.Empty(t, client.stoppedCalls())
}

func TestSessionDeadlineStopsFetchingButRetainsSnapshots(t *testing.T) {
	client := &mockIndexClient{}
	session := NewSession(client, testLogger())
	session.Window = 20 * time.Millisecond

	require.NoError(t, session.Start("0xAA"))
	session.OnUpdate(update("0xAA", transfer("t1", models.StatusFilled)))

	require.Eventually(t, func() bool {
		return !session.Active()
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"0xAA"}, client.stoppedCalls())

	// Last known view survives the deadline.
	filled, _ := session.Snapshots()
	assert.Len(t, filled, 1)

	// No further updates are applied after expiry.
	session.OnUpdate(update("0xAA", transfer("t2", models.StatusPending)))
	_, pending := session.Snapshots()
	assert.Empty(t, pending)
}

func TestSessionStartFetchFailureClearsLoading(t *testing.T) {
	client := &mockIndexClient{startErr: errors.New("indexer down")}
	session := NewSession(client, testLogger())

	err := session.Start("0xAA")
	require.Error(t, err)
	assert.False(t, session.InitialLoading())
	assert.False(t, session.Active())
}

func TestSessionRestartAfterFetchFailure(t *testing.T) {
	client := &mockIndexClient{startErr: errors.New("indexer down")}
	session := NewSession(client, testLogger())
	session.Window = 20 * time.Millisecond

	require.Error(t, session.Start("0xAA"))
	assert.Empty(t, client.startedCalls())

	// The deadline timer is disarmed on failure: it must not fire a
	// fetch-stop for an account that never started fetching.
	require.Never(t, func() bool {
		return len(client.stoppedCalls()) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)

	client.setStartErr(nil)
	require.NoError(t, session.Start("0xAA"))
	assert.True(t, session.Active())
	assert.True(t, session.InitialLoading())
	assert.Equal(t, []string{"0xAA"}, client.startedCalls())
}

func TestManagerRetryAfterFetchFailure(t *testing.T) {
	client := &mockIndexClient{startErr: errors.New("indexer down")}
	manager := NewManager(client, testLogger())

	require.Error(t, manager.SetAccount("0xAA"))

	client.setStartErr(nil)
	require.NoError(t, manager.SetAccount("0xAA"))
	assert.Equal(t, []string{"0xAA"}, client.startedCalls())
	assert.True(t, manager.Session().Active())
}

func TestManagerTeardownBeforeStart(t *testing.T) {
	client := &mockIndexClient{}
	manager := NewManager(client, testLogger())

	require.NoError(t, manager.SetAccount("0xAA"))
	require.NoError(t, manager.SetAccount("0xBB"))

	// The old account's fetch-stop precedes the new account's fetch-start.
	assert.Equal(t, []string{"0xAA"}, client.stoppedCalls())
	assert.Equal(t, []string{"0xAA", "0xBB"}, client.startedCalls())
}

func TestManagerDropsUpdatesForSupersededAccount(t *testing.T) {
	client := &mockIndexClient{}
	manager := NewManager(client, testLogger())

	require.NoError(t, manager.SetAccount("0xAA"))
	require.NoError(t, manager.SetAccount("0xBB"))

	// In-flight update for the superseded account arrives late.
	client.emit(update("0xAA", transfer("t1", models.StatusFilled)))

	filled, pending := manager.Session().Snapshots()
	assert.Empty(t, filled)
	assert.Empty(t, pending)

	client.emit(update("0xBB", transfer("t2", models.StatusPending)))
	_, pending = manager.Session().Snapshots()
	assert.Len(t, pending, 1)
}

func TestManagerSameAccountIsNoop(t *testing.T) {
	client := &mockIndexClient{}
	manager := NewManager(client, testLogger())

	require.NoError(t, manager.SetAccount("0xAA"))
	require.NoError(t, manager.SetAccount("0xAA"))

	assert.Equal(t, []string{"0xAA"}, client.startedCalls())
	assert.Empty(t, client.stoppedCalls())
}

func TestManagerClearAccountTearsDown(t *testing.T) {
	client := &mockIndexClient{}
	manager := NewManager(client, testLogger())

	require.NoError(t, manager.SetAccount("0xAA"))
	require.NoError(t, manager.SetAccount(""))

	assert.Nil(t, manager.Session())
	assert.Equal(t, []string{"0xAA"}, client.stoppedCalls())
}
