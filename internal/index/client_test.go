package index

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidity-monitor/internal/models"
)

var upgrader = websocket.Upgrader{}

// indexerStub is a websocket endpoint that records received commands and lets
// tests push wire updates to the client.
type indexerStub struct {
	server *httptest.Server

	mu       sync.Mutex
	conn     *websocket.Conn
	commands []wireCommand
}

func newIndexerStub(t *testing.T) *indexerStub {
	t.Helper()
	stub := &indexerStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		stub.mu.Lock()
		stub.conn = conn
		stub.mu.Unlock()

		for {
			var cmd wireCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			stub.mu.Lock()
			stub.commands = append(stub.commands, cmd)
			stub.mu.Unlock()
		}
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *indexerStub) url() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *indexerStub) push(t *testing.T, update wireUpdate) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.conn != nil
	}, time.Second, 5*time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	require.NoError(t, s.conn.WriteJSON(update))
}

func (s *indexerStub) receivedCommands() []wireCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]wireCommand{}, s.commands...)
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func TestClientSubscribeCommand(t *testing.T) {
	stub := newIndexerStub(t)
	client := NewClient(stub.url(), 10, 3, 10*time.Millisecond, testLogger())
	defer client.Close()

	require.NoError(t, client.Connect(context.Background()))
	require.NoError(t, client.StartFetchingTransfers("0xAA"))

	require.Eventually(t, func() bool {
		return len(stub.receivedCommands()) == 1
	}, time.Second, 5*time.Millisecond)

	cmds := stub.receivedCommands()
	assert.Equal(t, "subscribe", cmds[0].Op)
	assert.Equal(t, "0xAA", cmds[0].Depositor)

	require.NoError(t, client.StopFetchingTransfers("0xAA"))
	require.Eventually(t, func() bool {
		return len(stub.receivedCommands()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "unsubscribe", stub.receivedCommands()[1].Op)
}

func TestClientSendWithoutConnect(t *testing.T) {
	client := NewClient("ws://localhost:0", 10, 1, time.Millisecond, testLogger())
	assert.ErrorIs(t, client.StartFetchingTransfers("0xAA"), ErrNotConnected)
}

func TestClientDispatchFlattensPartitions(t *testing.T) {
	stub := newIndexerStub(t)
	client := NewClient(stub.url(), 10, 3, 10*time.Millisecond, testLogger())
	defer client.Close()

	updates := make(chan models.TransfersUpdate, 1)
	client.Subscribe(func(u models.TransfersUpdate) {
		updates <- u
	})

	require.NoError(t, client.Connect(context.Background()))

	stub.push(t, wireUpdate{
		Type:          "transfers",
		DepositorAddr: "0xAA",
		Filled: []models.Transfer{
			{ID: "t1", Amount: "5", TokenSymbol: "USDC"},
		},
		Pending: []models.Transfer{
			// Stale status on the wire must be overridden by the partition.
			{ID: "t2", Amount: "7", TokenSymbol: "USDC", Status: models.StatusFilled},
		},
	})

	select {
	case got := <-updates:
		assert.Equal(t, "0xAA", got.DepositorAddr)
		require.Len(t, got.Transfers, 2)
		assert.Equal(t, models.StatusFilled, got.Transfers[0].Status)
		assert.Equal(t, models.StatusPending, got.Transfers[1].Status)
	case <-time.After(time.Second):
		t.Fatal("no update dispatched")
	}
}
