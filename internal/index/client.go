package index

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"liquidity-monitor/internal/interfaces"
	"liquidity-monitor/internal/models"
)

var ErrNotConnected = errors.New("index client is not connected")

// wire messages exchanged with the transfer-indexing backend.
type wireCommand struct {
	Op        string `json:"op"`
	Depositor string `json:"depositor,omitempty"`
	Pool      string `json:"pool,omitempty"`
	Account   string `json:"account,omitempty"`
}

type wireUpdate struct {
	Type          string            `json:"type"`
	DepositorAddr string            `json:"depositor_addr"`
	Filled        []models.Transfer `json:"filled"`
	Pending       []models.Transfer `json:"pending"`
}

var _ interfaces.TransferIndexClient = (*Client)(nil)

// Client is a websocket client for the transfer-indexing backend. It keeps
// one connection, fans incoming updates out to subscribed listeners and
// re-subscribes active accounts after a reconnect. Reconnect attempts are
// paced by a rate limiter and capped at maxRetries per outage, with
// retryDelay between failed dials.
type Client struct {
	url        string
	logger     *zerolog.Logger
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	listeners []func(models.TransfersUpdate)
	accounts  map[string]bool
	closed    bool
	done      chan struct{}
}

func NewClient(url string, rateLimit float64, maxRetries int, retryDelay time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		url:        url,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), 1),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		accounts:   make(map[string]bool),
		done:       make(chan struct{}),
	}
}

// Connect dials the backend and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(ctx)

	c.logger.Info().Str("url", c.url).Msg("Connected to transfer indexer")
	return nil
}

// Subscribe registers a listener for all transfer updates.
func (c *Client) Subscribe(fn func(models.TransfersUpdate)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Client) StartFetchingTransfers(account string) error {
	c.mu.Lock()
	c.accounts[account] = true
	c.mu.Unlock()

	return c.send(wireCommand{Op: "subscribe", Depositor: account})
}

func (c *Client) StopFetchingTransfers(account string) error {
	c.mu.Lock()
	delete(c.accounts, account)
	c.mu.Unlock()

	return c.send(wireCommand{Op: "unsubscribe", Depositor: account})
}

func (c *Client) send(cmd wireCommand) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteJSON(cmd)
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		c.mu.Lock()
		conn := c.conn
		closed := c.closed
		c.mu.Unlock()

		if closed || conn == nil {
			return
		}

		var update wireUpdate
		if err := conn.ReadJSON(&update); err != nil {
			c.logger.Warn().Err(err).Msg("Indexer read failed, reconnecting")
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		c.dispatch(update)
	}
}

// dispatch flattens the wire partitions into one raw list. Statuses are
// forced from the partition the backend placed each transfer in, so a
// listener re-partitioning by status sees each transfer exactly once.
func (c *Client) dispatch(update wireUpdate) {
	transfers := make([]models.Transfer, 0, len(update.Filled)+len(update.Pending))
	for _, t := range update.Filled {
		t.Status = models.StatusFilled
		transfers = append(transfers, t)
	}
	for _, t := range update.Pending {
		t.Status = models.StatusPending
		transfers = append(transfers, t)
	}

	c.mu.Lock()
	listeners := make([]func(models.TransfersUpdate), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	out := models.TransfersUpdate{
		DepositorAddr: update.DepositorAddr,
		Transfers:     transfers,
	}
	for _, fn := range listeners {
		fn(out)
	}
}

// reconnect re-dials and re-subscribes every active account. Returns false
// when the client is closed, the context ends or the retry budget is spent.
func (c *Client) reconnect(ctx context.Context) bool {
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return false
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return false
		}
		c.mu.Unlock()

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("Indexer reconnect failed")
			select {
			case <-ctx.Done():
				return false
			case <-c.done:
				return false
			case <-time.After(c.retryDelay):
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		accounts := make([]string, 0, len(c.accounts))
		for account := range c.accounts {
			accounts = append(accounts, account)
		}
		c.mu.Unlock()

		for _, account := range accounts {
			if err := c.send(wireCommand{Op: "subscribe", Depositor: account}); err != nil {
				c.logger.Warn().Err(err).Str("account", account).Msg("Re-subscribe failed")
			}
		}

		c.logger.Info().Int("accounts", len(accounts)).Msg("Reconnected to transfer indexer")
		return true
	}

	c.logger.Error().Int("attempts", c.maxRetries).Msg("Indexer reconnect attempts exhausted")
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
