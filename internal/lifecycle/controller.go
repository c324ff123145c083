package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"liquidity-monitor/internal/amount"
	"liquidity-monitor/internal/interfaces"
	"liquidity-monitor/internal/models"
)

// DefaultRefreshDelay is how long after a confirmed deposit the pool and
// account data are re-fetched. The indexing backend lags chain state, so the
// refresh is deliberately deferred.
const DefaultRefreshDelay = 30 * time.Second

var (
	ErrWalletNotConnected  = errors.New("wallet not connected")
	ErrNotReady            = errors.New("controller is not ready to submit")
	ErrNotAwaitingApproval = errors.New("no approval is pending")
)

// Config targets the controller at one liquidity pool.
type Config struct {
	Pool            common.Address
	Token           common.Address
	Spender         common.Address
	NativeSymbol    string
	GasReserve      *big.Int
	ExplorerBaseURL string
}

// Controller drives one liquidity-provision attempt through allowance check,
// approval, submission and confirmation. Terminal wallet events (confirmed
// or error, exactly one per hash) move the state machine; on-chain errors
// revert to the pre-action phase so the caller can retry.
type Controller struct {
	cfg        Config
	wallet     interfaces.Wallet
	allowances interfaces.AllowanceSource
	refresher  interfaces.PoolRefresher
	emitter    interfaces.EventEmitter
	recorder   interfaces.DepositRecorder
	logger     *zerolog.Logger

	// RefreshDelay overrides DefaultRefreshDelay when set before Submit.
	RefreshDelay time.Duration

	mu              sync.Mutex
	phase           Phase
	needsApproval   bool
	lastErr         error
	txHash          common.Hash
	depositURL      string
	submittedAmount string
	submittedSymbol string
}

func NewController(
	cfg Config,
	wallet interfaces.Wallet,
	allowances interfaces.AllowanceSource,
	refresher interfaces.PoolRefresher,
	logger *zerolog.Logger,
) *Controller {
	return &Controller{
		cfg:          cfg,
		wallet:       wallet,
		allowances:   allowances,
		refresher:    refresher,
		logger:       logger,
		RefreshDelay: DefaultRefreshDelay,
		phase:        PhaseIdle,
	}
}

// WithEmitter publishes confirmed deposits to the given emitter.
func (c *Controller) WithEmitter(emitter interfaces.EventEmitter) *Controller {
	c.emitter = emitter
	return c
}

// WithRecorder persists confirmed deposits with the given recorder.
func (c *Controller) WithRecorder(recorder interfaces.DepositRecorder) *Controller {
	c.recorder = recorder
	return c
}

// CheckAllowance queries whether the signer's approval for the spender
// covers the required amount. No-op without a signer. The native asset never
// needs approval. A failed query leaves the prior needs-approval flag
// unchanged: it never newly blocks the user and never clears a prior
// determination.
func (c *Controller) CheckAllowance(ctx context.Context, required *big.Int, symbol string) error {
	owner, ok := c.wallet.Account()
	if !ok {
		return nil
	}

	if symbol == c.cfg.NativeSymbol {
		c.mu.Lock()
		c.needsApproval = false
		c.transitionLocked(PhaseReady)
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.transitionLocked(PhaseCheckingAllowance)
	c.mu.Unlock()

	allowed, err := c.allowances.Allowance(ctx, owner, c.cfg.Spender, c.cfg.Token)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Error().
			Err(err).
			Str("owner", owner.Hex()).
			Str("spender", c.cfg.Spender.Hex()).
			Msg("Allowance check failed, keeping prior approval flag")
		c.settleAfterCheckLocked()
		return err
	}

	c.needsApproval = allowed.Cmp(required) < 0
	c.settleAfterCheckLocked()

	c.logger.Debug().
		Str("allowance", allowed.String()).
		Str("required", required.String()).
		Bool("needsApproval", c.needsApproval).
		Msg("Allowance checked")

	return nil
}

func (c *Controller) settleAfterCheckLocked() {
	if c.needsApproval {
		c.transitionLocked(PhaseNeedsApproval)
	} else {
		c.transitionLocked(PhaseReady)
	}
}

// Approve requests the maximum representable approval (2^256 - 1) for the
// spender, regardless of the amount currently needed, so later deposits do
// not require further approvals. A wallet rejection (no handle) leaves the
// phase where it was.
func (c *Controller) Approve(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseNeedsApproval {
		c.mu.Unlock()
		return ErrNotAwaitingApproval
	}
	c.transitionLocked(PhaseApproving)
	c.mu.Unlock()

	handle, err := c.wallet.Approve(ctx, c.cfg.Token, c.cfg.Spender, amount.MaxUint256)

	c.mu.Lock()
	if err != nil {
		c.lastErr = err
		c.transitionLocked(PhaseNeedsApproval)
		c.mu.Unlock()
		return err
	}
	if handle == nil {
		// Declined in the wallet. No error to surface, no advance.
		c.transitionLocked(PhaseNeedsApproval)
		c.mu.Unlock()
		return nil
	}
	c.transitionLocked(PhaseAwaitingApprovalConfirmation)
	c.mu.Unlock()

	go c.watch(handle.Hash, true)
	return nil
}

// Submit validates the amount, submits the deposit through the native or
// token entry point, and watches the resulting hash for exactly one terminal
// event. A zero or malformed amount is rejected before any network call.
func (c *Controller) Submit(ctx context.Context, value, symbol string, decimals int) error {
	if !c.wallet.Connected() {
		c.mu.Lock()
		c.transitionLocked(PhaseWalletNotConnected)
		c.mu.Unlock()
		return ErrWalletNotConnected
	}

	base, err := amount.ToBaseUnits(value, decimals)
	if err != nil {
		return err
	}
	if base.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", amount.ErrInvalidAmount)
	}

	c.mu.Lock()
	if c.phase != PhaseReady {
		c.mu.Unlock()
		return fmt.Errorf("%w: phase %s", ErrNotReady, c.phase)
	}
	c.transitionLocked(PhaseSubmitting)
	c.mu.Unlock()

	var handle *interfaces.TxHandle
	if symbol == c.cfg.NativeSymbol {
		handle, err = c.wallet.SubmitNativeDeposit(ctx, c.cfg.Pool, base)
	} else {
		handle, err = c.wallet.SubmitDeposit(ctx, c.cfg.Pool, c.cfg.Token, base)
	}

	c.mu.Lock()
	if err != nil {
		c.lastErr = err
		c.transitionLocked(PhaseReady)
		c.mu.Unlock()
		return err
	}
	if handle == nil {
		c.transitionLocked(PhaseReady)
		c.mu.Unlock()
		return nil
	}

	c.txHash = handle.Hash
	c.submittedAmount = value
	c.submittedSymbol = symbol
	c.transitionLocked(PhaseAwaitingConfirmation)
	c.mu.Unlock()

	go c.watch(handle.Hash, false)
	return nil
}

// watch waits for the single terminal event of a hash and applies it.
func (c *Controller) watch(hash common.Hash, approval bool) {
	outcome := c.wallet.WatchTx(context.Background(), hash)

	if approval {
		c.mu.Lock()
		defer c.mu.Unlock()
		if outcome.Confirmed {
			c.needsApproval = false
			c.transitionLocked(PhaseReady)
			c.logger.Info().Str("txHash", hash.Hex()).Msg("Approval confirmed")
			return
		}
		c.lastErr = outcome.Err
		c.transitionLocked(PhaseNeedsApproval)
		c.logger.Error().Err(outcome.Err).Str("txHash", hash.Hex()).Msg("Approval failed")
		return
	}

	if outcome.Confirmed {
		c.onConfirmed(hash)
		return
	}

	c.mu.Lock()
	c.lastErr = outcome.Err
	c.transitionLocked(PhaseReady)
	c.mu.Unlock()
	c.logger.Error().Err(outcome.Err).Str("txHash", hash.Hex()).Msg("Deposit failed")
}

func (c *Controller) onConfirmed(hash common.Hash) {
	c.mu.Lock()
	c.transitionLocked(PhaseConfirmed)
	c.depositURL = c.cfg.ExplorerBaseURL + hash.Hex()
	depositURL := c.depositURL
	value := c.submittedAmount
	symbol := c.submittedSymbol
	delay := c.RefreshDelay
	c.mu.Unlock()

	account, _ := c.wallet.Account()
	pool := c.cfg.Pool.Hex()

	c.logger.Info().
		Str("txHash", hash.Hex()).
		Str("depositURL", depositURL).
		Msg("Deposit confirmed")

	// The indexer lags chain state after a confirmation; refresh after a
	// fixed delay rather than immediately.
	time.AfterFunc(delay, func() {
		if err := c.refresher.UpdatePool(pool); err != nil {
			c.logger.Warn().Err(err).Str("pool", pool).Msg("Pool refresh failed")
		}
		if err := c.refresher.UpdateUser(account.Hex(), pool); err != nil {
			c.logger.Warn().Err(err).Str("account", account.Hex()).Msg("User refresh failed")
		}
	})

	event := models.DepositEvent{
		Account:     account.Hex(),
		Pool:        pool,
		TxHash:      hash.Hex(),
		Amount:      value,
		TokenSymbol: symbol,
		ExplorerURL: depositURL,
		Timestamp:   time.Now().UTC(),
	}

	if c.recorder != nil {
		if err := c.recorder.SaveDeposit(event); err != nil {
			c.logger.Error().Err(err).Str("txHash", event.TxHash).Msg("Failed to save deposit")
		}
	}
	if c.emitter != nil {
		if err := c.emitter.EmitDeposit(event); err != nil {
			c.logger.Error().Err(err).Str("txHash", event.TxHash).Msg("Failed to emit deposit event")
		}
	}
}

// Reset returns the controller to Idle, clearing the attempt's error, hash
// and URL. The needs-approval flag survives: it reflects chain state, not
// the attempt.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transitionLocked(PhaseIdle)
	c.lastErr = nil
	c.txHash = common.Hash{}
	c.depositURL = ""
	c.submittedAmount = ""
	c.submittedSymbol = ""
}

// MaxNativeAmount is the largest native amount submittable from the balance
// after the gas reserve is held back.
func (c *Controller) MaxNativeAmount(balance *big.Int) *big.Int {
	return amount.MaxNative(balance, c.cfg.GasReserve)
}

func (c *Controller) transitionLocked(to Phase) {
	if to == c.phase {
		return
	}
	if !canTransition(c.phase, to) {
		c.logger.Warn().
			Str("from", c.phase.String()).
			Str("to", to.String()).
			Msg("Illegal phase transition refused")
		return
	}
	c.logger.Debug().
		Str("from", c.phase.String()).
		Str("to", to.String()).
		Msg("Phase transition")
	c.phase = to
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) NeedsApproval() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsApproval
}

func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) TxHash() common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txHash
}

func (c *Controller) DepositURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depositURL
}
