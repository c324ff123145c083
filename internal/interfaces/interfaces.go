package interfaces

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidity-monitor/internal/models"
)

// TransferIndexClient defines the interface to the transfer-indexing backend
type TransferIndexClient interface {
	// StartFetchingTransfers asks the backend to stream updates for an account
	StartFetchingTransfers(account string) error

	// StopFetchingTransfers ends the stream for an account
	StopFetchingTransfers(account string) error

	// Subscribe registers a listener for transfer updates
	Subscribe(fn func(models.TransfersUpdate))
}

// TxHandle is the result of a submitted transaction. A nil handle with a nil
// error means the wallet declined to sign.
type TxHandle struct {
	Hash common.Hash
}

// TxOutcome is the single terminal result of watching a transaction hash:
// either Confirmed is true or Err is set, never both.
type TxOutcome struct {
	Confirmed bool
	Err       error
}

// Wallet defines the signing and submission interface to the wallet/chain layer
type Wallet interface {
	// Connected reports whether a signer is available
	Connected() bool

	// Account returns the signer address, if connected
	Account() (common.Address, bool)

	// Approve submits an ERC-20 approval for the given spender and amount
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*TxHandle, error)

	// SubmitDeposit submits a token liquidity deposit to the pool
	SubmitDeposit(ctx context.Context, pool, token common.Address, amount *big.Int) (*TxHandle, error)

	// SubmitNativeDeposit submits a native-asset liquidity deposit to the pool
	SubmitNativeDeposit(ctx context.Context, pool common.Address, amount *big.Int) (*TxHandle, error)

	// WatchTx blocks until the transaction reaches a terminal state
	WatchTx(ctx context.Context, hash common.Hash) TxOutcome
}

// AllowanceSource answers ERC-20 allowance queries
type AllowanceSource interface {
	Allowance(ctx context.Context, owner, spender, token common.Address) (*big.Int, error)
}

// PoolRefresher triggers a re-fetch of pool and account data after a deposit
type PoolRefresher interface {
	UpdatePool(pool string) error
	UpdateUser(account, pool string) error
}

// PreferenceStore persists presentation preferences
type PreferenceStore interface {
	GetPageSize() (int, bool)
	SetPageSize(size int) error
}

// DepositRecorder persists confirmed deposits
type DepositRecorder interface {
	SaveDeposit(event models.DepositEvent) error
}
