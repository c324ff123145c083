package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"liquidity-monitor/internal/interfaces"
)

var (
	ErrNotConnected = errors.New("wallet has no signer")
	ErrTxReverted   = errors.New("transaction reverted on-chain")
)

const erc20ApproveABI = `[{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}]`

const liquidityPoolABI = `[{"inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"name":"addLiquidity","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[],"name":"addNativeLiquidity","outputs":[],"stateMutability":"payable","type":"function"}]`

var (
	erc20ABI = mustParseABI(erc20ApproveABI)
	poolABI  = mustParseABI(liquidityPoolABI)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

var _ interfaces.Wallet = (*EVMWallet)(nil)

// EVMWallet signs and submits transactions with a local key and watches
// submitted hashes by polling for receipts.
type EVMWallet struct {
	client       *ethclient.Client
	key          *ecdsa.PrivateKey
	chainID      *big.Int
	logger       *zerolog.Logger
	pollInterval time.Duration
}

// New creates an EVMWallet. An empty key hex yields a wallet without a
// signer; Connected reports false and submissions fail with ErrNotConnected.
func New(client *ethclient.Client, keyHex string, chainID int64, logger *zerolog.Logger) (*EVMWallet, error) {
	w := &EVMWallet{
		client:       client,
		chainID:      big.NewInt(chainID),
		logger:       logger,
		pollInterval: 3 * time.Second,
	}

	if keyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid signer key: %w", err)
		}
		w.key = key
	}

	return w, nil
}

func (w *EVMWallet) Connected() bool {
	return w.key != nil
}

func (w *EVMWallet) Account() (common.Address, bool) {
	if w.key == nil {
		return common.Address{}, false
	}
	return crypto.PubkeyToAddress(w.key.PublicKey), true
}

func (w *EVMWallet) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*interfaces.TxHandle, error) {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("pack approve: %w", err)
	}
	return w.submit(ctx, token, new(big.Int), data)
}

func (w *EVMWallet) SubmitDeposit(ctx context.Context, pool, token common.Address, amount *big.Int) (*interfaces.TxHandle, error) {
	data, err := poolABI.Pack("addLiquidity", token, amount)
	if err != nil {
		return nil, fmt.Errorf("pack addLiquidity: %w", err)
	}
	return w.submit(ctx, pool, new(big.Int), data)
}

func (w *EVMWallet) SubmitNativeDeposit(ctx context.Context, pool common.Address, amount *big.Int) (*interfaces.TxHandle, error) {
	data, err := poolABI.Pack("addNativeLiquidity")
	if err != nil {
		return nil, fmt.Errorf("pack addNativeLiquidity: %w", err)
	}
	return w.submit(ctx, pool, amount, data)
}

func (w *EVMWallet) submit(ctx context.Context, to common.Address, value *big.Int, data []byte) (*interfaces.TxHandle, error) {
	from, ok := w.Account()
	if !ok {
		return nil, ErrNotConnected
	}

	nonce, err := w.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}

	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}

	gasLimit, err := w.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    value,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	w.logger.Info().
		Str("to", to.Hex()).
		Str("txHash", signed.Hash().Hex()).
		Str("value", value.String()).
		Msg("Submitted transaction")

	return &interfaces.TxHandle{Hash: signed.Hash()}, nil
}

// WatchTx polls for the receipt of the given hash and returns exactly one
// terminal outcome: confirmed, or an error (revert or context cancellation).
func (w *EVMWallet) WatchTx(ctx context.Context, hash common.Hash) interfaces.TxOutcome {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				return interfaces.TxOutcome{Confirmed: true}
			}
			return interfaces.TxOutcome{Err: fmt.Errorf("%w: %s", ErrTxReverted, hash.Hex())}
		}
		if !errors.Is(err, ethereum.NotFound) {
			w.logger.Warn().Err(err).Str("txHash", hash.Hex()).Msg("Receipt poll failed, retrying")
		}

		select {
		case <-ctx.Done():
			return interfaces.TxOutcome{Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}
