package emitters

import (
	"liquidity-monitor/internal/interfaces"
	"liquidity-monitor/internal/logger"
	"liquidity-monitor/internal/models"
)

// PrintEmitter wraps another emitter and logs every deposit event. Useful
// for local runs without a broker.
type PrintEmitter struct {
	WrappedEmitter interfaces.EventEmitter
}

// EmitDeposit logs the event and forwards to the wrapped emitter
func (d *PrintEmitter) EmitDeposit(event models.DepositEvent) error {
	logger.GetLogger().Info().
		Str("account", event.Account).
		Str("pool", event.Pool).
		Str("amount", event.Amount).
		Str("symbol", event.TokenSymbol).
		Str("txHash", event.TxHash).
		Str("explorer", event.ExplorerURL).
		Time("timestamp", event.Timestamp).
		Msg("Deposit event")

	// Forward to wrapped emitter
	if d.WrappedEmitter != nil {
		return d.WrappedEmitter.EmitDeposit(event)
	}
	return nil
}
