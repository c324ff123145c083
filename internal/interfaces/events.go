package interfaces

import "liquidity-monitor/internal/models"

// EventEmitter defines the interface for emitting deposit events
type EventEmitter interface {
	EmitDeposit(event models.DepositEvent) error
}
