package models

import (
	"time"
)

// TransferStatus is the indexer-reported state of a cross-chain transfer.
type TransferStatus string

const (
	StatusPending TransferStatus = "pending"
	StatusFilled  TransferStatus = "filled"
)

func (s TransferStatus) String() string {
	return string(s)
}

// Transfer represents one observed cross-chain asset movement.
type Transfer struct {
	ID                 string         `json:"id"`
	Depositor          string         `json:"depositor"`
	SourceChainID      ChainName      `json:"source_chain_id"`
	DestinationChainID ChainName      `json:"destination_chain_id"`
	Amount             string         `json:"amount"`
	TokenSymbol        string         `json:"token_symbol"`
	Status             TransferStatus `json:"status"`
	TxHash             string         `json:"tx_hash"`
	CreatedAt          time.Time      `json:"created_at"`
	FilledAt           time.Time      `json:"filled_at"`
}

// TransfersUpdate is one emission from the transfer indexer for a depositor.
// Transfers carries the raw list; consumers partition by Status.
type TransfersUpdate struct {
	DepositorAddr string     `json:"depositor_addr"`
	Transfers     []Transfer `json:"transfers"`
}

// PartitionTransfers splits a raw transfer list into filled and pending
// halves. A transfer lands in exactly one of the two, decided by its status
// at the instant of the update.
func PartitionTransfers(transfers []Transfer) (filled, pending []Transfer) {
	for _, t := range transfers {
		if t.Status == StatusFilled {
			filled = append(filled, t)
		} else {
			pending = append(pending, t)
		}
	}
	return filled, pending
}

// DepositEvent is emitted after a liquidity deposit confirms on-chain.
type DepositEvent struct {
	Account     string    `json:"account"`
	Pool        string    `json:"pool"`
	TxHash      string    `json:"tx_hash"`
	Amount      string    `json:"amount"`
	TokenSymbol string    `json:"token_symbol"`
	ExplorerURL string    `json:"explorer_url"`
	Timestamp   time.Time `json:"timestamp"`
}
