package database

import (
	"time"

	"liquidity-monitor/internal/interfaces"
	"liquidity-monitor/internal/models"
)

// Deposit represents a confirmed liquidity deposit in the database
type Deposit struct {
	ID          string    `json:"id"`
	TxHash      string    `json:"tx_hash"`
	Account     string    `json:"account"`
	Pool        string    `json:"pool"`
	Amount      string    `json:"amount"`
	TokenSymbol string    `json:"token_symbol"`
	ExplorerURL string    `json:"explorer_url"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveDeposit saves a confirmed deposit to the database
func SaveDeposit(event models.DepositEvent) error {
	_, err := DB.Exec(`
		INSERT INTO deposits (tx_hash, account, pool, amount, token_symbol, explorer_url, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tx_hash) DO NOTHING
	`, event.TxHash, event.Account, event.Pool, event.Amount, event.TokenSymbol, event.ExplorerURL, event.Timestamp)
	return err
}

// GetDeposits retrieves deposits for an account
func GetDeposits(account string, limit, offset int) ([]Deposit, error) {
	rows, err := DB.Query(`
		SELECT id, tx_hash, account, pool, amount, token_symbol, explorer_url, timestamp, created_at
		FROM deposits
		WHERE account = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`, account, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []Deposit
	for rows.Next() {
		var d Deposit
		err := rows.Scan(&d.ID, &d.TxHash, &d.Account, &d.Pool, &d.Amount, &d.TokenSymbol, &d.ExplorerURL, &d.Timestamp, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

var _ interfaces.DepositRecorder = (*Recorder)(nil)

// Recorder adapts the package-level SaveDeposit to the DepositRecorder
// interface.
type Recorder struct{}

func (Recorder) SaveDeposit(event models.DepositEvent) error {
	return SaveDeposit(event)
}
