package index

import (
	"liquidity-monitor/internal/interfaces"
)

var _ interfaces.PoolRefresher = (*Refresher)(nil)

// Refresher asks the indexing backend to re-fetch pool and account data.
// Used for the delayed post-confirmation refresh.
type Refresher struct {
	client *Client
}

func NewRefresher(client *Client) *Refresher {
	return &Refresher{client: client}
}

func (r *Refresher) UpdatePool(pool string) error {
	return r.client.send(wireCommand{Op: "refresh_pool", Pool: pool})
}

func (r *Refresher) UpdateUser(account, pool string) error {
	return r.client.send(wireCommand{Op: "refresh_user", Account: account, Pool: pool})
}
