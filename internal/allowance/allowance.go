package allowance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// ErrAllowanceQuery marks failures of the on-chain allowance call so callers
// can distinguish them from validation errors.
var ErrAllowanceQuery = errors.New("allowance query failed")

const erc20AllowanceABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

var erc20ABI = mustParseABI(erc20AllowanceABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Checker performs ERC-20 allowance queries. It holds no state beyond the
// chain client.
type Checker struct {
	client *ethclient.Client
	logger *zerolog.Logger
}

func NewChecker(client *ethclient.Client, logger *zerolog.Logger) *Checker {
	return &Checker{
		client: client,
		logger: logger,
	}
}

// Allowance returns the amount the owner has approved the spender to move
// for the given token.
func (c *Checker) Allowance(ctx context.Context, owner, spender, token common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("%w: pack: %v", ErrAllowanceQuery, err)
	}

	out, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: data,
	}, nil)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("token", token.Hex()).
			Str("owner", owner.Hex()).
			Str("spender", spender.Hex()).
			Msg("Allowance call failed")
		return nil, fmt.Errorf("%w: %v", ErrAllowanceQuery, err)
	}

	results, err := erc20ABI.Unpack("allowance", out)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack: %v", ErrAllowanceQuery, err)
	}

	value, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type %T", ErrAllowanceQuery, results[0])
	}

	c.logger.Debug().
		Str("token", token.Hex()).
		Str("owner", owner.Hex()).
		Str("spender", spender.Hex()).
		Str("allowance", value.String()).
		Msg("Fetched allowance")

	return value, nil
}
