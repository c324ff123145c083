package models

type ChainName string

const (
	Ethereum ChainName = "Ethereum"
	Polygon  ChainName = "Polygon"
	Arbitrum ChainName = "Arbitrum"
	Optimism ChainName = "Optimism"
)

func (b ChainName) String() string {
	return string(b)
}
