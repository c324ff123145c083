package validation

import (
	"errors"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
)

// ValidateAddress validates an EVM account address
func ValidateAddress(address string) error {
	if address == "" {
		return errors.New("address cannot be empty")
	}

	if !common.IsHexAddress(address) {
		return errors.New("invalid address format")
	}

	return nil
}

// ValidateTxHash validates an EVM transaction hash format
func ValidateTxHash(txHash string) error {
	if txHash == "" {
		return errors.New("transaction hash cannot be empty")
	}

	if len(txHash) != 66 || !regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`).MatchString(txHash) {
		return errors.New("invalid transaction hash")
	}

	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string) error {
	if url == "" {
		return errors.New("URL cannot be empty")
	}

	urlRegex := regexp.MustCompile(`^(https?|wss?)://[^\s/$.?#].[^\s]*$`)
	if !urlRegex.MatchString(url) {
		return errors.New("invalid URL format")
	}

	return nil
}
