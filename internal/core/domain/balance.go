package domain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenBalance is a wallet's holding of one mint as read from the ledger.
// Raw is in the mint's smallest unit. Found is false when the wallet has no
// token account for the mint, in which case Raw is zero.
type TokenBalance struct {
	Wallet   string
	Mint     string
	Raw      uint64
	Decimals uint8
	Found    bool
}

// Amount normalizes Raw into whole-token units using the on-chain decimals.
func (b TokenBalance) Amount() decimal.Decimal {
	return b.AmountAt(b.Decimals)
}

// AmountAt normalizes Raw using an externally declared precision.
func (b TokenBalance) AmountAt(decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(b.Raw), -int32(decimals))
}

// IsPositive reports a strictly positive holding.
func (b TokenBalance) IsPositive() bool {
	return b.Raw > 0
}

// OracleFailure tags why a ledger read produced no definitive balance.
type OracleFailure string

const (
	OracleFailureUnavailable OracleFailure = "unavailable" // transport, node or deadline error
	OracleFailureMalformed   OracleFailure = "malformed"   // bad address or unparseable reply
)

// ErrOracleUnavailable matches every *OracleError via errors.Is.
var ErrOracleUnavailable = errors.New("ledger oracle unavailable")

// OracleError is returned by a BalanceOracle when a balance could not be read.
type OracleError struct {
	Kind   OracleFailure
	Wallet string
	Mint   string
	Err    error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("balance lookup %s (wallet=%s mint=%s): %v", e.Kind, e.Wallet, e.Mint, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// Is lets callers test for ErrOracleUnavailable without caring about the kind.
func (e *OracleError) Is(target error) bool {
	return target == ErrOracleUnavailable
}

// OracleFailureOf extracts the failure kind from err, if it is an oracle error.
func OracleFailureOf(err error) (OracleFailure, bool) {
	var oe *OracleError
	if errors.As(err, &oe) {
		return oe.Kind, true
	}
	return "", false
}
