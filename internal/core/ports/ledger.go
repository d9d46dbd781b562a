package ports

import (
	"context"

	"prediction-market-gateway/internal/core/domain"
)

// BalanceOracle reads token holdings from the ledger.
//
// A wallet without a token account for mint yields Found=false and a nil
// error. Any other failure, including a deadline from ctx, is returned as a
// *domain.OracleError and must not be mistaken for a zero balance.
type BalanceOracle interface {
	TokenBalance(ctx context.Context, wallet, mint string) (domain.TokenBalance, error)
}

// WalletVerifier checks that a message was signed by the wallet's key.
type WalletVerifier interface {
	VerifySignature(wallet string, message []byte, signature string) error
}
