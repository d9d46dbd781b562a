package ledger

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrInvalidWallet    = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("signature does not match wallet")
)

// SignatureVerifier implements ports.WalletVerifier for ed25519 wallet keys.
// Signatures are base58 encoded, as returned by browser wallets.
type SignatureVerifier struct{}

// NewSignatureVerifier creates a verifier.
func NewSignatureVerifier() SignatureVerifier {
	return SignatureVerifier{}
}

// VerifySignature checks that signature is wallet's signature over message.
func (SignatureVerifier) VerifySignature(wallet string, message []byte, signature string) error {
	pub, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !sig.Verify(pub, message) {
		return ErrInvalidSignature
	}
	return nil
}
