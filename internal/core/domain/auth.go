package domain

import (
	"fmt"
	"time"
)

// Role is the privilege level carried in a session token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Challenge is a one-time sign-in nonce issued to a wallet.
type Challenge struct {
	Wallet    string    `json:"wallet"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignInMessage is the exact text a wallet signs to prove ownership.
func SignInMessage(wallet, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf(
		"Sign in to the prediction market\n\nWallet: %s\nNonce: %s\nIssued At: %s",
		wallet, nonce, issuedAt.UTC().Format(time.RFC3339),
	)
}
