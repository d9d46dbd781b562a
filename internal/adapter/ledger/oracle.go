// Package ledger reads token holdings and verifies wallet signatures
// against the Solana ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"prediction-market-gateway/config"
	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/metrics"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/rs/zerolog"
)

// accountNotFound is the node's message for a token account that does not exist.
const accountNotFound = "could not find account"

// jsonrpcInvalidParams is returned for addresses that are not token accounts.
const jsonrpcInvalidParams = -32602

// Oracle implements ports.BalanceOracle over Solana JSON-RPC. The balance
// of (wallet, mint) is the balance of the wallet's associated token account.
type Oracle struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
	timeout    time.Duration
	log        zerolog.Logger
}

// NewOracle creates an oracle bound to the configured RPC endpoint.
func NewOracle(cfg config.SolanaConfig, log zerolog.Logger) *Oracle {
	return NewOracleWithClient(rpc.New(cfg.RPCURL), cfg, log)
}

// NewOracleWithClient creates an oracle over an existing RPC client.
func NewOracleWithClient(client *rpc.Client, cfg config.SolanaConfig, log zerolog.Logger) *Oracle {
	commitment := rpc.CommitmentType(cfg.Commitment)
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Oracle{
		client:     client,
		commitment: commitment,
		timeout:    cfg.RequestTimeout,
		log:        log.With().Str("component", "solana_oracle").Logger(),
	}
}

// TokenBalance returns wallet's raw holding of mint.
func (o *Oracle) TokenBalance(ctx context.Context, wallet, mint string) (domain.TokenBalance, error) {
	start := time.Now()
	balance, err := o.tokenBalance(ctx, wallet, mint)
	metrics.OracleLatency.Observe(time.Since(start).Seconds())

	switch kind, isOracleErr := domain.OracleFailureOf(err); {
	case isOracleErr:
		metrics.OracleLookups.WithLabelValues(string(kind)).Inc()
		o.log.Warn().Err(err).Str("wallet", wallet).Str("mint", mint).Msg("Token balance lookup failed")
	case !balance.Found:
		metrics.OracleLookups.WithLabelValues("absent").Inc()
	default:
		metrics.OracleLookups.WithLabelValues("found").Inc()
	}
	return balance, err
}

func (o *Oracle) tokenBalance(ctx context.Context, wallet, mint string) (domain.TokenBalance, error) {
	result := domain.TokenBalance{Wallet: wallet, Mint: mint}

	owner, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return result, oracleErr(domain.OracleFailureMalformed, wallet, mint, fmt.Errorf("wallet address: %w", err))
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return result, oracleErr(domain.OracleFailureMalformed, wallet, mint, fmt.Errorf("mint address: %w", err))
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mintKey)
	if err != nil {
		return result, oracleErr(domain.OracleFailureMalformed, wallet, mint, fmt.Errorf("derive token account: %w", err))
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	res, err := o.client.GetTokenAccountBalance(ctx, ata, o.commitment)
	if err != nil {
		if isAccountNotFound(err) {
			return result, nil
		}
		if isInvalidParams(err) {
			return result, oracleErr(domain.OracleFailureMalformed, wallet, mint, err)
		}
		return result, oracleErr(domain.OracleFailureUnavailable, wallet, mint, err)
	}
	if res == nil || res.Value == nil {
		return result, oracleErr(domain.OracleFailureMalformed, wallet, mint, errors.New("empty token amount in reply"))
	}

	raw, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil {
		return result, oracleErr(domain.OracleFailureMalformed, wallet, mint, fmt.Errorf("token amount %q: %w", res.Value.Amount, err))
	}

	result.Raw = raw
	result.Decimals = res.Value.Decimals
	result.Found = true
	return result, nil
}

// Ping implements ports.HealthChecker using the node's getHealth method.
func (o *Oracle) Ping(ctx context.Context) error {
	status, err := o.client.GetHealth(ctx)
	if err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("solana node unhealthy: %s", status)
	}
	return nil
}

// Name returns the dependency name.
func (o *Oracle) Name() string {
	return "solana"
}

func oracleErr(kind domain.OracleFailure, wallet, mint string, err error) error {
	return &domain.OracleError{Kind: kind, Wallet: wallet, Mint: mint, Err: err}
}

func isAccountNotFound(err error) bool {
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return strings.Contains(rpcErr.Message, accountNotFound)
	}
	return strings.Contains(err.Error(), accountNotFound)
}

func isInvalidParams(err error) bool {
	var rpcErr *jsonrpc.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == jsonrpcInvalidParams
}
