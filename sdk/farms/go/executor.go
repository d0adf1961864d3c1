package farms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrNoPrivateKey is returned when a transaction is submitted without a signer.
	ErrNoPrivateKey = errors.New("no private key configured")

	ErrSignatureNotVisible = errors.New("signature not found after wait")
)

type executor struct {
	log                   *slog.Logger
	rpc                   RPCClient
	signer                *solana.PrivateKey
	clock                 clockwork.Clock
	commitment            solanarpc.CommitmentType
	waitForVisibleTimeout time.Duration
	pollInterval          time.Duration
}

type ExecutorOption func(*executor)

func WithWaitForVisibleTimeout(timeout time.Duration) ExecutorOption {
	return func(e *executor) {
		e.waitForVisibleTimeout = timeout
	}
}

func WithPollInterval(interval time.Duration) ExecutorOption {
	return func(e *executor) {
		e.pollInterval = interval
	}
}

// WithConfirmation sets the confirmation level the executor waits for
// before returning. Defaults to finalized.
func WithConfirmation(commitment solanarpc.CommitmentType) ExecutorOption {
	return func(e *executor) {
		e.commitment = commitment
	}
}

func WithExecutorClock(clock clockwork.Clock) ExecutorOption {
	return func(e *executor) {
		e.clock = clock
	}
}

func newExecutor(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, opts ...ExecutorOption) *executor {
	e := &executor{
		log:                   log,
		rpc:                   rpc,
		signer:                signer,
		clock:                 clockwork.NewRealClock(),
		commitment:            solanarpc.CommitmentFinalized,
		waitForVisibleTimeout: 3 * time.Second,
		pollInterval:          250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type ExecuteTransactionOptions struct {
	SkipPreflight bool
	// ExtraSigners sign alongside the fee payer, e.g. a separate payer or
	// delegate authority.
	ExtraSigners []solana.PrivateKey
}

func (e *executor) ExecuteTransactions(ctx context.Context, instructions []solana.Instruction, opts *ExecuteTransactionOptions) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if opts == nil {
		opts = &ExecuteTransactionOptions{}
	}
	if e.signer == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}

	blockhash, err := e.rpc.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash.Value.Blockhash,
		solana.TransactionPayer(e.signer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	signers := append([]solana.PrivateKey{*e.signer}, opts.ExtraSigners...)
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if key.Equals(signers[i].PublicKey()) {
				return &signers[i]
			}
		}
		return nil
	}); err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		SkipPreflight: opts.SkipPreflight,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	e.log.Debug("--> Transaction sent", "sig", sig, "instructions", len(instructions))

	if err := e.waitForSignatureVisible(ctx, sig); err != nil {
		return sig, nil, fmt.Errorf("transaction dropped or rejected before cluster saw it: %w", err)
	}

	res, err := e.waitForConfirmation(ctx, sig)
	if err != nil {
		return sig, nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return sig, res, nil
}

func (e *executor) waitForSignatureVisible(ctx context.Context, sig solana.Signature) error {
	deadline := e.clock.Now().Add(e.waitForVisibleTimeout)
	for e.clock.Now().Before(deadline) {
		resp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return err
		}
		if len(resp.Value) > 0 && resp.Value[0] != nil {
			if resp.Value[0].Err != nil {
				return fmt.Errorf("transaction failed: %v", resp.Value[0].Err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.clock.After(e.pollInterval):
		}
	}
	return ErrSignatureNotVisible
}

func reached(status solanarpc.ConfirmationStatusType, want solanarpc.CommitmentType) bool {
	switch want {
	case solanarpc.CommitmentProcessed:
		return status != ""
	case solanarpc.CommitmentConfirmed:
		return status == solanarpc.ConfirmationStatusConfirmed || status == solanarpc.ConfirmationStatusFinalized
	default:
		return status == solanarpc.ConfirmationStatusFinalized
	}
}

func (e *executor) waitForConfirmation(ctx context.Context, sig solana.Signature) (*solanarpc.GetTransactionResult, error) {
	e.log.Debug("--> Waiting for transaction confirmation", "sig", sig, "commitment", e.commitment)
	start := e.clock.Now()
	for {
		resp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return nil, err
		}
		if len(resp.Value) == 0 {
			return nil, errors.New("transaction not found")
		}
		if status := resp.Value[0]; status != nil && reached(status.ConfirmationStatus, e.commitment) {
			e.log.Debug("--> Transaction confirmed", "sig", sig, "duration", e.clock.Since(start))
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-e.clock.After(e.pollInterval):
		}
	}

	commitment := e.commitment
	if commitment == solanarpc.CommitmentProcessed {
		commitment = solanarpc.CommitmentConfirmed
	}
	tx, err := e.rpc.GetTransaction(ctx, sig, &solanarpc.GetTransactionOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: commitment,
	})
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.Meta == nil {
		return nil, errors.New("transaction not found or missing metadata after confirmation")
	}
	return tx, nil
}
