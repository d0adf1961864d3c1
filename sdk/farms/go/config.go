package farms

import "github.com/gagliardetto/solana-go"

// ProgramID is the farms program ID (same across all environments).
var ProgramID = solana.MustPublicKeyFromBase58("FarmsPZpWu9i7Kky8tPN37rs2TpmMrAZrC7S7vJa91Hr")

const (
	// DefaultBatchSize is the number of accounts requested per
	// getMultipleAccounts call.
	DefaultBatchSize = 100

	// DefaultMaxAttempts bounds retries of a single RPC read.
	DefaultMaxAttempts = 3

	defaultFetchConcurrency = 4
)
