package config

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"

	// EnvVarSolanaRPCURL overrides the RPC URL of any environment.
	EnvVarSolanaRPCURL = "FARMS_SOLANA_RPC_URL"
	// EnvVarProgramID overrides the farms program ID of any environment.
	EnvVarProgramID = "FARMS_PROGRAM_ID"
)

var (
	ErrInvalidEnvironment = fmt.Errorf("invalid environment")
)

type NetworkConfig struct {
	Moniker      string
	SolanaRPCURL string
	ProgramID    solana.PublicKey
}

func NetworkConfigForEnv(env string) (*NetworkConfig, error) {
	var config *NetworkConfig
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		config = &NetworkConfig{
			Moniker:      EnvMainnetBeta,
			SolanaRPCURL: MainnetSolanaRPCURL,
		}
	case EnvDevnet:
		config = &NetworkConfig{
			Moniker:      EnvDevnet,
			SolanaRPCURL: DevnetSolanaRPCURL,
		}
	case EnvLocalnet:
		config = &NetworkConfig{
			Moniker:      EnvLocalnet,
			SolanaRPCURL: LocalnetSolanaRPCURL,
		}
	default:
		// localnet is left out of the message on purpose.
		return nil, fmt.Errorf("%w %q, must be one of: %s, %s", ErrInvalidEnvironment, env, EnvMainnetBeta, EnvDevnet)
	}

	programID, err := solana.PublicKeyFromBase58(FarmsProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse farms program ID: %w", err)
	}
	config.ProgramID = programID

	if rpcURL := os.Getenv(EnvVarSolanaRPCURL); rpcURL != "" {
		config.SolanaRPCURL = rpcURL
	}
	if raw := os.Getenv(EnvVarProgramID); raw != "" {
		programID, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", EnvVarProgramID, err)
		}
		config.ProgramID = programID
	}

	return config, nil
}
