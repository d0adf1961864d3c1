package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/farms/config"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/malbeclabs/farms/tools/solana/pkg/rpc"
	"github.com/spf13/cobra"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

const (
	flagEnv        = "env"
	flagRPCURL     = "rpc-url"
	flagRPCHeader  = "rpc-header"
	flagRPCTimeout = "rpc-timeout"
	flagProgramID  = "program-id"
	flagVerbose    = "verbose"
	flagKeypair    = "keypair"
)

// RPCFactory opens an RPC connection to url.
type RPCFactory func(url string, opts rpc.Options) farms.RPCClient

func defaultRPCFactory(url string, opts rpc.Options) farms.RPCClient {
	return rpc.New(url, opts)
}

func Run() ExitCode {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCmd(defaultRPCFactory).ExecuteContext(ctx); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

// NewRootCmd builds the farms-cli command tree. newRPC is called once per
// command invocation.
func NewRootCmd(newRPC RPCFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "farms-cli",
		Short:        "Inspect and operate on-chain reward farms.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringP(flagEnv, "e", config.EnvDevnet, "The network environment (mainnet-beta, devnet, localnet)")
	rootCmd.PersistentFlags().String(flagRPCURL, "", "Override the Solana RPC URL of the environment")
	rootCmd.PersistentFlags().StringArray(flagRPCHeader, nil, "Extra \"Name: value\" header sent with every RPC request, e.g. a provider API key (repeatable)")
	rootCmd.PersistentFlags().Duration(flagRPCTimeout, 0, "Timeout of a single RPC request (default 5m)")
	rootCmd.PersistentFlags().String(flagProgramID, "", "Override the farms program ID of the environment")
	rootCmd.PersistentFlags().BoolP(flagVerbose, "v", false, "set debug logging level")
	rootCmd.PersistentFlags().StringP(flagKeypair, "k", "", "Signer keypair: a solana-keygen JSON file or a base58 private key")

	rootCmd.AddCommand(
		NewFarmCmd(newRPC).Command(),
		NewUserCmd(newRPC).Command(),
		NewTxCmd(newRPC).Command(),
	)

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// session is the state shared by one command invocation.
type session struct {
	log     *slog.Logger
	network *config.NetworkConfig
	client  *farms.Client
}

func newSession(cmd *cobra.Command, newRPC RPCFactory, needSigner bool) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	verbose, err := flags.GetBool(flagVerbose)
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	env, err := flags.GetString(flagEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to get env flag: %w", err)
	}
	rpcURL, err := flags.GetString(flagRPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get rpc-url flag: %w", err)
	}
	rawHeaders, err := flags.GetStringArray(flagRPCHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to get rpc-header flag: %w", err)
	}
	rpcTimeout, err := flags.GetDuration(flagRPCTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to get rpc-timeout flag: %w", err)
	}
	programID, err := flags.GetString(flagProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get program-id flag: %w", err)
	}
	keypair, err := flags.GetString(flagKeypair)
	if err != nil {
		return nil, fmt.Errorf("failed to get keypair flag: %w", err)
	}

	log := newLogger(cmd.ErrOrStderr(), verbose)

	network, err := config.NetworkConfigForEnv(env)
	if err != nil {
		return nil, err
	}
	if rpcURL != "" {
		network.SolanaRPCURL = rpcURL
	}
	if programID != "" {
		network.ProgramID, err = solana.PublicKeyFromBase58(programID)
		if err != nil {
			return nil, fmt.Errorf("invalid program ID %q: %w", programID, err)
		}
	}

	headers, err := rpc.ParseHeaders(rawHeaders)
	if err != nil {
		return nil, err
	}

	var opts []farms.Option
	if needSigner {
		if keypair == "" {
			return nil, fmt.Errorf("--%s is required for transactions", flagKeypair)
		}
		signer, err := loadKeypair(keypair)
		if err != nil {
			return nil, err
		}
		opts = append(opts, farms.WithSigner(&signer))
	}

	log.Debug("Connecting", "env", network.Moniker, "rpc", network.SolanaRPCURL, "program", network.ProgramID)
	rpcClient := newRPC(network.SolanaRPCURL, rpc.Options{Headers: headers, Timeout: rpcTimeout})
	client, err := farms.New(log, rpcClient, network.ProgramID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create farms client: %w", err)
	}

	return &session{log: log, network: network, client: client}, nil
}

func parsePubkeyArg(name, raw string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return key, nil
}
