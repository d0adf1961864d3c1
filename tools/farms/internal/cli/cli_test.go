package cli_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/farms/config"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/malbeclabs/farms/tools/farms/internal/cli"
	"github.com/malbeclabs/farms/tools/solana/pkg/rpc"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTools_Farms_CLI_FarmShow(t *testing.T) {
	t.Parallel()

	farmKey := solana.NewWallet().PublicKey()
	farm := testFarm(t)
	client := &mockRPCClient{
		GetAccountInfoFunc: func(_ context.Context, key solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			require.Equal(t, farmKey, key)
			return farmAccount(t, farm), nil
		},
	}

	out, err := execute(t, client, "farm", "show", farmKey.String())
	require.NoError(t, err)
	require.Contains(t, out, farmKey.String())
	require.Contains(t, out, farm.Token.Mint.String())
	require.Contains(t, out, "2.5")
	require.Contains(t, out, "seconds")
}

func TestTools_Farms_CLI_FarmListByMint(t *testing.T) {
	t.Parallel()

	farm := testFarm(t)
	keys := []solana.PublicKey{solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()}
	client := &mockRPCClient{
		GetProgramAccountsWithOptsFunc: func(_ context.Context, programID solana.PublicKey, opts *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error) {
			require.Equal(t, farms.ProgramID, programID)
			var sawMint bool
			for _, f := range opts.Filters {
				if f.Memcmp != nil && f.Memcmp.Offset == farms.OffsetFarmTokenMint {
					require.Equal(t, solana.Base58(farm.Token.Mint.Bytes()), f.Memcmp.Bytes)
					sawMint = true
				}
			}
			require.True(t, sawMint)
			data := encodeFarm(t, farm)
			var res solanarpc.GetProgramAccountsResult
			for _, k := range keys {
				res = append(res, &solanarpc.KeyedAccount{
					Pubkey:  k,
					Account: &solanarpc.Account{Data: solanarpc.DataBytesOrJSONFromBytes(data)},
				})
			}
			return res, nil
		},
	}

	out, err := execute(t, client, "farm", "list", "--mint", farm.Token.Mint.String())
	require.NoError(t, err)
	first, second := keys[0].String(), keys[1].String()
	if second < first {
		first, second = second, first
	}
	require.Less(t, strings.Index(out, first), strings.Index(out, second))
}

func TestTools_Farms_CLI_FarmRewards(t *testing.T) {
	t.Parallel()

	farmKey := solana.NewWallet().PublicKey()
	farm := testFarm(t)
	client := &mockRPCClient{
		GetAccountInfoFunc: func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			return farmAccount(t, farm), nil
		},
		GetSlotFunc: func(context.Context, solanarpc.CommitmentType) (uint64, error) {
			return 99, nil
		},
		GetBlockTimeFunc: func(context.Context, uint64) (*solana.UnixTimeSeconds, error) {
			bt := solana.UnixTimeSeconds(1_500)
			return &bt, nil
		},
	}

	out, err := execute(t, client, "farm", "rewards", farmKey.String())
	require.NoError(t, err)
	require.Contains(t, out, farm.RewardInfos[0].Token.Mint.String())
	require.Contains(t, out, "proportional")
	// 1_000_000 available at 20 per second.
	require.Contains(t, out, "50000 seconds")
}

func TestTools_Farms_CLI_FarmExportConfig(t *testing.T) {
	t.Parallel()

	farmKey := solana.NewWallet().PublicKey()
	farm := testFarm(t)
	farm.LockingMode = farms.LockingModeWithExpiry
	farm.LockingDuration = 3600
	client := &mockRPCClient{
		GetAccountInfoFunc: func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			return farmAccount(t, farm), nil
		},
	}

	out, err := execute(t, client, "farm", "export-config", farmKey.String())
	require.NoError(t, err)

	var got cli.FarmConfigExport
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Equal(t, cli.NewFarmConfigExport(farmKey, farm), got)
	require.Equal(t, "with_expiry", got.LockingMode)
	require.Len(t, got.Rewards, 1)
	require.Equal(t, []cli.CurvePointExport{{TsStart: 0, Rate: 10}, {TsStart: 1_000, Rate: 20}}, got.Rewards[0].Curve)
	require.Empty(t, got.ScopePrices)
}

func TestTools_Farms_CLI_UserLockupWithoutLocking(t *testing.T) {
	t.Parallel()

	farm := testFarm(t)
	client := &mockRPCClient{
		GetAccountInfoFunc: func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			return farmAccount(t, farm), nil
		},
	}

	out, err := execute(t, client, "user", "lockup", solana.NewWallet().PublicKey().String(), solana.NewWallet().PublicKey().String())
	require.NoError(t, err)
	require.Contains(t, out, "Remaining")
	require.Contains(t, out, "0s")
}

func TestTools_Farms_CLI_UserFarmsNoPositions(t *testing.T) {
	t.Parallel()

	client := &mockRPCClient{
		GetProgramAccountsWithOptsFunc: func(context.Context, solana.PublicKey, *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error) {
			return nil, nil
		},
		GetSlotFunc: func(context.Context, solanarpc.CommitmentType) (uint64, error) {
			return 1, nil
		},
		GetBlockTimeFunc: func(context.Context, uint64) (*solana.UnixTimeSeconds, error) {
			bt := solana.UnixTimeSeconds(1)
			return &bt, nil
		},
	}

	out, err := execute(t, client, "user", "farms", solana.NewWallet().PublicKey().String())
	require.NoError(t, err)
	require.Contains(t, out, "Active stake")
}

func TestTools_Farms_CLI_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"tx without keypair", []string{"tx", "refresh-farm", solana.NewWallet().PublicKey().String()}, "--keypair is required"},
		{"bad farm key", []string{"farm", "show", "not-a-key"}, "invalid farm"},
		{"missing args", []string{"user", "pending", solana.NewWallet().PublicKey().String()}, "accepts 2 arg(s)"},
		{"bad program id", []string{"--program-id", "zzz", "farm", "show", solana.NewWallet().PublicKey().String()}, "invalid program ID"},
		{"bad rpc header", []string{"--rpc-header", "no-separator", "farm", "show", solana.NewWallet().PublicKey().String()}, "invalid header"},
		{"bad keypair", []string{"--keypair", "nope", "tx", "init-user", solana.NewWallet().PublicKey().String()}, cli.ErrInvalidKeypair.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, &mockRPCClient{}, tt.args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTools_Farms_CLI_InvalidEnvironment(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd(func(string, rpc.Options) farms.RPCClient { return &mockRPCClient{} })
	root.SetOut(new(strings.Builder))
	root.SetErr(new(strings.Builder))
	root.SetArgs([]string{"--env", "moonnet", "farm", "show", solana.NewWallet().PublicKey().String()})
	err := root.ExecuteContext(t.Context())
	require.True(t, errors.Is(err, config.ErrInvalidEnvironment), err)
}

func TestTools_Farms_CLI_RPCOptions(t *testing.T) {
	t.Parallel()

	farm := testFarm(t)
	client := &mockRPCClient{
		GetAccountInfoFunc: func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
			return farmAccount(t, farm), nil
		},
	}

	_, opts, err := executeWithOptions(t, client,
		"--rpc-header", "x-api-key: secret",
		"--rpc-header", "X-Client:farms-cli",
		"--rpc-timeout", "30s",
		"farm", "show", solana.NewWallet().PublicKey().String(),
	)
	require.NoError(t, err)
	require.Equal(t, rpc.Options{
		Headers: map[string]string{"X-Api-Key": "secret", "X-Client": "farms-cli"},
		Timeout: 30 * time.Second,
	}, opts)
}
