package cli_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/malbeclabs/farms/tools/farms/internal/cli"
	"github.com/malbeclabs/farms/tools/solana/pkg/rpc"
	"github.com/stretchr/testify/require"
)

type mockRPCClient struct {
	farms.RPCClient

	GetAccountInfoFunc             func(context.Context, solana.PublicKey) (*solanarpc.GetAccountInfoResult, error)
	GetProgramAccountsWithOptsFunc func(context.Context, solana.PublicKey, *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error)
	GetSlotFunc                    func(context.Context, solanarpc.CommitmentType) (uint64, error)
	GetBlockTimeFunc               func(context.Context, uint64) (*solana.UnixTimeSeconds, error)
}

func (m *mockRPCClient) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	return m.GetAccountInfoFunc(ctx, account)
}

func (m *mockRPCClient) GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error) {
	return m.GetProgramAccountsWithOptsFunc(ctx, programID, opts)
}

func (m *mockRPCClient) GetSlot(ctx context.Context, commitment solanarpc.CommitmentType) (uint64, error) {
	return m.GetSlotFunc(ctx, commitment)
}

func (m *mockRPCClient) GetBlockTime(ctx context.Context, block uint64) (*solana.UnixTimeSeconds, error) {
	return m.GetBlockTimeFunc(ctx, block)
}

func encodeFarm(t *testing.T, f *farms.FarmState) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, f.Serialize(buf))
	return buf.Bytes()
}

func farmAccount(t *testing.T, f *farms.FarmState) *solanarpc.GetAccountInfoResult {
	t.Helper()
	return &solanarpc.GetAccountInfoResult{
		Value: &solanarpc.Account{Owner: farms.ProgramID, Data: solanarpc.DataBytesOrJSONFromBytes(encodeFarm(t, f))},
	}
}

// testFarm stakes a 6-decimal token and pays one proportional reward.
func testFarm(t *testing.T) *farms.FarmState {
	t.Helper()
	f := &farms.FarmState{}
	f.FarmAdmin = solana.NewWallet().PublicKey()
	f.Token.Mint = solana.NewWallet().PublicKey()
	f.Token.Decimals = 6
	f.TotalStakedAmount = 2_500_000
	f.NumUsers = 3
	f.NumRewardTokens = 1
	r := &f.RewardInfos[0]
	r.Token.Mint = solana.NewWallet().PublicKey()
	r.Token.Decimals = 6
	r.RewardsAvailable = 1_000_000
	curve, err := farms.NewRewardScheduleCurve(
		farms.RewardPerTimeUnitPoint{TsStart: 0, RewardPerTimeUnit: 10},
		farms.RewardPerTimeUnitPoint{TsStart: 1_000, RewardPerTimeUnit: 20},
	)
	require.NoError(t, err)
	r.RewardScheduleCurve = curve
	return f
}

// execute runs the CLI against client on localnet and returns stdout.
func execute(t *testing.T, client farms.RPCClient, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithOptions(t, client, args...)
	return out, err
}

// executeWithOptions also returns the RPC options the command connected with.
func executeWithOptions(t *testing.T, client farms.RPCClient, args ...string) (string, rpc.Options, error) {
	t.Helper()
	var (
		gotURL  string
		gotOpts rpc.Options
	)
	root := cli.NewRootCmd(func(url string, opts rpc.Options) farms.RPCClient {
		gotURL, gotOpts = url, opts
		return client
	})
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(append([]string{"--env", "localnet", "--rpc-url", "http://rpc.test"}, args...))
	err := root.ExecuteContext(t.Context())
	if gotURL != "" {
		require.Equal(t, "http://rpc.test", gotURL)
	}
	return out.String(), gotOpts, err
}
