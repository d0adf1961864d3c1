package farms_test

import (
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSDK_Farms_Issuance_ProportionalLinearAndCapped(t *testing.T) {
	t.Parallel()

	farm := proportionalFarm(1000, 1_000_000)

	issued, err := farms.NewRewardToBeIssued(farm, 0, 500, nil)
	require.NoError(t, err)
	requireDecimal(t, "500000", issued)

	issued, err = farms.NewRewardToBeIssued(farm, 0, 2000, nil)
	require.NoError(t, err)
	requireDecimal(t, "1000000", issued)

	issued, err = farms.NewRewardToBeIssued(farm, 0, 0, nil)
	require.NoError(t, err)
	requireDecimal(t, "0", issued)
}

func TestSDK_Farms_Issuance_SinceLastIssuance(t *testing.T) {
	t.Parallel()

	farm := proportionalFarm(1000, 1_000_000)
	farm.RewardInfos[0].LastIssuanceTs = 300

	issued, err := farms.NewRewardToBeIssued(farm, 0, 500, nil)
	require.NoError(t, err)
	requireDecimal(t, "200000", issued)

	_, err = farms.NewRewardToBeIssued(farm, 0, 299, nil)
	require.ErrorIs(t, err, farms.ErrTimestampBeforeIssuance)
}

func TestSDK_Farms_Issuance_ConstantScalesWithTotalStaked(t *testing.T) {
	t.Parallel()

	proportional := proportionalFarm(1000, 10_000_000)

	constant := proportionalFarm(100, 10_000_000)
	constant.RewardInfos[0].RewardType = farms.RewardTypeConstant
	constant.TotalStakedAmount = 10

	want, err := farms.NewRewardToBeIssued(proportional, 0, 500, nil)
	require.NoError(t, err)
	got, err := farms.NewRewardToBeIssued(constant, 0, 500, nil)
	require.NoError(t, err)
	require.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func TestSDK_Farms_Issuance_OraclePrice(t *testing.T) {
	t.Parallel()

	farm := proportionalFarm(1000, 5_000_000)
	farm.ScopePrices = solana.NewWallet().PublicKey()

	_, err := farms.NewRewardToBeIssued(farm, 0, 500, nil)
	require.ErrorIs(t, err, farms.ErrMissingOraclePrice)

	price := decimal.NewFromInt(2)
	issued, err := farms.NewRewardToBeIssued(farm, 0, 500, &price)
	require.NoError(t, err)
	requireDecimal(t, "1000000", issued)
}

func TestSDK_Farms_Issuance_RateDecimals(t *testing.T) {
	t.Parallel()

	farm := proportionalFarm(1500, 1_000_000)
	farm.RewardInfos[0].RewardsPerSecondDecimals = 3

	issued, err := farms.NewRewardToBeIssued(farm, 0, 10, nil)
	require.NoError(t, err)
	requireDecimal(t, "15", issued)
}

func TestSDK_Farms_Issuance_RewardIndexOutOfRange(t *testing.T) {
	t.Parallel()

	farm := proportionalFarm(1000, 1_000_000)
	_, err := farms.NewRewardToBeIssued(farm, farms.MaxRewardsTokens, 10, nil)
	require.ErrorIs(t, err, farms.ErrRewardIndexOutOfRange)
	_, err = farms.NewRewardToBeIssued(farm, -1, 10, nil)
	require.ErrorIs(t, err, farms.ErrRewardIndexOutOfRange)
}

func TestSDK_Farms_Issuance_RewardsPerSecondAndRunway(t *testing.T) {
	t.Parallel()

	farm := proportionalFarm(1000, 1_000_000)

	rates := farms.RewardsPerSecond(farm, 10)
	require.Len(t, rates, 1)
	requireDecimal(t, "1000", rates[0])

	runway, ok, err := farms.IssuanceRunway(farm, 0, 10, nil)
	require.NoError(t, err)
	require.True(t, ok)
	requireDecimal(t, "1000", runway)

	idle := proportionalFarm(0, 1_000_000)
	_, ok, err = farms.IssuanceRunway(idle, 0, 10, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSDK_Farms_Issuance_RunwayWithOraclePrice(t *testing.T) {
	t.Parallel()

	farm := proportionalFarm(1000, 1_000_000)
	farm.ScopePrices = solana.NewWallet().PublicKey()

	_, _, err := farms.IssuanceRunway(farm, 0, 10, nil)
	require.ErrorIs(t, err, farms.ErrMissingOraclePrice)

	price := decimal.NewFromInt(4)
	issued, err := farms.NewRewardToBeIssued(farm, 0, 100, &price)
	require.NoError(t, err)
	requireDecimal(t, "400000", issued)

	runway, ok, err := farms.IssuanceRunway(farm, 0, 100, &price)
	require.NoError(t, err)
	require.True(t, ok)
	requireDecimal(t, "250", runway)
}

func TestSDK_Farms_Issuance_CapWithExtremeValues(t *testing.T) {
	t.Parallel()

	farm := proportionalFarm(math.MaxUint64, 1_000_000)

	issued, err := farms.NewRewardToBeIssued(farm, 0, math.MaxUint64, nil)
	require.NoError(t, err)
	requireDecimal(t, "1000000", issued)

	constant := proportionalFarm(math.MaxUint64, math.MaxUint64)
	constant.RewardInfos[0].RewardType = farms.RewardTypeConstant
	constant.TotalStakedAmount = math.MaxUint64
	issued, err = farms.NewRewardToBeIssued(constant, 0, math.MaxUint64, nil)
	require.NoError(t, err)
	require.True(t, farms.Uint64ToDecimal(math.MaxUint64).Equal(issued), "got %s", issued)
}
