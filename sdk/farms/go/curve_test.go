package farms_test

import (
	"testing"

	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/stretchr/testify/require"
)

func TestSDK_Farms_Curve_StepFunction(t *testing.T) {
	t.Parallel()

	curve, err := farms.NewRewardScheduleCurve(
		farms.RewardPerTimeUnitPoint{TsStart: 0, RewardPerTimeUnit: 10},
		farms.RewardPerTimeUnitPoint{TsStart: 100, RewardPerTimeUnit: 20},
		farms.RewardPerTimeUnitPoint{TsStart: 200, RewardPerTimeUnit: 30},
	)
	require.NoError(t, err)

	for _, tc := range []struct {
		ts   uint64
		want uint64
	}{
		{0, 10},
		{99, 10},
		{100, 20},
		{150, 20},
		{200, 30},
		{1_000_000, 30},
	} {
		require.Equal(t, tc.want, curve.RateAt(tc.ts), "ts=%d", tc.ts)
	}

	require.Len(t, curve.ActivePoints(), 3)
	require.Equal(t, uint64(farms.CurveSentinelTsStart), curve.Points[3].TsStart)
}

func TestSDK_Farms_Curve_BeforeFirstPointUsesFirstRate(t *testing.T) {
	t.Parallel()

	curve, err := farms.NewRewardScheduleCurve(
		farms.RewardPerTimeUnitPoint{TsStart: 50, RewardPerTimeUnit: 5},
		farms.RewardPerTimeUnitPoint{TsStart: 80, RewardPerTimeUnit: 9},
	)
	require.NoError(t, err)
	require.Equal(t, uint64(5), curve.RateAt(10))
}

func TestSDK_Farms_Curve_RateIsMonotonicInTime(t *testing.T) {
	t.Parallel()

	curve, err := farms.NewRewardScheduleCurve(
		farms.RewardPerTimeUnitPoint{TsStart: 0, RewardPerTimeUnit: 1},
		farms.RewardPerTimeUnitPoint{TsStart: 10, RewardPerTimeUnit: 2},
		farms.RewardPerTimeUnitPoint{TsStart: 20, RewardPerTimeUnit: 3},
		farms.RewardPerTimeUnitPoint{TsStart: 30, RewardPerTimeUnit: 4},
	)
	require.NoError(t, err)

	prev := curve.RateAt(0)
	for ts := uint64(1); ts < 50; ts++ {
		rate := curve.RateAt(ts)
		require.GreaterOrEqual(t, rate, prev)
		prev = rate
	}
}

func TestSDK_Farms_Curve_BuilderValidation(t *testing.T) {
	t.Parallel()

	_, err := farms.NewRewardScheduleCurve()
	require.ErrorIs(t, err, farms.ErrEmptyRewardSchedule)

	_, err = farms.NewRewardScheduleCurve(
		farms.RewardPerTimeUnitPoint{TsStart: 10},
		farms.RewardPerTimeUnitPoint{TsStart: 10},
	)
	require.ErrorIs(t, err, farms.ErrCurveNotAscending)

	points := make([]farms.RewardPerTimeUnitPoint, farms.MaxCurvePoints+1)
	for i := range points {
		points[i].TsStart = uint64(i)
	}
	_, err = farms.NewRewardScheduleCurve(points...)
	require.ErrorIs(t, err, farms.ErrTooManyCurvePoints)

	_, err = farms.NewRewardScheduleCurve(points[:farms.MaxCurvePoints]...)
	require.NoError(t, err)
}

func TestSDK_Farms_Curve_RateDecimals(t *testing.T) {
	t.Parallel()

	curve, err := farms.NewRewardScheduleCurve(farms.RewardPerTimeUnitPoint{TsStart: 0, RewardPerTimeUnit: 150})
	require.NoError(t, err)
	reward := &farms.RewardInfo{RewardScheduleCurve: curve, RewardsPerSecondDecimals: 2}
	requireDecimal(t, "1.5", farms.CurrentRewardPerTimeUnit(reward, 10))
}
