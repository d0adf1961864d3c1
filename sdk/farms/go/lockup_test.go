package farms_test

import (
	"math"
	"testing"

	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/stretchr/testify/require"
)

func TestSDK_Farms_Lockup_WithExpiry(t *testing.T) {
	t.Parallel()

	farm := &farms.FarmState{
		LockingMode:           farms.LockingModeWithExpiry,
		LockingStartTimestamp: 1000,
		LockingDuration:       100,
	}

	tests := []struct {
		name          string
		now           uint64
		wantRemaining uint64
	}{
		{name: "before_start", now: 999, wantRemaining: 0},
		{name: "at_start", now: 1000, wantRemaining: 100},
		{name: "last_locked_second", now: 1099, wantRemaining: 1},
		{name: "at_maturity", now: 1100, wantRemaining: 0},
		{name: "after_maturity", now: 5000, wantRemaining: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := farms.LockupDurationAndExpiry(farm, nil, tt.now)
			require.NoError(t, err)
			require.Equal(t, farms.Lockup{
				RemainingDuration: tt.wantRemaining,
				OriginalDuration:  100,
				Expiry:            1100,
			}, got)
		})
	}
}

func TestSDK_Farms_Lockup_Continuous(t *testing.T) {
	t.Parallel()

	farm := &farms.FarmState{
		LockingMode:                      farms.LockingModeContinuous,
		LockingDuration:                  100,
		LockingEarlyWithdrawalPenaltyBps: farms.BpsDenominator,
	}

	tests := []struct {
		name string
		user *farms.UserState
		now  uint64
		want farms.Lockup
	}{
		{name: "mid_lock", user: &farms.UserState{LastStakeTs: 500}, now: 550, want: farms.Lockup{RemainingDuration: 50, OriginalDuration: 100, Expiry: 600}},
		{name: "staked_now", user: &farms.UserState{LastStakeTs: 550}, now: 550, want: farms.Lockup{RemainingDuration: 100, OriginalDuration: 100, Expiry: 650}},
		{name: "at_maturity", user: &farms.UserState{LastStakeTs: 500}, now: 600, want: farms.Lockup{RemainingDuration: 0, OriginalDuration: 100, Expiry: 600}},
		{name: "no_user_state", user: nil, now: 550, want: farms.Lockup{RemainingDuration: 100, OriginalDuration: 100, Expiry: 650}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := farms.LockupDurationAndExpiry(farm, tt.user, tt.now)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSDK_Farms_Lockup_SaturatesUnboundedDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		farm *farms.FarmState
		user *farms.UserState
	}{
		{
			name: "with_expiry",
			farm: &farms.FarmState{LockingMode: farms.LockingModeWithExpiry, LockingStartTimestamp: 1000, LockingDuration: math.MaxUint64},
		},
		{
			name: "continuous",
			farm: &farms.FarmState{LockingMode: farms.LockingModeContinuous, LockingDuration: math.MaxUint64},
			user: &farms.UserState{LastStakeTs: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := farms.LockupDurationAndExpiry(tt.farm, tt.user, 2000)
			require.NoError(t, err)
			require.Equal(t, farms.Lockup{
				RemainingDuration: math.MaxUint64 - 2000,
				OriginalDuration:  math.MaxUint64,
				Expiry:            math.MaxUint64,
			}, got)
		})
	}
}

func TestSDK_Farms_Lockup_None(t *testing.T) {
	t.Parallel()

	farm := &farms.FarmState{LockingMode: farms.LockingModeNone, LockingDuration: 100}
	got, err := farms.LockupDurationAndExpiry(farm, &farms.UserState{LastStakeTs: 10}, 20)
	require.NoError(t, err)
	require.Equal(t, farms.Lockup{}, got)
}

func TestSDK_Farms_Lockup_Errors(t *testing.T) {
	t.Parallel()

	_, err := farms.LockupDurationAndExpiry(&farms.FarmState{
		LockingMode:                      farms.LockingModeWithExpiry,
		LockingEarlyWithdrawalPenaltyBps: 5000,
	}, nil, 0)
	require.ErrorIs(t, err, farms.ErrUnsupportedEarlyWithdrawalPenalty)

	_, err = farms.LockupDurationAndExpiry(&farms.FarmState{LockingMode: 7}, nil, 0)
	require.ErrorIs(t, err, farms.ErrInvalidLockingMode)
}
