package farms

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrTimestampBeforeIssuance = errors.New("timestamp is before the last issuance")
	ErrMissingOraclePrice      = errors.New("oracle price required but not provided")
	ErrRewardIndexOutOfRange   = errors.New("reward index out of range")
	ErrOraclePriceIDOutOfRange = errors.New("oracle price id out of range")
)

func rewardInfoAt(farm *FarmState, rewardIndex int) (*RewardInfo, error) {
	if rewardIndex < 0 || rewardIndex >= MaxRewardsTokens {
		return nil, fmt.Errorf("%w: %d", ErrRewardIndexOutOfRange, rewardIndex)
	}
	return &farm.RewardInfos[rewardIndex], nil
}

// NewRewardToBeIssued returns the amount, in reward base units, the farm
// would issue for the given slot between its last issuance and ts. The
// result never exceeds the slot's available rewards. price must be set when
// the farm is priced by an oracle.
func NewRewardToBeIssued(farm *FarmState, rewardIndex int, ts uint64, price *decimal.Decimal) (decimal.Decimal, error) {
	reward, err := rewardInfoAt(farm, rewardIndex)
	if err != nil {
		return decimal.Zero, err
	}
	if ts < reward.LastIssuanceTs {
		return decimal.Zero, fmt.Errorf("%w: ts=%d lastIssuanceTs=%d", ErrTimestampBeforeIssuance, ts, reward.LastIssuanceTs)
	}

	elapsed := Uint64ToDecimal(ts - reward.LastIssuanceTs)
	issued := elapsed.Mul(CurrentRewardPerTimeUnit(reward, ts))

	if reward.RewardType == RewardTypeConstant {
		// Rate is per staked base unit.
		issued = issued.Mul(Uint64ToDecimal(farm.TotalStakedAmount))
	}

	if farm.HasOracle() {
		if price == nil {
			return decimal.Zero, ErrMissingOraclePrice
		}
		issued = issued.Mul(*price)
	}

	return decimal.Min(issued, Uint64ToDecimal(reward.RewardsAvailable)), nil
}

// RewardsPerSecond returns the current per-time-unit rate of every
// initialized reward slot, keyed by slot index.
func RewardsPerSecond(farm *FarmState, ts uint64) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal)
	for i := range farm.RewardInfos {
		r := &farm.RewardInfos[i]
		if !r.IsInitialized() {
			continue
		}
		out[i] = CurrentRewardPerTimeUnit(r, ts)
	}
	return out
}

// IssuanceRunway returns how many time units the slot can keep issuing at
// its current rate before rewardsAvailable is exhausted. ok is false when
// the rate is zero. Like NewRewardToBeIssued, price must be set when the
// farm is priced by an oracle.
func IssuanceRunway(farm *FarmState, rewardIndex int, ts uint64, price *decimal.Decimal) (runway decimal.Decimal, ok bool, err error) {
	reward, err := rewardInfoAt(farm, rewardIndex)
	if err != nil {
		return decimal.Zero, false, err
	}
	rate := CurrentRewardPerTimeUnit(reward, ts)
	if reward.RewardType == RewardTypeConstant {
		rate = rate.Mul(Uint64ToDecimal(farm.TotalStakedAmount))
	}
	if farm.HasOracle() {
		if price == nil {
			return decimal.Zero, false, ErrMissingOraclePrice
		}
		rate = rate.Mul(*price)
	}
	if rate.IsZero() {
		return decimal.Zero, false, nil
	}
	return quo(Uint64ToDecimal(reward.RewardsAvailable), rate), true, nil
}
