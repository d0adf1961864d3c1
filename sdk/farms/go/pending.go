package farms

import (
	"github.com/shopspring/decimal"
)

// RewardPerStake returns the slot's reward-per-share accumulator, unscaled,
// advanced to ts. An empty pool accrues nothing.
func RewardPerStake(farm *FarmState, rewardIndex int, ts uint64, price *decimal.Decimal) (decimal.Decimal, error) {
	issued, err := NewRewardToBeIssued(farm, rewardIndex, ts, price)
	if err != nil {
		return decimal.Zero, err
	}
	reward := &farm.RewardInfos[rewardIndex]
	current := UnscaleWadUint128(reward.RewardPerShareScaled)

	total := Uint128ToDecimal(farm.TotalActiveStakeScaled)
	if total.IsZero() || !issued.IsPositive() {
		return current, nil
	}

	added := quo(ScaleWad(issued), total)
	if farm.IsDelegated() {
		// Delegated stake is raw, so the scaled quotient carries one WAD too many.
		added = UnscaleWad(added)
	}
	return current.Add(added), nil
}

// UserActiveStake returns the user's active stake in the unit the farm's
// reward-per-share accumulator is expressed in.
func UserActiveStake(farm *FarmState, user *UserState) decimal.Decimal {
	if farm.IsDelegated() {
		return Uint128ToDecimal(user.ActiveStakeScaled)
	}
	return UnscaleWadUint128(user.ActiveStakeScaled)
}

// PendingRewards returns the rewards the user could claim from the slot at
// ts, in reward base units. It does not mutate either state.
func PendingRewards(farm *FarmState, user *UserState, rewardIndex int, ts uint64, price *decimal.Decimal) (decimal.Decimal, error) {
	rewardPerStake, err := RewardPerStake(farm, rewardIndex, ts, price)
	if err != nil {
		return decimal.Zero, err
	}
	tally := UnscaleWadUint128(user.RewardsTallyScaled[rewardIndex])
	delta := UserActiveStake(farm, user).Mul(rewardPerStake).Sub(tally).Truncate(0)
	if delta.IsNegative() {
		delta = decimal.Zero
	}
	return Uint64ToDecimal(user.RewardsIssuedUnclaimed[rewardIndex]).Add(delta), nil
}

// ScopePriceForFarm resolves the oracle price configured for the farm. It
// returns nil when the farm is not priced by an oracle.
func ScopePriceForFarm(farm *FarmState, prices *OraclePrices) (*decimal.Decimal, error) {
	if !farm.HasOracle() {
		return nil, nil
	}
	if prices == nil {
		return nil, ErrMissingOraclePrice
	}
	if farm.ScopeOraclePriceID >= MaxOraclePriceFeeds {
		return nil, ErrOraclePriceIDOutOfRange
	}
	p := prices.Prices[farm.ScopeOraclePriceID].Price
	price := Uint64ToDecimal(p.Value).Shift(-int32(p.Exp))
	return &price, nil
}
