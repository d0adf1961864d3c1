package farms

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

var ErrDuplicateDelegatee = errors.New("delegatee appears more than once for farm")

// UserFarm is an owner's combined position in one farm across all of its
// delegatees.
type UserFarm struct {
	UserStateAddress  solana.PublicKey
	Farm              solana.PublicKey
	StakedToken       solana.PublicKey
	StrategyID        solana.PublicKey
	DelegateAuthority solana.PublicKey

	ActiveStakeByDelegatee              map[solana.PublicKey]decimal.Decimal
	PendingDepositStakeByDelegatee      map[solana.PublicKey]decimal.Decimal
	PendingWithdrawalUnstakeByDelegatee map[solana.PublicKey]decimal.Decimal

	PendingRewards []PendingReward
}

// TotalActiveStake sums the active stake of every delegatee.
func (u *UserFarm) TotalActiveStake() decimal.Decimal {
	total := decimal.Zero
	for _, v := range u.ActiveStakeByDelegatee {
		total = total.Add(v)
	}
	return total
}

type PendingReward struct {
	RewardIndex               int
	RewardTokenMint           solana.PublicKey
	RewardTokenProgramID      solana.PublicKey
	RewardType                RewardType
	CumulatedPendingRewards   decimal.Decimal
	PendingRewardsByDelegatee map[solana.PublicKey]decimal.Decimal
}

// StrategyFilter restricts aggregation to farms whose strategy id is in the
// set. A nil filter allows every farm.
type StrategyFilter map[solana.PublicKey]struct{}

func NewStrategyFilter(ids ...solana.PublicKey) StrategyFilter {
	f := make(StrategyFilter, len(ids))
	for _, id := range ids {
		f[id] = struct{}{}
	}
	return f
}

func (f StrategyFilter) Allows(strategyID solana.PublicKey) bool {
	if f == nil {
		return true
	}
	_, ok := f[strategyID]
	return ok
}

// TimeSnapshot is the chain clock at the moment positions are evaluated.
type TimeSnapshot struct {
	UnixTimestamp uint64
	Slot          uint64
}

// For returns the current time in the farm's time unit.
func (t TimeSnapshot) For(farm *FarmState) uint64 {
	if farm.TimeUnit == TimeUnitSlots {
		return t.Slot
	}
	return t.UnixTimestamp
}

// PriceBook holds decoded oracle price accounts keyed by account address.
type PriceBook map[solana.PublicKey]*OraclePrices

// PriceFor resolves the oracle price used by the farm.
func (p PriceBook) PriceFor(farm *FarmState) (*decimal.Decimal, error) {
	if !farm.HasOracle() {
		return nil, nil
	}
	price, err := ScopePriceForFarm(farm, p[farm.ScopePrices])
	if err != nil {
		return nil, fmt.Errorf("oracle %s: %w", farm.ScopePrices, err)
	}
	return price, nil
}

type userFarmBuilder struct {
	farm     *UserFarm
	nonEmpty bool
}

// AggregateUserFarms groups an owner's user states by farm. Farms where every
// delegatee has no stake and no pending rewards are omitted. User states
// whose farm is absent from farms, or filtered out, are skipped.
func AggregateUserFarms(
	farms map[solana.PublicKey]*FarmState,
	users []UserStateWithKey,
	now TimeSnapshot,
	prices PriceBook,
	filter StrategyFilter,
) (map[solana.PublicKey]*UserFarm, error) {
	builders := make(map[solana.PublicKey]*userFarmBuilder)
	var order []solana.PublicKey

	for _, u := range users {
		farmKey := u.State.FarmState
		farm, ok := farms[farmKey]
		if !ok || !filter.Allows(farm.StrategyID) {
			continue
		}

		b, ok := builders[farmKey]
		if !ok {
			b = &userFarmBuilder{farm: newUserFarm(u.Key, farmKey, farm)}
			builders[farmKey] = b
			order = append(order, farmKey)
		}

		nonEmpty, err := addDelegatee(b.farm, farm, u.State, now.For(farm), prices)
		if err != nil {
			return nil, fmt.Errorf("farm %s: %w", farmKey, err)
		}
		b.nonEmpty = b.nonEmpty || nonEmpty
	}

	out := make(map[solana.PublicKey]*UserFarm, len(builders))
	for _, k := range order {
		if b := builders[k]; b.nonEmpty {
			out[k] = b.farm
		}
	}
	return out, nil
}

func newUserFarm(userStateKey, farmKey solana.PublicKey, farm *FarmState) *UserFarm {
	uf := &UserFarm{
		UserStateAddress:                    userStateKey,
		Farm:                                farmKey,
		StakedToken:                         farm.Token.Mint,
		StrategyID:                          farm.StrategyID,
		DelegateAuthority:                   farm.DelegateAuthority,
		ActiveStakeByDelegatee:              make(map[solana.PublicKey]decimal.Decimal),
		PendingDepositStakeByDelegatee:      make(map[solana.PublicKey]decimal.Decimal),
		PendingWithdrawalUnstakeByDelegatee: make(map[solana.PublicKey]decimal.Decimal),
	}
	for i := range farm.RewardInfos {
		r := &farm.RewardInfos[i]
		if !r.IsInitialized() {
			continue
		}
		uf.PendingRewards = append(uf.PendingRewards, PendingReward{
			RewardIndex:               i,
			RewardTokenMint:           r.Token.Mint,
			RewardTokenProgramID:      r.Token.TokenProgram,
			RewardType:                r.RewardType,
			CumulatedPendingRewards:   decimal.Zero,
			PendingRewardsByDelegatee: make(map[solana.PublicKey]decimal.Decimal),
		})
	}
	return uf
}

// addDelegatee folds one user state into uf and reports whether it carries
// any stake or pending reward.
func addDelegatee(uf *UserFarm, farm *FarmState, user *UserState, ts uint64, prices PriceBook) (bool, error) {
	delegatee := user.Delegatee
	if _, ok := uf.ActiveStakeByDelegatee[delegatee]; ok {
		return false, fmt.Errorf("%w: %s", ErrDuplicateDelegatee, delegatee)
	}

	price, err := prices.PriceFor(farm)
	if err != nil {
		return false, err
	}

	active := ToDecimal(UserActiveStake(farm, user), farm.Token.Decimals)
	pendingDeposit := UnscaleWadUint128(user.PendingDepositStakeScaled)
	pendingWithdrawal := UnscaleWadUint128(user.PendingWithdrawalUnstakeScaled)
	uf.ActiveStakeByDelegatee[delegatee] = active
	uf.PendingDepositStakeByDelegatee[delegatee] = pendingDeposit
	uf.PendingWithdrawalUnstakeByDelegatee[delegatee] = pendingWithdrawal

	nonEmpty := !active.IsZero() || !pendingDeposit.IsZero() || !pendingWithdrawal.IsZero()
	for i := range uf.PendingRewards {
		pr := &uf.PendingRewards[i]
		// A snapshot taken slightly behind the farm's last refresh accrues nothing.
		at := max(ts, farm.RewardInfos[pr.RewardIndex].LastIssuanceTs)
		amount, err := PendingRewards(farm, user, pr.RewardIndex, at, price)
		if err != nil {
			return false, fmt.Errorf("reward %d: %w", pr.RewardIndex, err)
		}
		pr.PendingRewardsByDelegatee[delegatee] = amount
		pr.CumulatedPendingRewards = pr.CumulatedPendingRewards.Add(amount)
		if amount.IsPositive() {
			nonEmpty = true
		}
	}
	return nonEmpty, nil
}

// UserFarmForUndelegatedFarm builds the view of a single direct position.
// A position with no stake and no rewards is still returned.
func UserFarmForUndelegatedFarm(
	farmKey solana.PublicKey,
	farm *FarmState,
	userKey solana.PublicKey,
	user *UserState,
	now TimeSnapshot,
	prices PriceBook,
) (*UserFarm, error) {
	uf := newUserFarm(userKey, farmKey, farm)
	if _, err := addDelegatee(uf, farm, user, now.For(farm), prices); err != nil {
		return nil, fmt.Errorf("farm %s: %w", farmKey, err)
	}
	return uf, nil
}
