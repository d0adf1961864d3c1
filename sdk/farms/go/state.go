package farms

import (
	"io"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	MaxRewardsTokens     = 10
	MaxCurvePoints       = 20
	MaxOraclePriceFeeds  = 512
	BpsDenominator       = 10_000
	CurveSentinelTsStart = math.MaxUint64

	SizeFarmState    = 8336
	SizeUserState    = 920
	SizeGlobalConfig = 2136
	SizeOraclePrices = 28712
)

// Memcmp offsets (including the discriminator) used by account filters.
const (
	OffsetFarmTokenMint       = 72
	OffsetUserFarmState       = 16
	OffsetUserOwner           = 48
	OffsetUserIsFarmDelegated = 80
)

type TimeUnit uint8

const (
	TimeUnitSeconds TimeUnit = 0
	TimeUnitSlots   TimeUnit = 1
)

func (t TimeUnit) String() string {
	switch t {
	case TimeUnitSeconds:
		return "seconds"
	case TimeUnitSlots:
		return "slots"
	default:
		return "unknown"
	}
}

type LockingMode uint64

const (
	LockingModeNone       LockingMode = 0
	LockingModeContinuous LockingMode = 1
	LockingModeWithExpiry LockingMode = 2
)

func (m LockingMode) String() string {
	switch m {
	case LockingModeNone:
		return "none"
	case LockingModeContinuous:
		return "continuous"
	case LockingModeWithExpiry:
		return "with_expiry"
	default:
		return "unknown"
	}
}

type RewardType uint8

const (
	RewardTypeProportional RewardType = 0
	RewardTypeConstant     RewardType = 1
)

func (r RewardType) String() string {
	switch r {
	case RewardTypeProportional:
		return "proportional"
	case RewardTypeConstant:
		return "constant"
	default:
		return "unknown"
	}
}

type TokenInfo struct {
	Mint         solana.PublicKey // 32 bytes
	Decimals     uint64           // 8 bytes
	TokenProgram solana.PublicKey // 32 bytes
	Padding      [6]uint64        // 48 bytes
}

type RewardPerTimeUnitPoint struct {
	TsStart           uint64 // 8 bytes
	RewardPerTimeUnit uint64 // 8 bytes
}

type RewardScheduleCurve struct {
	Points [MaxCurvePoints]RewardPerTimeUnitPoint // 320 bytes
}

type RewardInfo struct {
	Token                    TokenInfo           // 120 bytes
	RewardsVault             solana.PublicKey    // 32 bytes
	RewardsAvailable         uint64              // 8 bytes
	RewardScheduleCurve      RewardScheduleCurve // 320 bytes
	MinClaimDurationSeconds  uint64              // 8 bytes
	LastIssuanceTs           uint64              // 8 bytes
	RewardsIssuedUnclaimed   uint64              // 8 bytes
	RewardsIssuedCumulative  uint64              // 8 bytes
	RewardPerShareScaled     bin.Uint128         // 16 bytes
	Placeholder0             uint64              // 8 bytes
	RewardType               RewardType          // 1 byte
	RewardsPerSecondDecimals uint8               // 1 byte
	Padding0                 [6]uint8            // 6 bytes
	Padding1                 [20]uint64          // 160 bytes
}

// IsInitialized reports whether the reward slot carries a mint.
func (r *RewardInfo) IsInitialized() bool {
	return !r.Token.Mint.IsZero()
}

type FarmState struct {
	FarmAdmin                        solana.PublicKey             // 32 bytes
	GlobalConfig                     solana.PublicKey             // 32 bytes
	Token                            TokenInfo                    // 120 bytes
	RewardInfos                      [MaxRewardsTokens]RewardInfo // 7040 bytes
	NumRewardTokens                  uint64                       // 8 bytes
	NumUsers                         uint64                       // 8 bytes
	TotalStakedAmount                uint64                       // 8 bytes
	FarmVault                        solana.PublicKey             // 32 bytes
	FarmVaultsAuthority              solana.PublicKey             // 32 bytes
	FarmVaultsAuthorityBump          uint64                       // 8 bytes
	DelegateAuthority                solana.PublicKey             // 32 bytes
	TimeUnit                         TimeUnit                     // 1 byte
	IsFarmFrozen                     uint8                        // 1 byte
	IsFarmDelegated                  uint8                        // 1 byte
	Padding0                         [5]uint8                     // 5 bytes
	WithdrawAuthority                solana.PublicKey             // 32 bytes
	DepositWarmupPeriod              uint32                       // 4 bytes
	WithdrawalCooldownPeriod         uint32                       // 4 bytes
	TotalActiveStakeScaled           bin.Uint128                  // 16 bytes
	TotalPendingStakeScaled          bin.Uint128                  // 16 bytes
	TotalPendingAmount               uint64                       // 8 bytes
	SlashedAmountCurrent             uint64                       // 8 bytes
	SlashedAmountCumulative          uint64                       // 8 bytes
	SlashedAmountSpillAddress        solana.PublicKey             // 32 bytes
	LockingMode                      LockingMode                  // 8 bytes
	LockingStartTimestamp            uint64                       // 8 bytes
	LockingDuration                  uint64                       // 8 bytes
	LockingEarlyWithdrawalPenaltyBps uint64                       // 8 bytes
	DepositCapAmount                 uint64                       // 8 bytes
	ScopePrices                      solana.PublicKey             // 32 bytes
	ScopeOraclePriceID               uint64                       // 8 bytes
	ScopeOracleMaxAge                uint64                       // 8 bytes
	PendingFarmAdmin                 solana.PublicKey             // 32 bytes
	StrategyID                       solana.PublicKey             // 32 bytes
	DelegatedRpsAdmin                solana.PublicKey             // 32 bytes
	Padding                          [82]uint64                   // 656 bytes
}

// IsDelegated reports whether stake accounting is driven by a delegate
// authority. Stake amounts of delegated farms are raw, not WAD-scaled.
func (f *FarmState) IsDelegated() bool {
	return !f.DelegateAuthority.IsZero()
}

// HasOracle reports whether rewards are adjusted by an external price.
func (f *FarmState) HasOracle() bool {
	return !f.ScopePrices.IsZero()
}

type UserState struct {
	UserID                         uint64                        // 8 bytes
	FarmState                      solana.PublicKey              // 32 bytes
	Owner                          solana.PublicKey              // 32 bytes
	IsFarmDelegated                uint8                         // 1 byte
	Padding0                       [7]uint8                      // 7 bytes
	RewardsTallyScaled             [MaxRewardsTokens]bin.Uint128 // 160 bytes
	RewardsIssuedUnclaimed         [MaxRewardsTokens]uint64      // 80 bytes
	LastClaimTs                    [MaxRewardsTokens]uint64      // 80 bytes
	ActiveStakeScaled              bin.Uint128                   // 16 bytes
	PendingDepositStakeScaled      bin.Uint128                   // 16 bytes
	PendingDepositStakeTs          uint64                        // 8 bytes
	PendingWithdrawalUnstakeScaled bin.Uint128                   // 16 bytes
	PendingWithdrawalUnstakeTs     uint64                        // 8 bytes
	Bump                           uint64                        // 8 bytes
	Delegatee                      solana.PublicKey              // 32 bytes
	LastStakeTs                    uint64                        // 8 bytes
	Padding1                       [50]uint64                    // 400 bytes
}

type GlobalConfig struct {
	GlobalAdmin                 solana.PublicKey // 32 bytes
	TreasuryFeeBps              uint64           // 8 bytes
	TreasuryVaultsAuthority     solana.PublicKey // 32 bytes
	TreasuryVaultsAuthorityBump uint64           // 8 bytes
	PendingGlobalAdmin          solana.PublicKey // 32 bytes
	Padding                     [126]bin.Uint128 // 2016 bytes
}

type Price struct {
	Value uint64 // 8 bytes
	Exp   uint64 // 8 bytes
}

type DatedPrice struct {
	Price           Price     // 16 bytes
	LastUpdatedSlot uint64    // 8 bytes
	UnixTimestamp   uint64    // 8 bytes
	GenericData     [24]uint8 // 24 bytes
}

// OraclePrices is the external price account referenced by
// FarmState.ScopePrices.
type OraclePrices struct {
	OracleMappings solana.PublicKey                // 32 bytes
	Prices         [MaxOraclePriceFeeds]DatedPrice // 28672 bytes
}

// FarmStateWithKey pairs a decoded farm with its address.
type FarmStateWithKey struct {
	Key   solana.PublicKey
	State *FarmState
}

// UserStateWithKey pairs a decoded user state with its address.
type UserStateWithKey struct {
	Key   solana.PublicKey
	State *UserState
}

func encodeAll(w io.Writer, fields ...any) error {
	enc := bin.NewBorshEncoder(w)
	for _, f := range fields {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

func decodeAll(dec *bin.Decoder, fields ...any) error {
	for _, f := range fields {
		if err := dec.Decode(f); err != nil {
			return err
		}
	}
	return nil
}

func (t *TokenInfo) fields() []any {
	return []any{&t.Mint, &t.Decimals, &t.TokenProgram, &t.Padding}
}

func (r *RewardInfo) fields() []any {
	out := r.Token.fields()
	out = append(out, &r.RewardsVault, &r.RewardsAvailable)
	for i := range r.RewardScheduleCurve.Points {
		p := &r.RewardScheduleCurve.Points[i]
		out = append(out, &p.TsStart, &p.RewardPerTimeUnit)
	}
	return append(out,
		&r.MinClaimDurationSeconds,
		&r.LastIssuanceTs,
		&r.RewardsIssuedUnclaimed,
		&r.RewardsIssuedCumulative,
		&r.RewardPerShareScaled,
		&r.Placeholder0,
		&r.RewardType,
		&r.RewardsPerSecondDecimals,
		&r.Padding0,
		&r.Padding1,
	)
}

func (f *FarmState) fields() []any {
	out := []any{&f.FarmAdmin, &f.GlobalConfig}
	out = append(out, f.Token.fields()...)
	for i := range f.RewardInfos {
		out = append(out, f.RewardInfos[i].fields()...)
	}
	return append(out,
		&f.NumRewardTokens,
		&f.NumUsers,
		&f.TotalStakedAmount,
		&f.FarmVault,
		&f.FarmVaultsAuthority,
		&f.FarmVaultsAuthorityBump,
		&f.DelegateAuthority,
		&f.TimeUnit,
		&f.IsFarmFrozen,
		&f.IsFarmDelegated,
		&f.Padding0,
		&f.WithdrawAuthority,
		&f.DepositWarmupPeriod,
		&f.WithdrawalCooldownPeriod,
		&f.TotalActiveStakeScaled,
		&f.TotalPendingStakeScaled,
		&f.TotalPendingAmount,
		&f.SlashedAmountCurrent,
		&f.SlashedAmountCumulative,
		&f.SlashedAmountSpillAddress,
		&f.LockingMode,
		&f.LockingStartTimestamp,
		&f.LockingDuration,
		&f.LockingEarlyWithdrawalPenaltyBps,
		&f.DepositCapAmount,
		&f.ScopePrices,
		&f.ScopeOraclePriceID,
		&f.ScopeOracleMaxAge,
		&f.PendingFarmAdmin,
		&f.StrategyID,
		&f.DelegatedRpsAdmin,
		&f.Padding,
	)
}

func (u *UserState) fields() []any {
	return []any{
		&u.UserID,
		&u.FarmState,
		&u.Owner,
		&u.IsFarmDelegated,
		&u.Padding0,
		&u.RewardsTallyScaled,
		&u.RewardsIssuedUnclaimed,
		&u.LastClaimTs,
		&u.ActiveStakeScaled,
		&u.PendingDepositStakeScaled,
		&u.PendingDepositStakeTs,
		&u.PendingWithdrawalUnstakeScaled,
		&u.PendingWithdrawalUnstakeTs,
		&u.Bump,
		&u.Delegatee,
		&u.LastStakeTs,
		&u.Padding1,
	}
}

func (g *GlobalConfig) fields() []any {
	return []any{
		&g.GlobalAdmin,
		&g.TreasuryFeeBps,
		&g.TreasuryVaultsAuthority,
		&g.TreasuryVaultsAuthorityBump,
		&g.PendingGlobalAdmin,
		&g.Padding,
	}
}

func (o *OraclePrices) fields() []any {
	out := []any{&o.OracleMappings}
	for i := range o.Prices {
		p := &o.Prices[i]
		out = append(out, &p.Price.Value, &p.Price.Exp, &p.LastUpdatedSlot, &p.UnixTimestamp, &p.GenericData)
	}
	return out
}

// Serialize writes the account including its discriminator.
func (f *FarmState) Serialize(w io.Writer) error {
	return encodeAll(w, append([]any{DiscriminatorFarmState}, f.fields()...)...)
}

// Deserialize decodes the account body that follows the discriminator.
func (f *FarmState) Deserialize(body []byte) error {
	return decodeAll(bin.NewBorshDecoder(body), f.fields()...)
}

func (u *UserState) Serialize(w io.Writer) error {
	return encodeAll(w, append([]any{DiscriminatorUserState}, u.fields()...)...)
}

func (u *UserState) Deserialize(body []byte) error {
	return decodeAll(bin.NewBorshDecoder(body), u.fields()...)
}

func (g *GlobalConfig) Serialize(w io.Writer) error {
	return encodeAll(w, append([]any{DiscriminatorGlobalConfig}, g.fields()...)...)
}

func (g *GlobalConfig) Deserialize(body []byte) error {
	return decodeAll(bin.NewBorshDecoder(body), g.fields()...)
}

func (o *OraclePrices) Serialize(w io.Writer) error {
	return encodeAll(w, append([]any{DiscriminatorOraclePrices}, o.fields()...)...)
}

func (o *OraclePrices) Deserialize(body []byte) error {
	return decodeAll(bin.NewBorshDecoder(body), o.fields()...)
}
