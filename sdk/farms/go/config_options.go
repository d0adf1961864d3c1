package farms

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	ErrUnknownConfigOption = errors.New("unknown config option")
	ErrConfigValueRange    = errors.New("config value out of range")
)

// FarmConfigOption selects the farm field updated by update_farm_config.
type FarmConfigOption uint16

const (
	FarmConfigUpdateRewardRps FarmConfigOption = iota
	FarmConfigUpdateRewardMinClaimDuration
	FarmConfigWithdrawAuthority
	FarmConfigDepositWarmupPeriod
	FarmConfigWithdrawCooldownPeriod
	FarmConfigRewardType
	FarmConfigRpsDecimals
	FarmConfigLockingMode
	FarmConfigLockingStartTimestamp
	FarmConfigLockingDuration
	FarmConfigLockingEarlyWithdrawalPenaltyBps
	FarmConfigDepositCapAmount
	FarmConfigSlashedAmountSpillAddress
	FarmConfigScopePricesAccount
	FarmConfigScopeOraclePriceID
	FarmConfigScopeOracleMaxAge
	FarmConfigUpdateRewardScheduleCurvePoints
	FarmConfigUpdatePendingFarmAdmin
	FarmConfigUpdateStrategyID
	FarmConfigUpdateDelegatedRpsAdmin
	FarmConfigUpdateVaultID
)

// ConfigEncoding is the wire shape of a config option value.
type ConfigEncoding int

const (
	EncodingU64 ConfigEncoding = iota
	EncodingI32
	EncodingU16
	EncodingPubkey
	EncodingCurve
	EncodingRewardIndexed
)

var farmConfigOptions = []struct {
	name     string
	encoding ConfigEncoding
}{
	FarmConfigUpdateRewardRps:                  {"UpdateRewardRps", EncodingRewardIndexed},
	FarmConfigUpdateRewardMinClaimDuration:     {"UpdateRewardMinClaimDuration", EncodingRewardIndexed},
	FarmConfigWithdrawAuthority:                {"WithdrawAuthority", EncodingPubkey},
	FarmConfigDepositWarmupPeriod:              {"DepositWarmupPeriod", EncodingI32},
	FarmConfigWithdrawCooldownPeriod:           {"WithdrawCooldownPeriod", EncodingI32},
	FarmConfigRewardType:                       {"RewardType", EncodingRewardIndexed},
	FarmConfigRpsDecimals:                      {"RpsDecimals", EncodingRewardIndexed},
	FarmConfigLockingMode:                      {"LockingMode", EncodingU64},
	FarmConfigLockingStartTimestamp:            {"LockingStartTimestamp", EncodingU64},
	FarmConfigLockingDuration:                  {"LockingDuration", EncodingU64},
	FarmConfigLockingEarlyWithdrawalPenaltyBps: {"LockingEarlyWithdrawalPenaltyBps", EncodingU64},
	FarmConfigDepositCapAmount:                 {"DepositCapAmount", EncodingU64},
	FarmConfigSlashedAmountSpillAddress:        {"SlashedAmountSpillAddress", EncodingPubkey},
	FarmConfigScopePricesAccount:               {"ScopePricesAccount", EncodingPubkey},
	FarmConfigScopeOraclePriceID:               {"ScopeOraclePriceId", EncodingU16},
	FarmConfigScopeOracleMaxAge:                {"ScopeOracleMaxAge", EncodingU64},
	FarmConfigUpdateRewardScheduleCurvePoints:  {"UpdateRewardScheduleCurvePoints", EncodingCurve},
	FarmConfigUpdatePendingFarmAdmin:           {"UpdatePendingFarmAdmin", EncodingPubkey},
	FarmConfigUpdateStrategyID:                 {"UpdateStrategyId", EncodingPubkey},
	FarmConfigUpdateDelegatedRpsAdmin:          {"UpdateDelegatedRpsAdmin", EncodingPubkey},
	FarmConfigUpdateVaultID:                    {"UpdateVaultId", EncodingPubkey},
}

func (o FarmConfigOption) String() string {
	if int(o) >= len(farmConfigOptions) {
		return fmt.Sprintf("FarmConfigOption(%d)", uint16(o))
	}
	return farmConfigOptions[o].name
}

// Encoding returns the wire shape of the option's value.
func (o FarmConfigOption) Encoding() (ConfigEncoding, error) {
	if int(o) >= len(farmConfigOptions) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownConfigOption, uint16(o))
	}
	return farmConfigOptions[o].encoding, nil
}

// ParseFarmConfigOption resolves an option by name, case-insensitively.
func ParseFarmConfigOption(name string) (FarmConfigOption, error) {
	for i, o := range farmConfigOptions {
		if strings.EqualFold(o.name, name) {
			return FarmConfigOption(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownConfigOption, name)
}

// FarmConfigUpdate is a single update_farm_config change. Which fields are
// read depends on the option's encoding.
type FarmConfigUpdate struct {
	Option      FarmConfigOption
	RewardIndex uint64
	Value       uint64
	SignedValue int32
	Pubkey      solana.PublicKey
	Points      []RewardPerTimeUnitPoint
}

// Encode returns the instruction payload for the update.
func (u FarmConfigUpdate) Encode() ([]byte, error) {
	encoding, err := u.Option.Encoding()
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	switch encoding {
	case EncodingU64:
		err = enc.WriteUint64(u.Value, binary.LittleEndian)
	case EncodingI32:
		err = enc.WriteInt32(u.SignedValue, binary.LittleEndian)
	case EncodingU16:
		if u.Value > math.MaxUint16 {
			return nil, fmt.Errorf("%w: %s=%d", ErrConfigValueRange, u.Option, u.Value)
		}
		err = enc.WriteUint16(uint16(u.Value), binary.LittleEndian)
	case EncodingPubkey:
		err = enc.WriteBytes(u.Pubkey.Bytes(), false)
	case EncodingCurve:
		if len(u.Points) > MaxCurvePoints {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCurvePoints, len(u.Points), MaxCurvePoints)
		}
		err = writeAll(enc, u.RewardIndex, uint32(len(u.Points)))
		for _, p := range u.Points {
			if err != nil {
				break
			}
			err = writeAll(enc, p.TsStart, p.RewardPerTimeUnit)
		}
	case EncodingRewardIndexed:
		err = writeAll(enc, u.RewardIndex, u.Value)
	default:
		return nil, fmt.Errorf("%w: encoding %d", ErrUnknownConfigOption, encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", u.Option, err)
	}
	return buf.Bytes(), nil
}

func writeAll(enc *bin.Encoder, values ...any) error {
	for _, v := range values {
		var err error
		switch v := v.(type) {
		case uint64:
			err = enc.WriteUint64(v, binary.LittleEndian)
		case uint32:
			err = enc.WriteUint32(v, binary.LittleEndian)
		default:
			err = fmt.Errorf("unsupported value type %T", v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ParseFarmConfigUpdate builds an update from its textual form. Curve values
// are comma-separated "tsStart:rate" pairs.
func ParseFarmConfigUpdate(option FarmConfigOption, rewardIndex uint64, raw string) (FarmConfigUpdate, error) {
	u := FarmConfigUpdate{Option: option, RewardIndex: rewardIndex}
	encoding, err := option.Encoding()
	if err != nil {
		return u, err
	}
	raw = strings.TrimSpace(raw)
	switch encoding {
	case EncodingU64, EncodingU16, EncodingRewardIndexed:
		u.Value, err = strconv.ParseUint(raw, 10, 64)
	case EncodingI32:
		var v int64
		v, err = strconv.ParseInt(raw, 10, 32)
		u.SignedValue = int32(v)
	case EncodingPubkey:
		u.Pubkey, err = solana.PublicKeyFromBase58(raw)
	case EncodingCurve:
		u.Points, err = parseCurvePoints(raw)
	}
	if err != nil {
		return u, fmt.Errorf("parsing %s value %q: %w", option, raw, err)
	}
	return u, nil
}

func parseCurvePoints(raw string) ([]RewardPerTimeUnitPoint, error) {
	var points []RewardPerTimeUnitPoint
	for _, part := range strings.Split(raw, ",") {
		ts, rate, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("curve point %q must be tsStart:rate", part)
		}
		start, err := strconv.ParseUint(ts, 10, 64)
		if err != nil {
			return nil, err
		}
		rps, err := strconv.ParseUint(rate, 10, 64)
		if err != nil {
			return nil, err
		}
		points = append(points, RewardPerTimeUnitPoint{TsStart: start, RewardPerTimeUnit: rps})
	}
	return points, nil
}

// GlobalConfigOption selects the global config field updated by
// update_global_config.
type GlobalConfigOption uint8

const (
	GlobalConfigSetPendingGlobalAdmin GlobalConfigOption = iota
	GlobalConfigSetTreasuryFeeBps
)

func (o GlobalConfigOption) String() string {
	switch o {
	case GlobalConfigSetPendingGlobalAdmin:
		return "SetPendingGlobalAdmin"
	case GlobalConfigSetTreasuryFeeBps:
		return "SetTreasuryFeeBps"
	default:
		return fmt.Sprintf("GlobalConfigOption(%d)", uint8(o))
	}
}

// GlobalConfigValueU64 encodes a number into the 32-byte value slot.
func GlobalConfigValueU64(v uint64) [32]byte {
	var out [32]byte
	binary.LittleEndian.PutUint64(out[:8], v)
	return out
}

// GlobalConfigValuePubkey encodes a key into the 32-byte value slot.
func GlobalConfigValuePubkey(k solana.PublicKey) [32]byte {
	return [32]byte(k)
}
