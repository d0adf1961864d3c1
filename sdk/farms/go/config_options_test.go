package farms_test

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/stretchr/testify/require"
)

func TestSDK_Farms_ConfigOptions_EncodingWidths(t *testing.T) {
	t.Parallel()

	key := solana.NewWallet().PublicKey()

	tests := []struct {
		name   string
		update farms.FarmConfigUpdate
		want   []byte
	}{
		{
			name:   "u64",
			update: farms.FarmConfigUpdate{Option: farms.FarmConfigLockingDuration, Value: 0x0102},
			want:   []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "i32",
			update: farms.FarmConfigUpdate{Option: farms.FarmConfigDepositWarmupPeriod, SignedValue: -1},
			want:   []byte{0xff, 0xff, 0xff, 0xff},
		},
		{
			name:   "u16",
			update: farms.FarmConfigUpdate{Option: farms.FarmConfigScopeOraclePriceID, Value: 513},
			want:   []byte{0x01, 0x02},
		},
		{
			name:   "pubkey",
			update: farms.FarmConfigUpdate{Option: farms.FarmConfigWithdrawAuthority, Pubkey: key},
			want:   key.Bytes(),
		},
		{
			name:   "reward_indexed",
			update: farms.FarmConfigUpdate{Option: farms.FarmConfigUpdateRewardRps, RewardIndex: 2, Value: 500},
			want:   binary.LittleEndian.AppendUint64(binary.LittleEndian.AppendUint64(nil, 2), 500),
		},
		{
			name: "curve",
			update: farms.FarmConfigUpdate{
				Option:      farms.FarmConfigUpdateRewardScheduleCurvePoints,
				RewardIndex: 1,
				Points:      []farms.RewardPerTimeUnitPoint{{TsStart: 10, RewardPerTimeUnit: 20}},
			},
			want: func() []byte {
				b := binary.LittleEndian.AppendUint64(nil, 1)
				b = binary.LittleEndian.AppendUint32(b, 1)
				b = binary.LittleEndian.AppendUint64(b, 10)
				return binary.LittleEndian.AppendUint64(b, 20)
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.update.Encode()
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSDK_Farms_ConfigOptions_EncodeErrors(t *testing.T) {
	t.Parallel()

	_, err := farms.FarmConfigUpdate{Option: farms.FarmConfigScopeOraclePriceID, Value: 1 << 16}.Encode()
	require.ErrorIs(t, err, farms.ErrConfigValueRange)

	_, err = farms.FarmConfigUpdate{Option: 99}.Encode()
	require.ErrorIs(t, err, farms.ErrUnknownConfigOption)

	_, err = farms.FarmConfigUpdate{
		Option: farms.FarmConfigUpdateRewardScheduleCurvePoints,
		Points: make([]farms.RewardPerTimeUnitPoint, farms.MaxCurvePoints+1),
	}.Encode()
	require.ErrorIs(t, err, farms.ErrTooManyCurvePoints)
}

func TestSDK_Farms_ConfigOptions_Parse(t *testing.T) {
	t.Parallel()

	opt, err := farms.ParseFarmConfigOption("lockingduration")
	require.NoError(t, err)
	require.Equal(t, farms.FarmConfigLockingDuration, opt)
	require.Equal(t, "LockingDuration", opt.String())

	_, err = farms.ParseFarmConfigOption("nope")
	require.ErrorIs(t, err, farms.ErrUnknownConfigOption)

	u, err := farms.ParseFarmConfigUpdate(farms.FarmConfigUpdateRewardScheduleCurvePoints, 0, "0:100, 3600:50")
	require.NoError(t, err)
	require.Equal(t, []farms.RewardPerTimeUnitPoint{{TsStart: 0, RewardPerTimeUnit: 100}, {TsStart: 3600, RewardPerTimeUnit: 50}}, u.Points)

	u, err = farms.ParseFarmConfigUpdate(farms.FarmConfigWithdrawCooldownPeriod, 0, "-30")
	require.NoError(t, err)
	require.Equal(t, int32(-30), u.SignedValue)

	key := solana.NewWallet().PublicKey()
	u, err = farms.ParseFarmConfigUpdate(farms.FarmConfigUpdateStrategyID, 0, key.String())
	require.NoError(t, err)
	require.Equal(t, key, u.Pubkey)

	_, err = farms.ParseFarmConfigUpdate(farms.FarmConfigUpdateRewardScheduleCurvePoints, 0, "100")
	require.Error(t, err)
	_, err = farms.ParseFarmConfigUpdate(farms.FarmConfigDepositCapAmount, 0, "-1")
	require.Error(t, err)
}

func TestSDK_Farms_ConfigOptions_GlobalValues(t *testing.T) {
	t.Parallel()

	v := farms.GlobalConfigValueU64(250)
	require.Equal(t, byte(250), v[0])
	require.Equal(t, [24]byte{}, [24]byte(v[8:]))

	key := solana.NewWallet().PublicKey()
	require.Equal(t, [32]byte(key), farms.GlobalConfigValuePubkey(key))
	require.Equal(t, "SetTreasuryFeeBps", farms.GlobalConfigSetTreasuryFeeBps.String())
}
