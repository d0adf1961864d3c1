package farms_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/stretchr/testify/require"
)

func TestSDK_Farms_PDA_UserStateDeterministic(t *testing.T) {
	t.Parallel()

	farm := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	a, bumpA, err := farms.DeriveUserStatePDA(farms.ProgramID, farm, owner)
	require.NoError(t, err)
	b, bumpB, err := farms.DeriveUserStatePDA(farms.ProgramID, farm, owner)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, bumpA, bumpB)

	swapped, _, err := farms.DeriveUserStatePDA(farms.ProgramID, owner, farm)
	require.NoError(t, err)
	require.NotEqual(t, a, swapped)

	other, _, err := farms.DeriveUserStatePDA(solana.NewWallet().PublicKey(), farm, owner)
	require.NoError(t, err)
	require.NotEqual(t, a, other)
}

func TestSDK_Farms_PDA_MatchesSeeds(t *testing.T) {
	t.Parallel()

	farm := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	globalConfig := solana.NewWallet().PublicKey()

	tests := []struct {
		name   string
		derive func() (solana.PublicKey, uint8, error)
		seeds  [][]byte
	}{
		{
			name:   "farm_vaults_authority",
			derive: func() (solana.PublicKey, uint8, error) { return farms.DeriveFarmVaultsAuthorityPDA(farms.ProgramID, farm) },
			seeds:  [][]byte{[]byte("authority"), farm[:]},
		},
		{
			name:   "farm_vault",
			derive: func() (solana.PublicKey, uint8, error) { return farms.DeriveFarmVaultPDA(farms.ProgramID, farm, mint) },
			seeds:  [][]byte{[]byte("fvault"), farm[:], mint[:]},
		},
		{
			name:   "reward_vault",
			derive: func() (solana.PublicKey, uint8, error) { return farms.DeriveRewardVaultPDA(farms.ProgramID, farm, mint) },
			seeds:  [][]byte{[]byte("rvault"), farm[:], mint[:]},
		},
		{
			name:   "treasury_vault",
			derive: func() (solana.PublicKey, uint8, error) { return farms.DeriveTreasuryVaultPDA(farms.ProgramID, globalConfig, mint) },
			seeds:  [][]byte{[]byte("tvault"), globalConfig[:], mint[:]},
		},
		{
			name:   "treasury_vaults_authority",
			derive: func() (solana.PublicKey, uint8, error) { return farms.DeriveTreasuryVaultsAuthorityPDA(farms.ProgramID, globalConfig) },
			seeds:  [][]byte{[]byte("authority"), globalConfig[:]},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _, err := tt.derive()
			require.NoError(t, err)
			want, _, err := solana.FindProgramAddress(tt.seeds, farms.ProgramID)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestSDK_Farms_PDA_AssociatedTokenAddress(t *testing.T) {
	t.Parallel()

	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	def, _, err := farms.DeriveAssociatedTokenAddress(owner, mint, solana.PublicKey{})
	require.NoError(t, err)
	classic, _, err := farms.DeriveAssociatedTokenAddress(owner, mint, solana.TokenProgramID)
	require.NoError(t, err)
	require.Equal(t, classic, def)

	want, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	require.Equal(t, want, classic)

	token2022, _, err := farms.DeriveAssociatedTokenAddress(owner, mint, solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"))
	require.NoError(t, err)
	require.NotEqual(t, classic, token2022)
}
