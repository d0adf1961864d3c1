package farms_test

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/stretchr/testify/require"
)

func instructionBytes(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}

func TestSDK_Farms_Instructions_Stake(t *testing.T) {
	t.Parallel()

	owner := solana.NewWallet().PublicKey()
	farm := solana.NewWallet().PublicKey()
	vault := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ix, err := farms.BuildStakeInstruction(farms.ProgramID, farms.StakeInstructionConfig{
		Owner:     owner,
		Farm:      farm,
		FarmVault: vault,
		TokenMint: mint,
		Amount:    1_000,
	})
	require.NoError(t, err)
	require.Equal(t, farms.ProgramID, ix.ProgramID())

	data := instructionBytes(t, ix)
	require.Equal(t, []byte{206, 176, 202, 18, 200, 209, 179, 108}, data[:8])
	require.Equal(t, uint64(1_000), binary.LittleEndian.Uint64(data[8:]))
	require.Len(t, data, 16)

	userState, _, err := farms.DeriveUserStatePDA(farms.ProgramID, farm, owner)
	require.NoError(t, err)
	ata, _, err := farms.DeriveAssociatedTokenAddress(owner, mint, solana.TokenProgramID)
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 8)
	require.Equal(t, &solana.AccountMeta{PublicKey: owner, IsSigner: true}, accounts[0])
	require.Equal(t, &solana.AccountMeta{PublicKey: userState, IsWritable: true}, accounts[1])
	require.Equal(t, &solana.AccountMeta{PublicKey: farm, IsWritable: true}, accounts[2])
	require.Equal(t, &solana.AccountMeta{PublicKey: vault, IsWritable: true}, accounts[3])
	require.Equal(t, &solana.AccountMeta{PublicKey: ata, IsWritable: true}, accounts[4])
	require.Equal(t, mint, accounts[5].PublicKey)
	// Unset scope prices are passed as the program id.
	require.Equal(t, farms.ProgramID, accounts[6].PublicKey)
	require.Equal(t, solana.TokenProgramID, accounts[7].PublicKey)
}

func TestSDK_Farms_Instructions_HarvestReward(t *testing.T) {
	t.Parallel()

	owner := solana.NewWallet().PublicKey()
	farm := solana.NewWallet().PublicKey()
	globalConfig := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	delegated := solana.NewWallet().PublicKey()

	ix, err := farms.BuildHarvestRewardInstruction(farms.ProgramID, farms.HarvestRewardInstructionConfig{
		Owner:        owner,
		Farm:         farm,
		GlobalConfig: globalConfig,
		RewardMint:   mint,
		RewardIndex:  3,
		UserState:    delegated,
	})
	require.NoError(t, err)

	data := instructionBytes(t, ix)
	require.Equal(t, []byte{68, 200, 228, 233, 184, 32, 226, 188}, data[:8])
	require.Equal(t, uint64(3), binary.LittleEndian.Uint64(data[8:]))

	rewardVault, _, err := farms.DeriveRewardVaultPDA(farms.ProgramID, farm, mint)
	require.NoError(t, err)
	treasuryVault, _, err := farms.DeriveTreasuryVaultPDA(farms.ProgramID, globalConfig, mint)
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 11)
	require.True(t, accounts[0].IsSigner)
	require.Equal(t, delegated, accounts[1].PublicKey)
	require.Equal(t, rewardVault, accounts[6].PublicKey)
	require.Equal(t, treasuryVault, accounts[7].PublicKey)

	_, err = farms.BuildHarvestRewardInstruction(farms.ProgramID, farms.HarvestRewardInstructionConfig{
		Owner:        owner,
		Farm:         farm,
		GlobalConfig: globalConfig,
		RewardMint:   mint,
		RewardIndex:  farms.MaxRewardsTokens,
	})
	require.ErrorIs(t, err, farms.ErrRewardIndexOutOfRange)
}

func TestSDK_Farms_Instructions_UpdateFarmConfig(t *testing.T) {
	t.Parallel()

	ix, err := farms.BuildUpdateFarmConfigInstruction(farms.ProgramID, farms.UpdateFarmConfigInstructionConfig{
		Signer: solana.NewWallet().PublicKey(),
		Farm:   solana.NewWallet().PublicKey(),
		Update: farms.FarmConfigUpdate{Option: farms.FarmConfigUpdateRewardRps, RewardIndex: 2, Value: 500},
	})
	require.NoError(t, err)

	data := instructionBytes(t, ix)
	require.Equal(t, []byte{214, 176, 188, 244, 203, 59, 230, 207}, data[:8])
	require.Equal(t, uint16(farms.FarmConfigUpdateRewardRps), binary.LittleEndian.Uint16(data[8:10]))
	require.Equal(t, uint32(16), binary.LittleEndian.Uint32(data[10:14]))
	require.Equal(t, uint64(2), binary.LittleEndian.Uint64(data[14:22]))
	require.Equal(t, uint64(500), binary.LittleEndian.Uint64(data[22:30]))
}

func TestSDK_Farms_Instructions_InitializeUserDefaultsDelegatee(t *testing.T) {
	t.Parallel()

	owner := solana.NewWallet().PublicKey()
	farm := solana.NewWallet().PublicKey()

	ix, err := farms.BuildInitializeUserInstruction(farms.ProgramID, farms.InitializeUserInstructionConfig{
		Farm:      farm,
		Owner:     owner,
		Authority: owner,
		Payer:     owner,
	})
	require.NoError(t, err)
	require.Len(t, instructionBytes(t, ix), 8)

	userState, _, err := farms.DeriveUserStatePDA(farms.ProgramID, farm, owner)
	require.NoError(t, err)
	accounts := ix.Accounts()
	require.Equal(t, owner, accounts[3].PublicKey)
	require.Equal(t, userState, accounts[4].PublicKey)
	require.True(t, accounts[4].IsWritable)
}

func TestSDK_Farms_Instructions_Unstake(t *testing.T) {
	t.Parallel()

	ix, err := farms.BuildUnstakeInstruction(farms.ProgramID, farms.UnstakeInstructionConfig{
		Owner:               solana.NewWallet().PublicKey(),
		Farm:                solana.NewWallet().PublicKey(),
		StakeSharesScaledLo: 7,
		StakeSharesScaledHi: 1,
	})
	require.NoError(t, err)
	data := instructionBytes(t, ix)
	require.Len(t, data, 24)
	require.Equal(t, uint64(7), binary.LittleEndian.Uint64(data[8:16]))
	require.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[16:24]))
}

func TestSDK_Farms_Instructions_Validate(t *testing.T) {
	t.Parallel()

	farm := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	_, err := farms.BuildStakeInstruction(farms.ProgramID, farms.StakeInstructionConfig{
		Owner:     owner,
		Farm:      farm,
		FarmVault: solana.NewWallet().PublicKey(),
		TokenMint: solana.NewWallet().PublicKey(),
	})
	require.ErrorIs(t, err, farms.ErrZeroAmount)

	_, err = farms.BuildUnstakeInstruction(farms.ProgramID, farms.UnstakeInstructionConfig{Owner: owner, Farm: farm})
	require.ErrorIs(t, err, farms.ErrZeroAmount)

	_, err = farms.BuildRefreshFarmInstruction(farms.ProgramID, farms.RefreshFarmInstructionConfig{})
	require.ErrorContains(t, err, "farm public key is required")

	_, err = farms.BuildTransferOwnershipInstruction(farms.ProgramID, farms.TransferOwnershipInstructionConfig{Owner: owner, UserState: farm})
	require.ErrorContains(t, err, "new owner public key is required")
}

func TestSDK_Farms_Instructions_CreateAssociatedTokenAccountIdempotent(t *testing.T) {
	t.Parallel()

	payer := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ix, err := farms.BuildCreateAssociatedTokenAccountIdempotentInstruction(payer, owner, mint, solana.PublicKey{})
	require.NoError(t, err)
	require.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ix.ProgramID())
	require.Equal(t, []byte{1}, instructionBytes(t, ix))

	ata, _, err := farms.DeriveAssociatedTokenAddress(owner, mint, solana.TokenProgramID)
	require.NoError(t, err)
	accounts := ix.Accounts()
	require.Len(t, accounts, 6)
	require.Equal(t, &solana.AccountMeta{PublicKey: payer, IsSigner: true, IsWritable: true}, accounts[0])
	require.Equal(t, ata, accounts[1].PublicKey)
	require.Equal(t, solana.TokenProgramID, accounts[5].PublicKey)
}

func TestSDK_Farms_Instructions_UpdateGlobalConfig(t *testing.T) {
	t.Parallel()

	ix, err := farms.BuildUpdateGlobalConfigInstruction(farms.ProgramID, farms.UpdateGlobalConfigInstructionConfig{
		GlobalAdmin:  solana.NewWallet().PublicKey(),
		GlobalConfig: solana.NewWallet().PublicKey(),
		Option:       farms.GlobalConfigSetTreasuryFeeBps,
		Value:        farms.GlobalConfigValueU64(25),
	})
	require.NoError(t, err)
	data := instructionBytes(t, ix)
	require.Len(t, data, 8+1+32)
	require.Equal(t, byte(farms.GlobalConfigSetTreasuryFeeBps), data[8])
	require.Equal(t, byte(25), data[9])
}
