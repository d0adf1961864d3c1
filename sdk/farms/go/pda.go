package farms

import (
	"github.com/gagliardetto/solana-go"
)

var (
	seedAuthority     = []byte("authority")
	seedFarmVault     = []byte("fvault")
	seedRewardVault   = []byte("rvault")
	seedTreasuryVault = []byte("tvault")
	seedUser          = []byte("user")
)

func DeriveFarmVaultsAuthorityPDA(programID, farm solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedAuthority, farm.Bytes()}, programID)
}

func DeriveFarmVaultPDA(programID, farm, tokenMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedFarmVault, farm.Bytes(), tokenMint.Bytes()}, programID)
}

func DeriveRewardVaultPDA(programID, farm, rewardMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedRewardVault, farm.Bytes(), rewardMint.Bytes()}, programID)
}

func DeriveTreasuryVaultPDA(programID, globalConfig, rewardMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedTreasuryVault, globalConfig.Bytes(), rewardMint.Bytes()}, programID)
}

func DeriveTreasuryVaultsAuthorityPDA(programID, globalConfig solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedAuthority, globalConfig.Bytes()}, programID)
}

func DeriveUserStatePDA(programID, farm, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{seedUser, farm.Bytes(), owner.Bytes()}, programID)
}

// DeriveAssociatedTokenAddress derives the owner's associated token account
// for mint under the given token program. A zero tokenProgram means the
// classic SPL token program.
func DeriveAssociatedTokenAddress(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, uint8, error) {
	if tokenProgram.IsZero() {
		tokenProgram = solana.TokenProgramID
	}
	return solana.FindProgramAddress(
		[][]byte{owner.Bytes(), tokenProgram.Bytes(), mint.Bytes()},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}
