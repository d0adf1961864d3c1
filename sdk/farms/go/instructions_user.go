package farms

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type InitializeUserInstructionConfig struct {
	Farm      solana.PublicKey
	Owner     solana.PublicKey
	Authority solana.PublicKey
	Payer     solana.PublicKey
	// Delegatee defaults to Owner.
	Delegatee solana.PublicKey
}

func (c *InitializeUserInstructionConfig) Validate() error {
	return requireKeys(
		named("farm", c.Farm),
		named("owner", c.Owner),
		named("authority", c.Authority),
		named("payer", c.Payer),
	)
}

func BuildInitializeUserInstruction(programID solana.PublicKey, config InitializeUserInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	delegatee := config.Delegatee
	if delegatee.IsZero() {
		delegatee = config.Owner
	}
	userState, _, err := DeriveUserStatePDA(programID, config.Farm, delegatee)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user state PDA: %w", err)
	}
	return newInstruction(programID, InstructionInitializeUser, nil,
		signer(config.Authority, true),
		signer(config.Payer, true),
		readonly(config.Owner),
		readonly(delegatee),
		writable(userState),
		writable(config.Farm),
		readonly(solana.SystemProgramID),
		readonly(solana.SysVarRentPubkey),
	)
}

type StakeInstructionConfig struct {
	Owner        solana.PublicKey
	Farm         solana.PublicKey
	FarmVault    solana.PublicKey
	TokenMint    solana.PublicKey
	TokenProgram solana.PublicKey
	ScopePrices  solana.PublicKey
	// UserTokenAccount defaults to the owner's associated token account.
	UserTokenAccount solana.PublicKey
	Amount           uint64
}

func (c *StakeInstructionConfig) Validate() error {
	if err := requireKeys(
		named("owner", c.Owner),
		named("farm", c.Farm),
		named("farm vault", c.FarmVault),
		named("token mint", c.TokenMint),
	); err != nil {
		return err
	}
	if c.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

func BuildStakeInstruction(programID solana.PublicKey, config StakeInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	userState, _, err := DeriveUserStatePDA(programID, config.Farm, config.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user state PDA: %w", err)
	}
	tokenProgram := tokenProgramOrDefault(config.TokenProgram)
	userATA := config.UserTokenAccount
	if userATA.IsZero() {
		if userATA, _, err = DeriveAssociatedTokenAddress(config.Owner, config.TokenMint, tokenProgram); err != nil {
			return nil, fmt.Errorf("failed to derive user token account: %w", err)
		}
	}
	args := struct{ Amount uint64 }{Amount: config.Amount}
	return newInstruction(programID, InstructionStake, args,
		signer(config.Owner, false),
		writable(userState),
		writable(config.Farm),
		writable(config.FarmVault),
		writable(userATA),
		readonly(config.TokenMint),
		optional(programID, config.ScopePrices),
		readonly(tokenProgram),
	)
}

type UnstakeInstructionConfig struct {
	Owner       solana.PublicKey
	Farm        solana.PublicKey
	ScopePrices solana.PublicKey
	// StakeSharesScaled is the WAD-scaled share amount to unstake, as
	// (low, high) 64-bit halves.
	StakeSharesScaledLo uint64
	StakeSharesScaledHi uint64
}

func (c *UnstakeInstructionConfig) Validate() error {
	if err := requireKeys(named("owner", c.Owner), named("farm", c.Farm)); err != nil {
		return err
	}
	if c.StakeSharesScaledLo == 0 && c.StakeSharesScaledHi == 0 {
		return ErrZeroAmount
	}
	return nil
}

func BuildUnstakeInstruction(programID solana.PublicKey, config UnstakeInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	userState, _, err := DeriveUserStatePDA(programID, config.Farm, config.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user state PDA: %w", err)
	}
	args := struct{ StakeSharesScaled u128 }{
		StakeSharesScaled: newU128(config.StakeSharesScaledLo, config.StakeSharesScaledHi),
	}
	return newInstruction(programID, InstructionUnstake, args,
		signer(config.Owner, true),
		writable(userState),
		writable(config.Farm),
		optional(programID, config.ScopePrices),
	)
}

type WithdrawUnstakedDepositsInstructionConfig struct {
	Owner               solana.PublicKey
	Farm                solana.PublicKey
	FarmVault           solana.PublicKey
	FarmVaultsAuthority solana.PublicKey
	TokenMint           solana.PublicKey
	TokenProgram        solana.PublicKey
	UserTokenAccount    solana.PublicKey
}

func (c *WithdrawUnstakedDepositsInstructionConfig) Validate() error {
	return requireKeys(
		named("owner", c.Owner),
		named("farm", c.Farm),
		named("farm vault", c.FarmVault),
		named("token mint", c.TokenMint),
	)
}

func BuildWithdrawUnstakedDepositsInstruction(programID solana.PublicKey, config WithdrawUnstakedDepositsInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	userState, _, err := DeriveUserStatePDA(programID, config.Farm, config.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user state PDA: %w", err)
	}
	authority := config.FarmVaultsAuthority
	if authority.IsZero() {
		if authority, _, err = DeriveFarmVaultsAuthorityPDA(programID, config.Farm); err != nil {
			return nil, fmt.Errorf("failed to derive farm vaults authority: %w", err)
		}
	}
	tokenProgram := tokenProgramOrDefault(config.TokenProgram)
	userATA := config.UserTokenAccount
	if userATA.IsZero() {
		if userATA, _, err = DeriveAssociatedTokenAddress(config.Owner, config.TokenMint, tokenProgram); err != nil {
			return nil, fmt.Errorf("failed to derive user token account: %w", err)
		}
	}
	return newInstruction(programID, InstructionWithdrawUnstakedDeposits, nil,
		signer(config.Owner, true),
		writable(userState),
		writable(config.Farm),
		writable(userATA),
		writable(config.FarmVault),
		readonly(authority),
		readonly(tokenProgram),
	)
}

type HarvestRewardInstructionConfig struct {
	Owner        solana.PublicKey
	Farm         solana.PublicKey
	GlobalConfig solana.PublicKey
	RewardMint   solana.PublicKey
	// TokenProgram of the reward mint.
	TokenProgram solana.PublicKey
	ScopePrices  solana.PublicKey
	RewardIndex  uint64
	// UserState defaults to the owner's user state PDA. Delegated positions
	// must pass the delegatee's user state explicitly.
	UserState solana.PublicKey
}

func (c *HarvestRewardInstructionConfig) Validate() error {
	if err := requireKeys(
		named("owner", c.Owner),
		named("farm", c.Farm),
		named("global config", c.GlobalConfig),
		named("reward mint", c.RewardMint),
	); err != nil {
		return err
	}
	if c.RewardIndex >= MaxRewardsTokens {
		return fmt.Errorf("%w: %d", ErrRewardIndexOutOfRange, c.RewardIndex)
	}
	return nil
}

func BuildHarvestRewardInstruction(programID solana.PublicKey, config HarvestRewardInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	var err error
	userState := config.UserState
	if userState.IsZero() {
		if userState, _, err = DeriveUserStatePDA(programID, config.Farm, config.Owner); err != nil {
			return nil, fmt.Errorf("failed to derive user state PDA: %w", err)
		}
	}
	tokenProgram := tokenProgramOrDefault(config.TokenProgram)
	userATA, _, err := DeriveAssociatedTokenAddress(config.Owner, config.RewardMint, tokenProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user reward token account: %w", err)
	}
	rewardVault, _, err := DeriveRewardVaultPDA(programID, config.Farm, config.RewardMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive reward vault: %w", err)
	}
	treasuryVault, _, err := DeriveTreasuryVaultPDA(programID, config.GlobalConfig, config.RewardMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive treasury vault: %w", err)
	}
	authority, _, err := DeriveFarmVaultsAuthorityPDA(programID, config.Farm)
	if err != nil {
		return nil, fmt.Errorf("failed to derive farm vaults authority: %w", err)
	}
	args := struct{ RewardIndex uint64 }{RewardIndex: config.RewardIndex}
	return newInstruction(programID, InstructionHarvestReward, args,
		signer(config.Owner, true),
		writable(userState),
		writable(config.Farm),
		readonly(config.GlobalConfig),
		readonly(config.RewardMint),
		writable(userATA),
		writable(rewardVault),
		writable(treasuryVault),
		readonly(authority),
		optional(programID, config.ScopePrices),
		readonly(tokenProgram),
	)
}

type RefreshUserStateInstructionConfig struct {
	UserState   solana.PublicKey
	Farm        solana.PublicKey
	ScopePrices solana.PublicKey
}

func (c *RefreshUserStateInstructionConfig) Validate() error {
	return requireKeys(named("user state", c.UserState), named("farm", c.Farm))
}

func BuildRefreshUserStateInstruction(programID solana.PublicKey, config RefreshUserStateInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return newInstruction(programID, InstructionRefreshUserState, nil,
		writable(config.UserState),
		writable(config.Farm),
		optional(programID, config.ScopePrices),
	)
}

type TransferOwnershipInstructionConfig struct {
	Owner     solana.PublicKey
	UserState solana.PublicKey
	NewOwner  solana.PublicKey
}

func (c *TransferOwnershipInstructionConfig) Validate() error {
	return requireKeys(
		named("owner", c.Owner),
		named("user state", c.UserState),
		named("new owner", c.NewOwner),
	)
}

func BuildTransferOwnershipInstruction(programID solana.PublicKey, config TransferOwnershipInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	args := struct{ NewOwner solana.PublicKey }{NewOwner: config.NewOwner}
	return newInstruction(programID, InstructionTransferOwnership, args,
		signer(config.Owner, false),
		writable(config.UserState),
	)
}
