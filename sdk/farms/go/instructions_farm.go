package farms

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type RefreshFarmInstructionConfig struct {
	Farm        solana.PublicKey
	ScopePrices solana.PublicKey
}

func (c *RefreshFarmInstructionConfig) Validate() error {
	return requireKeys(named("farm", c.Farm))
}

func BuildRefreshFarmInstruction(programID solana.PublicKey, config RefreshFarmInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return newInstruction(programID, InstructionRefreshFarm, nil,
		writable(config.Farm),
		optional(programID, config.ScopePrices),
	)
}

type UpdateFarmConfigInstructionConfig struct {
	Signer      solana.PublicKey
	Farm        solana.PublicKey
	ScopePrices solana.PublicKey
	Update      FarmConfigUpdate
}

func (c *UpdateFarmConfigInstructionConfig) Validate() error {
	if err := requireKeys(named("signer", c.Signer), named("farm", c.Farm)); err != nil {
		return err
	}
	_, err := c.Update.Option.Encoding()
	return err
}

func BuildUpdateFarmConfigInstruction(programID solana.PublicKey, config UpdateFarmConfigInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	data, err := config.Update.Encode()
	if err != nil {
		return nil, err
	}
	args := struct {
		Mode uint16
		Data []byte
	}{
		Mode: uint16(config.Update.Option),
		Data: data,
	}
	return newInstruction(programID, InstructionUpdateFarmConfig, args,
		signer(config.Signer, true),
		writable(config.Farm),
		optional(programID, config.ScopePrices),
	)
}

// RewardTransferInstructionConfig configures add_rewards and
// withdraw_reward, which move reward tokens between an external token
// account and the farm's reward vault.
type RewardTransferInstructionConfig struct {
	Authority    solana.PublicKey
	Farm         solana.PublicKey
	RewardMint   solana.PublicKey
	TokenProgram solana.PublicKey
	ScopePrices  solana.PublicKey
	// TokenAccount defaults to the authority's associated token account.
	TokenAccount solana.PublicKey
	RewardIndex  uint64
	Amount       uint64
}

func (c *RewardTransferInstructionConfig) Validate() error {
	if err := requireKeys(
		named("authority", c.Authority),
		named("farm", c.Farm),
		named("reward mint", c.RewardMint),
	); err != nil {
		return err
	}
	if c.RewardIndex >= MaxRewardsTokens {
		return fmt.Errorf("%w: %d", ErrRewardIndexOutOfRange, c.RewardIndex)
	}
	if c.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

func buildRewardTransfer(programID solana.PublicKey, name string, config RewardTransferInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	rewardVault, _, err := DeriveRewardVaultPDA(programID, config.Farm, config.RewardMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive reward vault: %w", err)
	}
	authority, _, err := DeriveFarmVaultsAuthorityPDA(programID, config.Farm)
	if err != nil {
		return nil, fmt.Errorf("failed to derive farm vaults authority: %w", err)
	}
	tokenProgram := tokenProgramOrDefault(config.TokenProgram)
	tokenAccount := config.TokenAccount
	if tokenAccount.IsZero() {
		if tokenAccount, _, err = DeriveAssociatedTokenAddress(config.Authority, config.RewardMint, tokenProgram); err != nil {
			return nil, fmt.Errorf("failed to derive token account: %w", err)
		}
	}
	args := struct {
		Amount      uint64
		RewardIndex uint64
	}{
		Amount:      config.Amount,
		RewardIndex: config.RewardIndex,
	}
	return newInstruction(programID, name, args,
		signer(config.Authority, true),
		writable(config.Farm),
		readonly(config.RewardMint),
		writable(rewardVault),
		readonly(authority),
		writable(tokenAccount),
		optional(programID, config.ScopePrices),
		readonly(tokenProgram),
	)
}

// BuildAddRewardsInstruction tops up a reward slot from the payer.
func BuildAddRewardsInstruction(programID solana.PublicKey, config RewardTransferInstructionConfig) (solana.Instruction, error) {
	return buildRewardTransfer(programID, InstructionAddRewards, config)
}

// BuildWithdrawRewardInstruction withdraws unissued rewards to the farm admin.
func BuildWithdrawRewardInstruction(programID solana.PublicKey, config RewardTransferInstructionConfig) (solana.Instruction, error) {
	return buildRewardTransfer(programID, InstructionWithdrawReward, config)
}

type UpdateFarmAdminInstructionConfig struct {
	PendingFarmAdmin solana.PublicKey
	Farm             solana.PublicKey
}

func (c *UpdateFarmAdminInstructionConfig) Validate() error {
	return requireKeys(named("pending farm admin", c.PendingFarmAdmin), named("farm", c.Farm))
}

func BuildUpdateFarmAdminInstruction(programID solana.PublicKey, config UpdateFarmAdminInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return newInstruction(programID, InstructionUpdateFarmAdmin, nil,
		signer(config.PendingFarmAdmin, true),
		writable(config.Farm),
	)
}

type InitializeFarmInstructionConfig struct {
	FarmAdmin    solana.PublicKey
	Farm         solana.PublicKey
	GlobalConfig solana.PublicKey
	TokenMint    solana.PublicKey
	TokenProgram solana.PublicKey
}

func (c *InitializeFarmInstructionConfig) Validate() error {
	return requireKeys(
		named("farm admin", c.FarmAdmin),
		named("farm", c.Farm),
		named("global config", c.GlobalConfig),
		named("token mint", c.TokenMint),
	)
}

func BuildInitializeFarmInstruction(programID solana.PublicKey, config InitializeFarmInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	farmVault, _, err := DeriveFarmVaultPDA(programID, config.Farm, config.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive farm vault: %w", err)
	}
	authority, _, err := DeriveFarmVaultsAuthorityPDA(programID, config.Farm)
	if err != nil {
		return nil, fmt.Errorf("failed to derive farm vaults authority: %w", err)
	}
	return newInstruction(programID, InstructionInitializeFarm, nil,
		signer(config.FarmAdmin, true),
		writable(config.Farm),
		readonly(config.GlobalConfig),
		writable(farmVault),
		readonly(authority),
		readonly(config.TokenMint),
		readonly(tokenProgramOrDefault(config.TokenProgram)),
		readonly(solana.SystemProgramID),
		readonly(solana.SysVarRentPubkey),
	)
}

type InitializeFarmDelegatedInstructionConfig struct {
	FarmAdmin    solana.PublicKey
	FarmDelegate solana.PublicKey
	Farm         solana.PublicKey
	GlobalConfig solana.PublicKey
}

func (c *InitializeFarmDelegatedInstructionConfig) Validate() error {
	return requireKeys(
		named("farm admin", c.FarmAdmin),
		named("farm delegate", c.FarmDelegate),
		named("farm", c.Farm),
		named("global config", c.GlobalConfig),
	)
}

func BuildInitializeFarmDelegatedInstruction(programID solana.PublicKey, config InitializeFarmDelegatedInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	authority, _, err := DeriveFarmVaultsAuthorityPDA(programID, config.Farm)
	if err != nil {
		return nil, fmt.Errorf("failed to derive farm vaults authority: %w", err)
	}
	return newInstruction(programID, InstructionInitializeFarmDelegated, nil,
		signer(config.FarmAdmin, true),
		signer(config.FarmDelegate, true),
		writable(config.Farm),
		readonly(config.GlobalConfig),
		readonly(authority),
		readonly(solana.SystemProgramID),
		readonly(solana.SysVarRentPubkey),
	)
}

type InitializeRewardInstructionConfig struct {
	FarmAdmin    solana.PublicKey
	Farm         solana.PublicKey
	GlobalConfig solana.PublicKey
	RewardMint   solana.PublicKey
	TokenProgram solana.PublicKey
}

func (c *InitializeRewardInstructionConfig) Validate() error {
	return requireKeys(
		named("farm admin", c.FarmAdmin),
		named("farm", c.Farm),
		named("global config", c.GlobalConfig),
		named("reward mint", c.RewardMint),
	)
}

func BuildInitializeRewardInstruction(programID solana.PublicKey, config InitializeRewardInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	rewardVault, _, err := DeriveRewardVaultPDA(programID, config.Farm, config.RewardMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive reward vault: %w", err)
	}
	treasuryVault, _, err := DeriveTreasuryVaultPDA(programID, config.GlobalConfig, config.RewardMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive treasury vault: %w", err)
	}
	farmAuthority, _, err := DeriveFarmVaultsAuthorityPDA(programID, config.Farm)
	if err != nil {
		return nil, fmt.Errorf("failed to derive farm vaults authority: %w", err)
	}
	treasuryAuthority, _, err := DeriveTreasuryVaultsAuthorityPDA(programID, config.GlobalConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to derive treasury vaults authority: %w", err)
	}
	return newInstruction(programID, InstructionInitializeReward, nil,
		signer(config.FarmAdmin, true),
		writable(config.Farm),
		readonly(config.GlobalConfig),
		readonly(config.RewardMint),
		writable(rewardVault),
		writable(treasuryVault),
		readonly(farmAuthority),
		readonly(treasuryAuthority),
		readonly(tokenProgramOrDefault(config.TokenProgram)),
		readonly(solana.SystemProgramID),
		readonly(solana.SysVarRentPubkey),
	)
}

type RewardUserOnceInstructionConfig struct {
	FarmAdmin   solana.PublicKey
	Farm        solana.PublicKey
	UserState   solana.PublicKey
	RewardIndex uint64
	Amount      uint64
}

func (c *RewardUserOnceInstructionConfig) Validate() error {
	if err := requireKeys(
		named("farm admin", c.FarmAdmin),
		named("farm", c.Farm),
		named("user state", c.UserState),
	); err != nil {
		return err
	}
	if c.RewardIndex >= MaxRewardsTokens {
		return fmt.Errorf("%w: %d", ErrRewardIndexOutOfRange, c.RewardIndex)
	}
	if c.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

func BuildRewardUserOnceInstruction(programID solana.PublicKey, config RewardUserOnceInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	args := struct {
		RewardIndex uint64
		Amount      uint64
	}{
		RewardIndex: config.RewardIndex,
		Amount:      config.Amount,
	}
	return newInstruction(programID, InstructionRewardUserOnce, args,
		signer(config.FarmAdmin, true),
		writable(config.Farm),
		writable(config.UserState),
	)
}

type DepositToFarmVaultInstructionConfig struct {
	Depositor        solana.PublicKey
	Farm             solana.PublicKey
	FarmVault        solana.PublicKey
	TokenMint        solana.PublicKey
	TokenProgram     solana.PublicKey
	DepositorAccount solana.PublicKey
	Amount           uint64
}

func (c *DepositToFarmVaultInstructionConfig) Validate() error {
	if err := requireKeys(
		named("depositor", c.Depositor),
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

func BuildDepositToFarmVaultInstruction(programID solana.PublicKey, config DepositToFarmVaultInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	tokenProgram := tokenProgramOrDefault(config.TokenProgram)
	depositorATA := config.DepositorAccount
	if depositorATA.IsZero() {
		var err error
		if depositorATA, _, err = DeriveAssociatedTokenAddress(config.Depositor, config.TokenMint, tokenProgram); err != nil {
			return nil, fmt.Errorf("failed to derive depositor token account: %w", err)
		}
	}
	args := struct{ Amount uint64 }{Amount: config.Amount}
	return newInstruction(programID, InstructionDepositToFarmVault, args,
		signer(config.Depositor, false),
		writable(config.Farm),
		writable(config.FarmVault),
		writable(depositorATA),
		readonly(tokenProgram),
	)
}

type WithdrawFromFarmVaultInstructionConfig struct {
	WithdrawAuthority solana.PublicKey
	Farm              solana.PublicKey
	FarmVault         solana.PublicKey
	WithdrawerAccount solana.PublicKey
	TokenProgram      solana.PublicKey
	Amount            uint64
}

func (c *WithdrawFromFarmVaultInstructionConfig) Validate() error {
	if err := requireKeys(
		named("withdraw authority", c.WithdrawAuthority),
		named("farm", c.Farm),
		named("farm vault", c.FarmVault),
		named("withdrawer token account", c.WithdrawerAccount),
	); err != nil {
		return err
	}
	if c.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

func BuildWithdrawFromFarmVaultInstruction(programID solana.PublicKey, config WithdrawFromFarmVaultInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	authority, _, err := DeriveFarmVaultsAuthorityPDA(programID, config.Farm)
	if err != nil {
		return nil, fmt.Errorf("failed to derive farm vaults authority: %w", err)
	}
	args := struct{ Amount uint64 }{Amount: config.Amount}
	return newInstruction(programID, InstructionWithdrawFromFarmVault, args,
		signer(config.WithdrawAuthority, true),
		writable(config.Farm),
		writable(config.WithdrawerAccount),
		writable(config.FarmVault),
		readonly(authority),
		readonly(tokenProgramOrDefault(config.TokenProgram)),
	)
}

type WithdrawSlashedAmountInstructionConfig struct {
	Crank                     solana.PublicKey
	Farm                      solana.PublicKey
	FarmVault                 solana.PublicKey
	SlashedAmountSpillAddress solana.PublicKey
	TokenProgram              solana.PublicKey
}

func (c *WithdrawSlashedAmountInstructionConfig) Validate() error {
	return requireKeys(
		named("crank", c.Crank),
		named("farm", c.Farm),
		named("farm vault", c.FarmVault),
		named("slashed amount spill address", c.SlashedAmountSpillAddress),
	)
}

func BuildWithdrawSlashedAmountInstruction(programID solana.PublicKey, config WithdrawSlashedAmountInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	authority, _, err := DeriveFarmVaultsAuthorityPDA(programID, config.Farm)
	if err != nil {
		return nil, fmt.Errorf("failed to derive farm vaults authority: %w", err)
	}
	return newInstruction(programID, InstructionWithdrawSlashedAmount, nil,
		signer(config.Crank, true),
		writable(config.Farm),
		writable(config.SlashedAmountSpillAddress),
		writable(config.FarmVault),
		readonly(authority),
		readonly(tokenProgramOrDefault(config.TokenProgram)),
	)
}
