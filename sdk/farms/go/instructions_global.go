package farms

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type UpdateGlobalConfigInstructionConfig struct {
	GlobalAdmin  solana.PublicKey
	GlobalConfig solana.PublicKey
	Option       GlobalConfigOption
	Value        [32]byte
}

func (c *UpdateGlobalConfigInstructionConfig) Validate() error {
	if err := requireKeys(named("global admin", c.GlobalAdmin), named("global config", c.GlobalConfig)); err != nil {
		return err
	}
	switch c.Option {
	case GlobalConfigSetPendingGlobalAdmin, GlobalConfigSetTreasuryFeeBps:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigOption, c.Option)
	}
}

func BuildUpdateGlobalConfigInstruction(programID solana.PublicKey, config UpdateGlobalConfigInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	args := struct {
		Mode  uint8
		Value [32]byte
	}{
		Mode:  uint8(config.Option),
		Value: config.Value,
	}
	return newInstruction(programID, InstructionUpdateGlobalConfig, args,
		signer(config.GlobalAdmin, false),
		writable(config.GlobalConfig),
	)
}

type WithdrawTreasuryInstructionConfig struct {
	GlobalAdmin  solana.PublicKey
	GlobalConfig solana.PublicKey
	RewardMint   solana.PublicKey
	TokenProgram solana.PublicKey
	// Destination defaults to the admin's associated token account.
	Destination solana.PublicKey
	Amount      uint64
}

func (c *WithdrawTreasuryInstructionConfig) Validate() error {
	if err := requireKeys(
		named("global admin", c.GlobalAdmin),
		named("global config", c.GlobalConfig),
		named("reward mint", c.RewardMint),
	); err != nil {
		return err
	}
	if c.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

func BuildWithdrawTreasuryInstruction(programID solana.PublicKey, config WithdrawTreasuryInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	treasuryVault, _, err := DeriveTreasuryVaultPDA(programID, config.GlobalConfig, config.RewardMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive treasury vault: %w", err)
	}
	authority, _, err := DeriveTreasuryVaultsAuthorityPDA(programID, config.GlobalConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to derive treasury vaults authority: %w", err)
	}
	tokenProgram := tokenProgramOrDefault(config.TokenProgram)
	destination := config.Destination
	if destination.IsZero() {
		if destination, _, err = DeriveAssociatedTokenAddress(config.GlobalAdmin, config.RewardMint, tokenProgram); err != nil {
			return nil, fmt.Errorf("failed to derive destination token account: %w", err)
		}
	}
	args := struct{ Amount uint64 }{Amount: config.Amount}
	return newInstruction(programID, InstructionWithdrawTreasury, args,
		signer(config.GlobalAdmin, true),
		readonly(config.GlobalConfig),
		readonly(config.RewardMint),
		writable(treasuryVault),
		readonly(authority),
		writable(destination),
		readonly(tokenProgram),
	)
}
