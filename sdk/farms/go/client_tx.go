package farms

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

var ErrNothingToHarvest = errors.New("no initialized reward to harvest")

func (c *Client) signerKey() (solana.PublicKey, error) {
	if c.signer == nil {
		return solana.PublicKey{}, ErrNoPrivateKey
	}
	return c.signer.PublicKey(), nil
}

func (c *Client) execute(ctx context.Context, instructions ...solana.Instruction) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	sig, res, err := c.executor.ExecuteTransactions(ctx, instructions, nil)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to execute instruction: %w", err)
	}
	return sig, res, nil
}

// InitializeUser creates the signer's user state in farm.
func (c *Client) InitializeUser(ctx context.Context, farm solana.PublicKey) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	owner, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	ix, err := BuildInitializeUserInstruction(c.programID, InitializeUserInstructionConfig{
		Farm:      farm,
		Owner:     owner,
		Authority: owner,
		Payer:     owner,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, ix)
}

// Stake deposits amount base units of the farm token from the signer. The
// user state is created first when it does not exist yet.
func (c *Client) Stake(ctx context.Context, farmKey solana.PublicKey, amount uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	owner, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}

	var ixs []solana.Instruction
	userKey, err := c.UserStateAddress(farmKey, owner)
	if err != nil {
		return solana.Signature{}, nil, err
	}
	if _, err := c.GetUserState(ctx, userKey); errors.Is(err, ErrAccountNotFound) {
		ix, err := BuildInitializeUserInstruction(c.programID, InitializeUserInstructionConfig{
			Farm: farmKey, Owner: owner, Authority: owner, Payer: owner,
		})
		if err != nil {
			return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
		}
		ixs = append(ixs, ix)
	} else if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get user state %s: %w", userKey, err)
	}

	ix, err := BuildStakeInstruction(c.programID, StakeInstructionConfig{
		Owner:        owner,
		Farm:         farmKey,
		FarmVault:    farm.FarmVault,
		TokenMint:    farm.Token.Mint,
		TokenProgram: farm.Token.TokenProgram,
		ScopePrices:  farm.ScopePrices,
		Amount:       amount,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, append(ixs, ix)...)
}

// Unstake moves amount base units of the signer's active stake to pending
// withdrawal. The amount is converted to shares at the farm's current rate.
func (c *Client) Unstake(ctx context.Context, farmKey solana.PublicKey, amount decimal.Decimal) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	owner, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}
	shares := ConvertAmountToStake(amount,
		Uint64ToDecimal(farm.TotalStakedAmount),
		UnscaleWadUint128(farm.TotalActiveStakeScaled),
	)
	scaled := Uint128FromDecimal(ScaleWad(shares))
	ix, err := BuildUnstakeInstruction(c.programID, UnstakeInstructionConfig{
		Owner:               owner,
		Farm:                farmKey,
		ScopePrices:         farm.ScopePrices,
		StakeSharesScaledLo: scaled.Lo,
		StakeSharesScaledHi: scaled.Hi,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, ix)
}

// WithdrawUnstakedDeposits withdraws the signer's cooled-down unstaked tokens.
func (c *Client) WithdrawUnstakedDeposits(ctx context.Context, farmKey solana.PublicKey) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	owner, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}
	ix, err := BuildWithdrawUnstakedDepositsInstruction(c.programID, WithdrawUnstakedDepositsInstructionConfig{
		Owner:               owner,
		Farm:                farmKey,
		FarmVault:           farm.FarmVault,
		FarmVaultsAuthority: farm.FarmVaultsAuthority,
		TokenMint:           farm.Token.Mint,
		TokenProgram:        farm.Token.TokenProgram,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, ix)
}

func (c *Client) harvestInstructions(owner, farmKey, userState solana.PublicKey, farm *FarmState, rewardIndex int) ([]solana.Instruction, error) {
	reward, err := rewardInfoAt(farm, rewardIndex)
	if err != nil {
		return nil, err
	}
	if !reward.IsInitialized() {
		return nil, fmt.Errorf("%w: slot %d is not initialized", ErrRewardIndexOutOfRange, rewardIndex)
	}
	createATA, err := BuildCreateAssociatedTokenAccountIdempotentInstruction(owner, owner, reward.Token.Mint, reward.Token.TokenProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	harvest, err := BuildHarvestRewardInstruction(c.programID, HarvestRewardInstructionConfig{
		Owner:        owner,
		Farm:         farmKey,
		GlobalConfig: farm.GlobalConfig,
		RewardMint:   reward.Token.Mint,
		TokenProgram: reward.Token.TokenProgram,
		ScopePrices:  farm.ScopePrices,
		RewardIndex:  uint64(rewardIndex),
		UserState:    userState,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return []solana.Instruction{createATA, harvest}, nil
}

// Harvest claims one reward slot for the signer's direct position.
func (c *Client) Harvest(ctx context.Context, farmKey solana.PublicKey, rewardIndex int) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	owner, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}
	userKey, err := c.UserStateAddress(farmKey, owner)
	if err != nil {
		return solana.Signature{}, nil, err
	}
	ixs, err := c.harvestInstructions(owner, farmKey, userKey, farm, rewardIndex)
	if err != nil {
		return solana.Signature{}, nil, err
	}
	return c.execute(ctx, ixs...)
}

// HarvestAll claims every initialized reward slot for each of the signer's
// user states in farm, delegated ones included.
func (c *Client) HarvestAll(ctx context.Context, farmKey solana.PublicKey) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	owner, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}

	var userStates []solana.PublicKey
	if farm.IsDelegated() {
		users, err := c.GetAllUserStatesForUser(ctx, owner)
		if err != nil {
			return solana.Signature{}, nil, err
		}
		for _, u := range users {
			if u.State.FarmState.Equals(farmKey) {
				userStates = append(userStates, u.Key)
			}
		}
	} else {
		userKey, err := c.UserStateAddress(farmKey, owner)
		if err != nil {
			return solana.Signature{}, nil, err
		}
		userStates = append(userStates, userKey)
	}

	var ixs []solana.Instruction
	for _, userState := range userStates {
		for i := 0; i < int(min(farm.NumRewardTokens, MaxRewardsTokens)); i++ {
			if !farm.RewardInfos[i].IsInitialized() {
				continue
			}
			harvest, err := c.harvestInstructions(owner, farmKey, userState, farm, i)
			if err != nil {
				return solana.Signature{}, nil, err
			}
			ixs = append(ixs, harvest...)
		}
	}
	if len(ixs) == 0 {
		return solana.Signature{}, nil, ErrNothingToHarvest
	}
	return c.execute(ctx, ixs...)
}

// RefreshFarm advances the farm's reward accumulators on chain.
func (c *Client) RefreshFarm(ctx context.Context, farmKey solana.PublicKey) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}
	ix, err := BuildRefreshFarmInstruction(c.programID, RefreshFarmInstructionConfig{
		Farm:        farmKey,
		ScopePrices: farm.ScopePrices,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, ix)
}

// RefreshUser refreshes the farm and then the given user state.
func (c *Client) RefreshUser(ctx context.Context, farmKey, userState solana.PublicKey) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}
	refreshFarm, err := BuildRefreshFarmInstruction(c.programID, RefreshFarmInstructionConfig{
		Farm:        farmKey,
		ScopePrices: farm.ScopePrices,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	refreshUser, err := BuildRefreshUserStateInstruction(c.programID, RefreshUserStateInstructionConfig{
		UserState:   userState,
		Farm:        farmKey,
		ScopePrices: farm.ScopePrices,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, refreshFarm, refreshUser)
}

// UpdateFarmConfig applies a single config change signed by the signer.
func (c *Client) UpdateFarmConfig(ctx context.Context, farmKey solana.PublicKey, update FarmConfigUpdate) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	admin, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}
	scopePrices := farm.ScopePrices
	if update.Option == FarmConfigScopePricesAccount {
		scopePrices = update.Pubkey
	}
	ix, err := BuildUpdateFarmConfigInstruction(c.programID, UpdateFarmConfigInstructionConfig{
		Signer:      admin,
		Farm:        farmKey,
		ScopePrices: scopePrices,
		Update:      update,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, ix)
}

// AddRewards tops up a reward slot from the signer's token account.
func (c *Client) AddRewards(ctx context.Context, farmKey solana.PublicKey, rewardIndex int, amount uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	payer, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}
	reward, err := rewardInfoAt(farm, rewardIndex)
	if err != nil {
		return solana.Signature{}, nil, err
	}
	ix, err := BuildAddRewardsInstruction(c.programID, RewardTransferInstructionConfig{
		Authority:    payer,
		Farm:         farmKey,
		RewardMint:   reward.Token.Mint,
		TokenProgram: reward.Token.TokenProgram,
		ScopePrices:  farm.ScopePrices,
		RewardIndex:  uint64(rewardIndex),
		Amount:       amount,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, ix)
}

// TransferOwnership hands the signer's user state in farm to newOwner.
func (c *Client) TransferOwnership(ctx context.Context, farmKey, newOwner solana.PublicKey) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	owner, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	userKey, err := c.UserStateAddress(farmKey, owner)
	if err != nil {
		return solana.Signature{}, nil, err
	}
	ix, err := BuildTransferOwnershipInstruction(c.programID, TransferOwnershipInstructionConfig{
		Owner:     owner,
		UserState: userKey,
		NewOwner:  newOwner,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, ix)
}
