package farms

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

const (
	InstructionInitializeUser           = "initialize_user"
	InstructionStake                    = "stake"
	InstructionUnstake                  = "unstake"
	InstructionWithdrawUnstakedDeposits = "withdraw_unstaked_deposits"
	InstructionHarvestReward            = "harvest_reward"
	InstructionRefreshFarm              = "refresh_farm"
	InstructionRefreshUserState         = "refresh_user_state"
	InstructionTransferOwnership        = "transfer_ownership"
	InstructionUpdateFarmConfig         = "update_farm_config"
	InstructionAddRewards               = "add_rewards"
	InstructionWithdrawReward           = "withdraw_reward"
	InstructionUpdateFarmAdmin          = "update_farm_admin"
	InstructionInitializeFarm           = "initialize_farm"
	InstructionInitializeFarmDelegated  = "initialize_farm_delegated"
	InstructionInitializeReward         = "initialize_reward"
	InstructionRewardUserOnce           = "reward_user_once"
	InstructionDepositToFarmVault       = "deposit_to_farm_vault"
	InstructionWithdrawFromFarmVault    = "withdraw_from_farm_vault"
	InstructionWithdrawSlashedAmount    = "withdraw_slashed_amount"
	InstructionUpdateGlobalConfig       = "update_global_config"
	InstructionWithdrawTreasury         = "withdraw_treasury"
)

var ErrZeroAmount = errors.New("amount must be greater than zero")

// u128 is a little-endian 128-bit integer laid out the way borsh expects.
type u128 struct {
	Lo uint64
	Hi uint64
}

func newU128(lo, hi uint64) u128 { return u128{Lo: lo, Hi: hi} }

type namedKey struct {
	name string
	key  solana.PublicKey
}

func named(name string, k solana.PublicKey) namedKey { return namedKey{name: name, key: k} }

// requireKeys returns an error naming the first zero key.
func requireKeys(keys ...namedKey) error {
	for _, k := range keys {
		if k.key.IsZero() {
			return fmt.Errorf("%s public key is required", k.name)
		}
	}
	return nil
}

func readonly(k solana.PublicKey) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: k}
}

func writable(k solana.PublicKey) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: k, IsWritable: true}
}

func signer(k solana.PublicKey, isWritable bool) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: k, IsSigner: true, IsWritable: isWritable}
}

// optional returns the account for an optional slot. Unset optional
// accounts are passed as the program id.
func optional(programID, k solana.PublicKey) *solana.AccountMeta {
	if k.IsZero() {
		return readonly(programID)
	}
	return readonly(k)
}

func tokenProgramOrDefault(k solana.PublicKey) solana.PublicKey {
	if k.IsZero() {
		return solana.TokenProgramID
	}
	return k
}

// instructionData prefixes the borsh encoding of args with the instruction
// discriminator. args may be nil.
func instructionData(name string, args any) ([]byte, error) {
	disc := instructionDiscriminator(name)
	if args == nil {
		return disc[:], nil
	}
	body, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s args: %w", name, err)
	}
	return append(disc[:], body...), nil
}

func newInstruction(programID solana.PublicKey, name string, args any, accounts ...*solana.AccountMeta) (solana.Instruction, error) {
	data, err := instructionData(name, args)
	if err != nil {
		return nil, err
	}
	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
