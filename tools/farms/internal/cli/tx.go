package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gagliardetto/solana-go"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var ErrFractionalBaseUnits = errors.New("amount has more decimals than the token")

type TxCmd struct {
	newRPC RPCFactory
}

func NewTxCmd(newRPC RPCFactory) *TxCmd {
	return &TxCmd{newRPC: newRPC}
}

func (c *TxCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Sign and submit farm transactions with --keypair",
	}
	cmd.AddCommand(
		c.farmTx("init-user", "Create the signer's user state in a farm", func(s *session, cmd *cobra.Command, farm solana.PublicKey, _ []string) (solana.Signature, error) {
			sig, _, err := s.client.InitializeUser(cmd.Context(), farm)
			return sig, err
		}),
		c.stakeCmd(),
		c.unstakeCmd(),
		c.harvestCmd(),
		c.farmTx("refresh-farm", "Accrue a farm's rewards up to now", func(s *session, cmd *cobra.Command, farm solana.PublicKey, _ []string) (solana.Signature, error) {
			sig, _, err := s.client.RefreshFarm(cmd.Context(), farm)
			return sig, err
		}),
		c.refreshUserCmd(),
		c.farmTx("withdraw-unstaked", "Withdraw the signer's cooled-down unstaked tokens", func(s *session, cmd *cobra.Command, farm solana.PublicKey, _ []string) (solana.Signature, error) {
			sig, _, err := s.client.WithdrawUnstakedDeposits(cmd.Context(), farm)
			return sig, err
		}),
		c.updateFarmConfigCmd(),
		c.topUpRewardCmd(),
	)
	return cmd
}

type farmTxFunc func(s *session, cmd *cobra.Command, farm solana.PublicKey, rest []string) (solana.Signature, error)

// farmTx builds a command whose first argument is the farm address.
func (c *TxCmd) farmTx(name, short string, run farmTxFunc, extraArgs ...string) *cobra.Command {
	use := name + " <farm>"
	for _, a := range extraArgs {
		use += " <" + a + ">"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1 + len(extraArgs)),
		RunE: func(cmd *cobra.Command, args []string) error {
			farmKey, err := parsePubkeyArg("farm", args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd, c.newRPC, true)
			if err != nil {
				return err
			}
			sig, err := run(s, cmd, farmKey, args[1:])
			if err != nil {
				return fmt.Errorf("%s failed: %w", name, err)
			}
			s.log.Info("Transaction finalized", "command", name, "signature", sig)
			printSignature(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}

// toBaseUnits converts a token amount to whole base units of the farm's
// staked token.
func toBaseUnits(raw string, tokenDecimals uint64) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", farms.ErrZeroAmount, raw)
	}
	base := farms.ToBaseUnits(amount, tokenDecimals)
	if !base.Equal(base.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("%w: %s with %d decimals", ErrFractionalBaseUnits, raw, tokenDecimals)
	}
	return base, nil
}

func (c *TxCmd) stakeCmd() *cobra.Command {
	return c.farmTx("stake", "Stake a token amount into a farm", func(s *session, cmd *cobra.Command, farmKey solana.PublicKey, rest []string) (solana.Signature, error) {
		farm, err := s.client.GetFarmState(cmd.Context(), farmKey)
		if err != nil {
			return solana.Signature{}, err
		}
		base, err := toBaseUnits(rest[0], farm.Token.Decimals)
		if err != nil {
			return solana.Signature{}, err
		}
		if base.GreaterThan(farms.Uint64ToDecimal(math.MaxUint64)) {
			return solana.Signature{}, fmt.Errorf("amount %s does not fit in u64", base)
		}
		sig, _, err := s.client.Stake(cmd.Context(), farmKey, base.BigInt().Uint64())
		return sig, err
	}, "amount")
}

func (c *TxCmd) unstakeCmd() *cobra.Command {
	return c.farmTx("unstake", "Unstake a token amount from a farm", func(s *session, cmd *cobra.Command, farmKey solana.PublicKey, rest []string) (solana.Signature, error) {
		farm, err := s.client.GetFarmState(cmd.Context(), farmKey)
		if err != nil {
			return solana.Signature{}, err
		}
		base, err := toBaseUnits(rest[0], farm.Token.Decimals)
		if err != nil {
			return solana.Signature{}, err
		}
		sig, _, err := s.client.Unstake(cmd.Context(), farmKey, base)
		return sig, err
	}, "amount")
}

func (c *TxCmd) harvestCmd() *cobra.Command {
	cmd := c.farmTx("harvest", "Claim rewards; every initialized reward unless --reward-index is set", func(s *session, cmd *cobra.Command, farmKey solana.PublicKey, _ []string) (solana.Signature, error) {
		index, err := cmd.Flags().GetInt("reward-index")
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to get reward-index flag: %w", err)
		}
		if index < 0 {
			sig, _, err := s.client.HarvestAll(cmd.Context(), farmKey)
			return sig, err
		}
		sig, _, err := s.client.Harvest(cmd.Context(), farmKey, index)
		return sig, err
	})
	cmd.Flags().Int("reward-index", -1, "Reward slot to harvest")
	return cmd
}

func (c *TxCmd) refreshUserCmd() *cobra.Command {
	return c.farmTx("refresh-user", "Accrue a user state's rewards up to now", func(s *session, cmd *cobra.Command, farmKey solana.PublicKey, rest []string) (solana.Signature, error) {
		userState, err := parsePubkeyArg("user state", rest[0])
		if err != nil {
			return solana.Signature{}, err
		}
		sig, _, err := s.client.RefreshUser(cmd.Context(), farmKey, userState)
		return sig, err
	}, "user-state")
}

func (c *TxCmd) updateFarmConfigCmd() *cobra.Command {
	cmd := c.farmTx("update-farm-config", "Change one farm setting as the farm admin", func(s *session, cmd *cobra.Command, farmKey solana.PublicKey, rest []string) (solana.Signature, error) {
		index, err := cmd.Flags().GetUint64("reward-index")
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to get reward-index flag: %w", err)
		}
		option, err := farms.ParseFarmConfigOption(rest[0])
		if err != nil {
			return solana.Signature{}, err
		}
		update, err := farms.ParseFarmConfigUpdate(option, index, rest[1])
		if err != nil {
			return solana.Signature{}, err
		}
		sig, _, err := s.client.UpdateFarmConfig(cmd.Context(), farmKey, update)
		return sig, err
	}, "option", "value")
	cmd.Flags().Uint64("reward-index", 0, "Reward slot for reward-indexed options and curves")
	return cmd
}

func (c *TxCmd) topUpRewardCmd() *cobra.Command {
	return c.farmTx("top-up-reward", "Deposit reward tokens into a reward slot", func(s *session, cmd *cobra.Command, farmKey solana.PublicKey, rest []string) (solana.Signature, error) {
		index, err := strconv.Atoi(rest[0])
		if err != nil {
			return solana.Signature{}, fmt.Errorf("invalid reward index %q: %w", rest[0], err)
		}
		amount, err := strconv.ParseUint(rest[1], 10, 64)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("invalid base-unit amount %q: %w", rest[1], err)
		}
		sig, _, err := s.client.AddRewards(cmd.Context(), farmKey, index, amount)
		return sig, err
	}, "reward-index", "base-units")
}
