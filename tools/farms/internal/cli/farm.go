package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/gagliardetto/solana-go"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type FarmCmd struct {
	newRPC RPCFactory
}

func NewFarmCmd(newRPC RPCFactory) *FarmCmd {
	return &FarmCmd{newRPC: newRPC}
}

func (c *FarmCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farm",
		Short: "Inspect farm accounts",
	}
	cmd.AddCommand(
		c.showCmd(),
		c.listCmd(),
		c.rewardsCmd(),
		c.exportConfigCmd(),
	)
	return cmd
}

func (c *FarmCmd) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <farm>",
		Short: "Show a farm's state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			farmKey, err := parsePubkeyArg("farm", args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd, c.newRPC, false)
			if err != nil {
				return err
			}
			farm, err := s.client.GetFarmState(cmd.Context(), farmKey)
			if err != nil {
				return fmt.Errorf("failed to get farm %s: %w", farmKey, err)
			}

			d := farm.Token.Decimals
			renderKV(cmd.OutOrStdout(), [][2]string{
				{"Farm", farmKey.String()},
				{"Admin", farm.FarmAdmin.String()},
				{"Global config", farm.GlobalConfig.String()},
				{"Staked mint", farm.Token.Mint.String()},
				{"Staked decimals", strconv.FormatUint(d, 10)},
				{"Time unit", farm.TimeUnit.String()},
				{"Delegated", yesNo(farm.IsDelegated())},
				{"Frozen", yesNo(farm.IsFarmFrozen != 0)},
				{"Users", strconv.FormatUint(farm.NumUsers, 10)},
				{"Reward slots", strconv.FormatUint(farm.NumRewardTokens, 10)},
				{"Total staked", tokens(farms.Uint64ToDecimal(farm.TotalStakedAmount), d)},
				{"Total active stake", tokens(farms.UnscaleWadUint128(farm.TotalActiveStakeScaled), d)},
				{"Total pending", tokens(farms.Uint64ToDecimal(farm.TotalPendingAmount), d)},
				{"Deposit cap", tokens(farms.Uint64ToDecimal(farm.DepositCapAmount), d)},
				{"Locking mode", farm.LockingMode.String()},
				{"Locking start", unixTime(farm.LockingStartTimestamp)},
				{"Locking duration", seconds(farm.LockingDuration)},
				{"Early withdrawal penalty (bps)", strconv.FormatUint(farm.LockingEarlyWithdrawalPenaltyBps, 10)},
				{"Deposit warmup", seconds(uint64(farm.DepositWarmupPeriod))},
				{"Withdrawal cooldown", seconds(uint64(farm.WithdrawalCooldownPeriod))},
				{"Scope prices", farm.ScopePrices.String()},
				{"Strategy", farm.StrategyID.String()},
				{"Delegate authority", farm.DelegateAuthority.String()},
			})
			return nil
		},
	}
}

func (c *FarmCmd) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List farms, optionally only those staking a mint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mintStr, err := cmd.Flags().GetString("mint")
			if err != nil {
				return fmt.Errorf("failed to get mint flag: %w", err)
			}
			s, err := newSession(cmd, c.newRPC, false)
			if err != nil {
				return err
			}

			var list []farms.FarmStateWithKey
			if mintStr != "" {
				mint, err := parsePubkeyArg("mint", mintStr)
				if err != nil {
					return err
				}
				list, err = s.client.GetFarmsForMint(cmd.Context(), mint)
				if err != nil {
					return fmt.Errorf("failed to get farms for mint %s: %w", mint, err)
				}
			} else {
				list, err = s.client.GetAllFarmStates(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get farms: %w", err)
				}
			}

			sort.Slice(list, func(i, j int) bool {
				return list[i].Key.String() < list[j].Key.String()
			})

			table := newTable(cmd.OutOrStdout(), "Farm", "Staked mint", "Delegated", "Rewards", "Users", "Total staked")
			for _, f := range list {
				table.Append([]string{
					f.Key.String(),
					f.State.Token.Mint.String(),
					yesNo(f.State.IsDelegated()),
					strconv.FormatUint(f.State.NumRewardTokens, 10),
					strconv.FormatUint(f.State.NumUsers, 10),
					tokens(farms.Uint64ToDecimal(f.State.TotalStakedAmount), f.State.Token.Decimals),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("mint", "", "Only list farms staking this mint")
	return cmd
}

func (c *FarmCmd) rewardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rewards <farm>",
		Short: "Show a farm's reward slots, current rates and runway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			farmKey, err := parsePubkeyArg("farm", args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd, c.newRPC, false)
			if err != nil {
				return err
			}
			farm, err := s.client.GetFarmState(cmd.Context(), farmKey)
			if err != nil {
				return fmt.Errorf("failed to get farm %s: %w", farmKey, err)
			}
			now, err := s.client.GetTimeSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			ts := now.For(farm)
			rates := farms.RewardsPerSecond(farm, ts)
			prices, err := s.client.GetPriceBook(cmd.Context(), map[solana.PublicKey]*farms.FarmState{farmKey: farm})
			if err != nil {
				return err
			}
			price, err := prices.PriceFor(farm)
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout(),
				"Index", "Mint", "Type",
				"Rate\n(per "+farm.TimeUnit.String()+")",
				"Available", "Issued\nunclaimed", "Runway",
			)
			for i := range farm.RewardInfos {
				r := &farm.RewardInfos[i]
				if !r.IsInitialized() {
					continue
				}
				runway := "-"
				left, ok, err := farms.IssuanceRunway(farm, i, ts, price)
				if err != nil {
					return fmt.Errorf("reward %d: %w", i, err)
				}
				if ok {
					runway = left.Truncate(0).String() + " " + farm.TimeUnit.String()
				}
				table.Append([]string{
					strconv.Itoa(i),
					r.Token.Mint.String(),
					r.RewardType.String(),
					rates[i].String(),
					tokens(farms.Uint64ToDecimal(r.RewardsAvailable), r.Token.Decimals),
					tokens(farms.Uint64ToDecimal(r.RewardsIssuedUnclaimed), r.Token.Decimals),
					runway,
				})
			}
			table.Render()
			return nil
		},
	}
}

// FarmConfigExport is the YAML document written by farm export-config.
type FarmConfigExport struct {
	Farm                      string               `yaml:"farm"`
	Admin                     string               `yaml:"admin"`
	StakedMint                string               `yaml:"staked_mint"`
	TimeUnit                  string               `yaml:"time_unit"`
	Delegated                 bool                 `yaml:"delegated"`
	DepositCapAmount          uint64               `yaml:"deposit_cap_amount"`
	DepositWarmupPeriod       uint32               `yaml:"deposit_warmup_period"`
	WithdrawalCooldownPeriod  uint32               `yaml:"withdrawal_cooldown_period"`
	LockingMode               string               `yaml:"locking_mode"`
	LockingStartTimestamp     uint64               `yaml:"locking_start_timestamp"`
	LockingDuration           uint64               `yaml:"locking_duration"`
	EarlyWithdrawalPenaltyBps uint64               `yaml:"early_withdrawal_penalty_bps"`
	ScopePrices               string               `yaml:"scope_prices,omitempty"`
	ScopeOraclePriceID        uint64               `yaml:"scope_oracle_price_id"`
	ScopeOracleMaxAge         uint64               `yaml:"scope_oracle_max_age"`
	StrategyID                string               `yaml:"strategy_id"`
	Rewards                   []RewardConfigExport `yaml:"rewards"`
}

type RewardConfigExport struct {
	Index                   int                `yaml:"index"`
	Mint                    string             `yaml:"mint"`
	Type                    string             `yaml:"type"`
	RewardsPerSecondDecimal uint8              `yaml:"rps_decimals"`
	MinClaimDuration        uint64             `yaml:"min_claim_duration_seconds"`
	Curve                   []CurvePointExport `yaml:"curve"`
}

type CurvePointExport struct {
	TsStart uint64 `yaml:"ts_start"`
	Rate    uint64 `yaml:"rate"`
}

// NewFarmConfigExport captures the configurable fields of a farm.
func NewFarmConfigExport(farmKey solana.PublicKey, farm *farms.FarmState) FarmConfigExport {
	out := FarmConfigExport{
		Farm:                      farmKey.String(),
		Admin:                     farm.FarmAdmin.String(),
		StakedMint:                farm.Token.Mint.String(),
		TimeUnit:                  farm.TimeUnit.String(),
		Delegated:                 farm.IsDelegated(),
		DepositCapAmount:          farm.DepositCapAmount,
		DepositWarmupPeriod:       farm.DepositWarmupPeriod,
		WithdrawalCooldownPeriod:  farm.WithdrawalCooldownPeriod,
		LockingMode:               farm.LockingMode.String(),
		LockingStartTimestamp:     farm.LockingStartTimestamp,
		LockingDuration:           farm.LockingDuration,
		EarlyWithdrawalPenaltyBps: farm.LockingEarlyWithdrawalPenaltyBps,
		ScopeOraclePriceID:        farm.ScopeOraclePriceID,
		ScopeOracleMaxAge:         farm.ScopeOracleMaxAge,
		StrategyID:                farm.StrategyID.String(),
		Rewards:                   []RewardConfigExport{},
	}
	if farm.HasOracle() {
		out.ScopePrices = farm.ScopePrices.String()
	}
	for i := range farm.RewardInfos {
		r := &farm.RewardInfos[i]
		if !r.IsInitialized() {
			continue
		}
		reward := RewardConfigExport{
			Index:                   i,
			Mint:                    r.Token.Mint.String(),
			Type:                    r.RewardType.String(),
			RewardsPerSecondDecimal: r.RewardsPerSecondDecimals,
			MinClaimDuration:        r.MinClaimDurationSeconds,
		}
		for _, p := range r.RewardScheduleCurve.ActivePoints() {
			reward.Curve = append(reward.Curve, CurvePointExport{TsStart: p.TsStart, Rate: p.RewardPerTimeUnit})
		}
		out.Rewards = append(out.Rewards, reward)
	}
	return out
}

func (c *FarmCmd) exportConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-config <farm>",
		Short: "Export a farm's configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			farmKey, err := parsePubkeyArg("farm", args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd, c.newRPC, false)
			if err != nil {
				return err
			}
			farm, err := s.client.GetFarmState(cmd.Context(), farmKey)
			if err != nil {
				return fmt.Errorf("failed to get farm %s: %w", farmKey, err)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(NewFarmConfigExport(farmKey, farm)); err != nil {
				return fmt.Errorf("failed to encode farm config: %w", err)
			}
			return enc.Close()
		},
	}
}
