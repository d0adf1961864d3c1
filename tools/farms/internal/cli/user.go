package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"github.com/spf13/cobra"
)

type UserCmd struct {
	newRPC RPCFactory
}

func NewUserCmd(newRPC RPCFactory) *UserCmd {
	return &UserCmd{newRPC: newRPC}
}

func (c *UserCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Inspect a wallet's farm positions",
	}
	cmd.AddCommand(
		c.farmsCmd(),
		c.pendingCmd(),
		c.lockupCmd(),
	)
	return cmd
}

func (c *UserCmd) farmsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farms <owner>",
		Short: "List every farm the owner has stake or pending rewards in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parsePubkeyArg("owner", args[0])
			if err != nil {
				return err
			}
			strategies, err := cmd.Flags().GetStringSlice("strategy")
			if err != nil {
				return fmt.Errorf("failed to get strategy flag: %w", err)
			}
			var filter farms.StrategyFilter
			if len(strategies) > 0 {
				ids := make([]solana.PublicKey, 0, len(strategies))
				for _, raw := range strategies {
					id, err := parsePubkeyArg("strategy", raw)
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
				filter = farms.NewStrategyFilter(ids...)
			}

			s, err := newSession(cmd, c.newRPC, false)
			if err != nil {
				return err
			}
			positions, err := s.client.GetAllFarmsForUser(cmd.Context(), owner, filter)
			if err != nil {
				return fmt.Errorf("failed to get farms for %s: %w", owner, err)
			}

			keys := make([]solana.PublicKey, 0, len(positions))
			for k := range positions {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

			table := newTable(cmd.OutOrStdout(), "Farm", "Staked mint", "Delegatees", "Active stake", "Pending rewards")
			for _, k := range keys {
				uf := positions[k]
				table.Append([]string{
					k.String(),
					uf.StakedToken.String(),
					strconv.Itoa(len(uf.ActiveStakeByDelegatee)),
					uf.TotalActiveStake().String(),
					formatPending(uf.PendingRewards),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringSlice("strategy", nil, "Only include farms with these strategy IDs")
	return cmd
}

// formatPending renders "index:amount" pairs in base units of each reward.
func formatPending(rewards []farms.PendingReward) string {
	parts := make([]string, 0, len(rewards))
	for _, pr := range rewards {
		parts = append(parts, fmt.Sprintf("%d:%s", pr.RewardIndex, pr.CumulatedPendingRewards))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func (c *UserCmd) pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending <owner> <farm>",
		Short: "Show the owner's pending rewards in a direct farm",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parsePubkeyArg("owner", args[0])
			if err != nil {
				return err
			}
			farmKey, err := parsePubkeyArg("farm", args[1])
			if err != nil {
				return err
			}
			s, err := newSession(cmd, c.newRPC, false)
			if err != nil {
				return err
			}
			uf, err := s.client.GetUserForUndelegatedFarm(cmd.Context(), owner, farmKey)
			if err != nil {
				return fmt.Errorf("failed to get position in %s: %w", farmKey, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User state: %s\nActive stake: %s\n", uf.UserStateAddress, uf.TotalActiveStake())
			table := newTable(cmd.OutOrStdout(), "Index", "Mint", "Type", "Pending\n(base units)")
			for _, pr := range uf.PendingRewards {
				table.Append([]string{
					strconv.Itoa(pr.RewardIndex),
					pr.RewardTokenMint.String(),
					pr.RewardType.String(),
					pr.CumulatedPendingRewards.String(),
				})
			}
			table.Render()
			return nil
		},
	}
}

func (c *UserCmd) lockupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lockup <owner> <farm>",
		Short: "Show the lock window that applies to the owner's stake",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parsePubkeyArg("owner", args[0])
			if err != nil {
				return err
			}
			farmKey, err := parsePubkeyArg("farm", args[1])
			if err != nil {
				return err
			}
			s, err := newSession(cmd, c.newRPC, false)
			if err != nil {
				return err
			}
			lockup, err := s.client.GetLockupDurationAndExpiry(cmd.Context(), farmKey, owner)
			if err != nil {
				return fmt.Errorf("failed to get lockup: %w", err)
			}
			renderKV(cmd.OutOrStdout(), [][2]string{
				{"Remaining", seconds(lockup.RemainingDuration)},
				{"Original", seconds(lockup.OriginalDuration)},
				{"Expiry", unixTime(lockup.Expiry)},
			})
			return nil
		},
	}
}
