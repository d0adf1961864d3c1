package farms

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// fetchMultiple reads keys in batches, fetching batches concurrently. The
// result is aligned with keys; missing accounts are nil.
func (c *Client) fetchMultiple(ctx context.Context, keys []solana.PublicKey) ([]*solanarpc.Account, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	group := c.fetchPool.NewGroupContext(ctx)
	for start := 0; start < len(keys); start += c.batchSize {
		batch := keys[start:min(start+c.batchSize, len(keys))]
		group.SubmitErr(func() ([]*solanarpc.Account, error) {
			res, err := retry(ctx, c, fmt.Sprintf("%d accounts", len(batch)), func() (*solanarpc.GetMultipleAccountsResult, error) {
				return c.rpc.GetMultipleAccounts(ctx, batch...)
			})
			if err != nil {
				return nil, err
			}
			if res == nil || len(res.Value) != len(batch) {
				return nil, fmt.Errorf("unexpected getMultipleAccounts result length for %d keys", len(batch))
			}
			return res.Value, nil
		})
	}
	batches, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to get multiple accounts: %w", err)
	}
	out := make([]*solanarpc.Account, 0, len(keys))
	for _, b := range batches {
		out = append(out, b...)
	}
	return out, nil
}

func accountData(a *solanarpc.Account) []byte {
	if a == nil || a.Data == nil {
		return nil
	}
	return a.Data.GetBinary()
}

// GetFarmStates fetches the given farms. Missing, foreign or undecodable
// accounts are skipped.
func (c *Client) GetFarmStates(ctx context.Context, keys []solana.PublicKey) ([]FarmStateWithKey, error) {
	accounts, err := c.fetchMultiple(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]FarmStateWithKey, 0, len(accounts))
	for i, acct := range accounts {
		if acct == nil {
			c.log.Warn("Farm account not found", "pubkey", keys[i])
			continue
		}
		if err := c.checkOwner(acct); err != nil {
			c.log.Warn("Skipping farm account", "pubkey", keys[i], "error", err)
			continue
		}
		state, err := DeserializeFarmState(accountData(acct))
		if err != nil {
			c.log.Warn("Failed to deserialize farm state account", "pubkey", keys[i], "error", err)
			continue
		}
		c.setCached(keys[i], *state)
		out = append(out, FarmStateWithKey{Key: keys[i], State: state})
	}
	return out, nil
}

func (c *Client) getProgramAccounts(ctx context.Context, opts *solanarpc.GetProgramAccountsOpts) (solanarpc.GetProgramAccountsResult, error) {
	return retry(ctx, c, "program accounts", func() (solanarpc.GetProgramAccountsResult, error) {
		return c.rpc.GetProgramAccountsWithOpts(ctx, c.programID, opts)
	})
}

func farmFilters(extra ...solanarpc.RPCFilter) []solanarpc.RPCFilter {
	return append([]solanarpc.RPCFilter{
		{DataSize: SizeFarmState},
		{Memcmp: &solanarpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(DiscriminatorFarmState[:])}},
	}, extra...)
}

func userFilters(extra ...solanarpc.RPCFilter) []solanarpc.RPCFilter {
	return append([]solanarpc.RPCFilter{
		{DataSize: SizeUserState},
		{Memcmp: &solanarpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(DiscriminatorUserState[:])}},
	}, extra...)
}

func memcmpKey(offset uint64, key solana.PublicKey) solanarpc.RPCFilter {
	return solanarpc.RPCFilter{Memcmp: &solanarpc.RPCFilterMemcmp{Offset: offset, Bytes: solana.Base58(key.Bytes())}}
}

func (c *Client) scanFarms(ctx context.Context, filters []solanarpc.RPCFilter) ([]FarmStateWithKey, error) {
	accounts, err := c.getProgramAccounts(ctx, &solanarpc.GetProgramAccountsOpts{Filters: filters})
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}
	out := make([]FarmStateWithKey, 0, len(accounts))
	for _, acct := range accounts {
		state, err := DeserializeFarmState(accountData(acct.Account))
		if err != nil {
			c.log.Warn("Failed to deserialize farm state account", "pubkey", acct.Pubkey, "error", err)
			continue
		}
		out = append(out, FarmStateWithKey{Key: acct.Pubkey, State: state})
	}
	return out, nil
}

func (c *Client) scanUsers(ctx context.Context, filters []solanarpc.RPCFilter) ([]UserStateWithKey, error) {
	accounts, err := c.getProgramAccounts(ctx, &solanarpc.GetProgramAccountsOpts{Filters: filters})
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}
	out := make([]UserStateWithKey, 0, len(accounts))
	for _, acct := range accounts {
		state, err := DeserializeUserState(accountData(acct.Account))
		if err != nil {
			c.log.Warn("Failed to deserialize user state account", "pubkey", acct.Pubkey, "error", err)
			continue
		}
		out = append(out, UserStateWithKey{Key: acct.Pubkey, State: state})
	}
	return out, nil
}

// GetAllFarmStates scans every farm owned by the program.
func (c *Client) GetAllFarmStates(ctx context.Context) ([]FarmStateWithKey, error) {
	return c.scanFarms(ctx, farmFilters())
}

// GetFarmsForMint returns the farms staking mint.
func (c *Client) GetFarmsForMint(ctx context.Context, mint solana.PublicKey) ([]FarmStateWithKey, error) {
	return c.scanFarms(ctx, farmFilters(memcmpKey(OffsetFarmTokenMint, mint)))
}

// GetAllUserStatesForUser returns every user state owned by owner.
func (c *Client) GetAllUserStatesForUser(ctx context.Context, owner solana.PublicKey) ([]UserStateWithKey, error) {
	return c.scanUsers(ctx, userFilters(memcmpKey(OffsetUserOwner, owner)))
}

// GetAllUserStatesForFarm returns every user state of farm.
func (c *Client) GetAllUserStatesForFarm(ctx context.Context, farm solana.PublicKey) ([]UserStateWithKey, error) {
	return c.scanUsers(ctx, userFilters(memcmpKey(OffsetUserFarmState, farm)))
}

// GetDelegatedUserStates returns the user states of farm that belong to a
// delegated farm.
func (c *Client) GetDelegatedUserStates(ctx context.Context, farm solana.PublicKey) ([]UserStateWithKey, error) {
	return c.scanUsers(ctx, userFilters(
		memcmpKey(OffsetUserFarmState, farm),
		solanarpc.RPCFilter{Memcmp: &solanarpc.RPCFilterMemcmp{Offset: OffsetUserIsFarmDelegated, Bytes: solana.Base58{1}}},
	))
}

// GetStakedAmountForMint sums the staked amount, in base units, across every
// farm staking mint.
func (c *Client) GetStakedAmountForMint(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	farms, err := c.GetFarmsForMint(ctx, mint)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, f := range farms {
		total += f.State.TotalStakedAmount
	}
	return total, nil
}
