package farms

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// GetPriceBook fetches the oracle price accounts referenced by farms.
func (c *Client) GetPriceBook(ctx context.Context, farms map[solana.PublicKey]*FarmState) (PriceBook, error) {
	book := make(PriceBook)
	for _, f := range farms {
		if !f.HasOracle() {
			continue
		}
		if _, ok := book[f.ScopePrices]; ok {
			continue
		}
		prices, err := c.GetOraclePrices(ctx, f.ScopePrices)
		if err != nil {
			return nil, fmt.Errorf("failed to get oracle prices %s: %w", f.ScopePrices, err)
		}
		book[f.ScopePrices] = prices
	}
	return book, nil
}

// GetAllFarmsForUser returns the owner's non-empty positions keyed by farm.
// A nil filter includes every farm.
func (c *Client) GetAllFarmsForUser(ctx context.Context, owner solana.PublicKey, filter StrategyFilter) (map[solana.PublicKey]*UserFarm, error) {
	users, err := c.GetAllUserStatesForUser(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return map[solana.PublicKey]*UserFarm{}, nil
	}

	seen := make(map[solana.PublicKey]struct{})
	var farmKeys []solana.PublicKey
	for _, u := range users {
		if _, ok := seen[u.State.FarmState]; ok {
			continue
		}
		seen[u.State.FarmState] = struct{}{}
		farmKeys = append(farmKeys, u.State.FarmState)
	}

	fetched, err := c.GetFarmStates(ctx, farmKeys)
	if err != nil {
		return nil, err
	}
	farms := make(map[solana.PublicKey]*FarmState, len(fetched))
	for _, f := range fetched {
		if filter.Allows(f.State.StrategyID) {
			farms[f.Key] = f.State
		}
	}
	if len(farms) == 0 {
		return map[solana.PublicKey]*UserFarm{}, nil
	}

	prices, err := c.GetPriceBook(ctx, farms)
	if err != nil {
		return nil, err
	}
	now, err := c.GetTimeSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateUserFarms(farms, users, now, prices, filter)
}

// GetUserForUndelegatedFarm returns the owner's direct position in farm.
func (c *Client) GetUserForUndelegatedFarm(ctx context.Context, owner, farmKey solana.PublicKey) (*UserFarm, error) {
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}
	userKey, err := c.UserStateAddress(farmKey, owner)
	if err != nil {
		return nil, err
	}
	user, err := c.GetUserState(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get user state %s: %w", userKey, err)
	}
	prices, err := c.GetPriceBook(ctx, map[solana.PublicKey]*FarmState{farmKey: farm})
	if err != nil {
		return nil, err
	}
	now, err := c.GetTimeSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return UserFarmForUndelegatedFarm(farmKey, farm, userKey, user, now, prices)
}

// GetLockupDurationAndExpiry returns the owner's lock window in farm. An
// owner with no user state yet is evaluated as if staking now.
func (c *Client) GetLockupDurationAndExpiry(ctx context.Context, farmKey, owner solana.PublicKey) (Lockup, error) {
	farm, err := c.GetFarmState(ctx, farmKey)
	if err != nil {
		return Lockup{}, fmt.Errorf("failed to get farm %s: %w", farmKey, err)
	}
	if farm.LockingMode == LockingModeNone {
		return LockupDurationAndExpiry(farm, nil, 0)
	}

	var user *UserState
	if farm.LockingMode == LockingModeContinuous {
		userKey, err := c.UserStateAddress(farmKey, owner)
		if err != nil {
			return Lockup{}, err
		}
		user, err = c.GetUserState(ctx, userKey)
		if err != nil && !errors.Is(err, ErrAccountNotFound) {
			return Lockup{}, fmt.Errorf("failed to get user state %s: %w", userKey, err)
		}
	}

	now, err := c.GetTimeSnapshot(ctx)
	if err != nil {
		return Lockup{}, err
	}
	return LockupDurationAndExpiry(farm, user, now.UnixTimestamp)
}
