package farms

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// Page is one slice of a user-state scan.
type Page struct {
	Items      []UserStateWithKey
	NextCursor int
	More       bool
}

// UserStatePager walks user states page by page. Matching keys are listed
// once, without account data, and each page fetches only its own accounts.
type UserStatePager struct {
	client  *Client
	filters []solanarpc.RPCFilter

	mu     sync.Mutex
	loaded bool
	keys   []solana.PublicKey
}

// NewUserStatePager pages over the user states of farm, or over every user
// state when farm is zero.
func (c *Client) NewUserStatePager(farm solana.PublicKey) *UserStatePager {
	var filters []solanarpc.RPCFilter
	if farm.IsZero() {
		filters = userFilters()
	} else {
		filters = userFilters(memcmpKey(OffsetUserFarmState, farm))
	}
	return &UserStatePager{client: c, filters: filters}
}

func (p *UserStatePager) loadKeys(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return nil
	}
	zero := uint64(0)
	accounts, err := p.client.getProgramAccounts(ctx, &solanarpc.GetProgramAccountsOpts{
		Filters:   p.filters,
		DataSlice: &solanarpc.DataSlice{Offset: &zero, Length: &zero},
	})
	if err != nil {
		return fmt.Errorf("failed to list user state keys: %w", err)
	}
	keys := make([]solana.PublicKey, 0, len(accounts))
	for _, a := range accounts {
		keys = append(keys, a.Pubkey)
	}
	slices.SortFunc(keys, func(a, b solana.PublicKey) int {
		return bytes.Compare(a[:], b[:])
	})
	p.keys = keys
	p.loaded = true
	return nil
}

// Len returns the number of user states the pager walks.
func (p *UserStatePager) Len(ctx context.Context) (int, error) {
	if err := p.loadKeys(ctx); err != nil {
		return 0, err
	}
	return len(p.keys), nil
}

// Page returns up to size user states starting at cursor. Accounts that are
// foreign to the program or fail to decode are skipped but still advance the
// cursor.
func (p *UserStatePager) Page(ctx context.Context, cursor, size int) (Page, error) {
	if size <= 0 {
		return Page{}, fmt.Errorf("page size must be positive, got %d", size)
	}
	if err := p.loadKeys(ctx); err != nil {
		return Page{}, err
	}
	if cursor < 0 || cursor > len(p.keys) {
		return Page{}, fmt.Errorf("cursor %d out of range [0, %d]", cursor, len(p.keys))
	}

	end := min(cursor+size, len(p.keys))
	keys := p.keys[cursor:end]
	accounts, err := p.client.fetchMultiple(ctx, keys)
	if err != nil {
		return Page{}, err
	}

	items := make([]UserStateWithKey, 0, len(keys))
	for i, acct := range accounts {
		if acct == nil {
			continue
		}
		if err := p.client.checkOwner(acct); err != nil {
			p.client.log.Warn("Skipping user state account", "pubkey", keys[i], "error", err)
			continue
		}
		state, err := DeserializeUserState(accountData(acct))
		if err != nil {
			p.client.log.Warn("Failed to deserialize user state account", "pubkey", keys[i], "error", err)
			continue
		}
		items = append(items, UserStateWithKey{Key: keys[i], State: state})
	}
	return Page{Items: items, NextCursor: end, More: end < len(p.keys)}, nil
}
