package farms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v5"
	"github.com/dgraph-io/ristretto"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jellydator/ttlcache/v3"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAccountOwner = errors.New("account is not owned by the farms program")
)

type Client struct {
	log       *slog.Logger
	rpc       RPCClient
	programID solana.PublicKey
	executor  *executor

	signer       *solana.PrivateKey
	executorOpts []ExecutorOption

	batchSize   int
	concurrency int
	maxAttempts uint
	backoff     func() backoff.BackOff

	cacheTTL time.Duration
	cache    *ttlcache.Cache[solana.PublicKey, any]

	pdas *ristretto.Cache

	fetchPool pond.ResultPool[[]*solanarpc.Account]
}

type Option func(*Client)

// WithSigner sets the key that pays for and signs transactions.
func WithSigner(signer *solana.PrivateKey) Option {
	return func(c *Client) {
		c.signer = signer
	}
}

func WithExecutorOptions(opts ...ExecutorOption) Option {
	return func(c *Client) {
		c.executorOpts = append(c.executorOpts, opts...)
	}
}

// WithCacheTTL caches farm and global config reads for ttl.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

func WithBatchSize(n int) Option {
	return func(c *Client) {
		c.batchSize = n
	}
}

func WithFetchConcurrency(n int) Option {
	return func(c *Client) {
		c.concurrency = n
	}
}

// WithRetry bounds the attempts made for each RPC read and sets the backoff
// between them.
func WithRetry(maxAttempts uint, newBackOff func() backoff.BackOff) Option {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		if newBackOff != nil {
			c.backoff = newBackOff
		}
	}
}

func New(log *slog.Logger, rpc RPCClient, programID solana.PublicKey, opts ...Option) (*Client, error) {
	c := &Client{
		log:         log,
		rpc:         rpc,
		programID:   programID,
		batchSize:   DefaultBatchSize,
		concurrency: defaultFetchConcurrency,
		maxAttempts: DefaultMaxAttempts,
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.batchSize <= 0 || c.batchSize > DefaultBatchSize {
		return nil, fmt.Errorf("batch size must be in [1, %d], got %d", DefaultBatchSize, c.batchSize)
	}
	if c.concurrency <= 0 {
		return nil, fmt.Errorf("fetch concurrency must be positive, got %d", c.concurrency)
	}

	if c.cacheTTL > 0 {
		c.cache = ttlcache.New(ttlcache.WithTTL[solana.PublicKey, any](c.cacheTTL))
	}

	pdas, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     10_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create pda cache: %w", err)
	}
	c.pdas = pdas

	c.fetchPool = pond.NewResultPool[[]*solanarpc.Account](c.concurrency)
	c.executor = newExecutor(log, rpc, c.signer, c.executorOpts...)
	return c, nil
}

func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

func (c *Client) Signer() *solana.PrivateKey {
	return c.signer
}

// retry runs op with the client's backoff until it succeeds, returns a
// permanent error, or the attempt budget is spent.
func retry[T any](ctx context.Context, c *Client, what string, op func() (T, error)) (T, error) {
	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		if attempt > 1 {
			c.log.Warn("Retrying RPC read", "what", what, "attempt", attempt)
		}
		return op()
	}, backoff.WithBackOff(c.backoff()), backoff.WithMaxTries(c.maxAttempts))
}

// fetchAccount reads a single account, mapping a missing account to
// ErrAccountNotFound.
func (c *Client) fetchAccount(ctx context.Context, key solana.PublicKey) (*solanarpc.Account, error) {
	account, err := retry(ctx, c, "account "+key.String(), func() (*solanarpc.GetAccountInfoResult, error) {
		res, err := c.rpc.GetAccountInfo(ctx, key)
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, backoff.Permanent(ErrAccountNotFound)
		}
		return res, err
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account data: %w", err)
	}
	if account == nil || account.Value == nil {
		return nil, ErrAccountNotFound
	}
	return account.Value, nil
}

// fetchAccountData reads a single account that must be owned by the program.
func (c *Client) fetchAccountData(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	account, err := c.fetchAccount(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := c.checkOwner(account); err != nil {
		return nil, fmt.Errorf("account %s: %w", key, err)
	}
	return accountData(account), nil
}

func (c *Client) checkOwner(account *solanarpc.Account) error {
	if !account.Owner.Equals(c.programID) {
		return fmt.Errorf("%w: owner %s", ErrInvalidAccountOwner, account.Owner)
	}
	return nil
}

// Cached accounts are stored and returned by value so callers never share
// state with the cache.
func (c *Client) cached(key solana.PublicKey) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	item := c.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (c *Client) setCached(key solana.PublicKey, v any) {
	if c.cache == nil {
		return
	}
	c.cache.Set(key, v, ttlcache.DefaultTTL)
}

// GetFarmState fetches and decodes a FarmState account.
func (c *Client) GetFarmState(ctx context.Context, farm solana.PublicKey) (*FarmState, error) {
	if v, ok := c.cached(farm); ok {
		if state, ok := v.(FarmState); ok {
			return &state, nil
		}
	}
	data, err := c.fetchAccountData(ctx, farm)
	if err != nil {
		return nil, err
	}
	state, err := DeserializeFarmState(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize farm state %s: %w", farm, err)
	}
	c.setCached(farm, *state)
	return state, nil
}

// GetUserState fetches and decodes a UserState account. User states are
// never cached.
func (c *Client) GetUserState(ctx context.Context, userState solana.PublicKey) (*UserState, error) {
	data, err := c.fetchAccountData(ctx, userState)
	if err != nil {
		return nil, err
	}
	state, err := DeserializeUserState(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize user state %s: %w", userState, err)
	}
	return state, nil
}

// GetGlobalConfig fetches and decodes a GlobalConfig account.
func (c *Client) GetGlobalConfig(ctx context.Context, globalConfig solana.PublicKey) (*GlobalConfig, error) {
	if v, ok := c.cached(globalConfig); ok {
		if cfg, ok := v.(GlobalConfig); ok {
			return &cfg, nil
		}
	}
	data, err := c.fetchAccountData(ctx, globalConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := DeserializeGlobalConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize global config %s: %w", globalConfig, err)
	}
	c.setCached(globalConfig, *cfg)
	return cfg, nil
}

// GetOraclePrices fetches and decodes an oracle price account. Price
// accounts belong to the oracle program, so their owner is not checked.
func (c *Client) GetOraclePrices(ctx context.Context, prices solana.PublicKey) (*OraclePrices, error) {
	account, err := c.fetchAccount(ctx, prices)
	if err != nil {
		return nil, err
	}
	out, err := DeserializeOraclePrices(accountData(account))
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize oracle prices %s: %w", prices, err)
	}
	return out, nil
}

// UserStateAddress returns the user state PDA of owner in farm.
func (c *Client) UserStateAddress(farm, owner solana.PublicKey) (solana.PublicKey, error) {
	cacheKey := string(farm[:]) + string(owner[:])
	if v, ok := c.pdas.Get(cacheKey); ok {
		return v.(solana.PublicKey), nil
	}
	pda, _, err := DeriveUserStatePDA(c.programID, farm, owner)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive user state PDA: %w", err)
	}
	c.pdas.Set(cacheKey, pda, 1)
	c.pdas.Wait()
	return pda, nil
}

// GetCurrentTimeUnit returns the chain clock in the farm's time unit: the
// current slot for slot-based farms, otherwise the block time.
func (c *Client) GetCurrentTimeUnit(ctx context.Context, farm *FarmState) (uint64, error) {
	now, err := c.GetTimeSnapshot(ctx)
	if err != nil {
		return 0, err
	}
	return now.For(farm), nil
}

// GetTimeSnapshot reads the current slot and its block time.
func (c *Client) GetTimeSnapshot(ctx context.Context) (TimeSnapshot, error) {
	slot, err := retry(ctx, c, "slot", func() (uint64, error) {
		return c.rpc.GetSlot(ctx, solanarpc.CommitmentConfirmed)
	})
	if err != nil {
		return TimeSnapshot{}, fmt.Errorf("failed to get current slot: %w", err)
	}
	blockTime, err := retry(ctx, c, "block time", func() (*solana.UnixTimeSeconds, error) {
		bt, err := c.rpc.GetBlockTime(ctx, slot)
		if err != nil {
			return nil, err
		}
		if bt == nil {
			return nil, fmt.Errorf("no block time for slot %d", slot)
		}
		return bt, nil
	})
	if err != nil {
		return TimeSnapshot{}, fmt.Errorf("failed to get block time: %w", err)
	}
	return TimeSnapshot{UnixTimestamp: uint64(*blockTime), Slot: slot}, nil
}
