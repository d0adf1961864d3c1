package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
	"gopkg.in/yaml.v3"
)

const (
	defaultConcurrency  = 4
	defaultSlotDuration = 400 * time.Millisecond
)

type FarmsClient interface {
	GetFarmStates(ctx context.Context, keys []solana.PublicKey) ([]farms.FarmStateWithKey, error)
	GetUserState(ctx context.Context, userState solana.PublicKey) (*farms.UserState, error)
	UserStateAddress(farm, owner solana.PublicKey) (solana.PublicKey, error)
	GetPriceBook(ctx context.Context, states map[solana.PublicKey]*farms.FarmState) (farms.PriceBook, error)
	GetTimeSnapshot(ctx context.Context) (farms.TimeSnapshot, error)
}

type Config struct {
	Logger   *slog.Logger
	Clock    clockwork.Clock
	Client   FarmsClient
	Metrics  *Metrics
	Interval time.Duration
	Watch    *WatchList

	// Concurrency bounds how many user positions are read at once.
	Concurrency int
	// SlotDuration converts runways of slot-based farms to seconds.
	SlotDuration time.Duration
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Client == nil {
		return errors.New("farms client is required")
	}
	if c.Metrics == nil {
		return errors.New("metrics are required")
	}
	if c.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if c.Watch == nil {
		return errors.New("watch list is required")
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("invalid watch list: %w", err)
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.SlotDuration <= 0 {
		c.SlotDuration = defaultSlotDuration
	}
	return nil
}

// WatchList names the farms and user positions exported as metrics.
type WatchList struct {
	Farms []WatchedFarm `yaml:"farms"`
	Users []WatchedUser `yaml:"users"`
}

type WatchedFarm struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`

	key solana.PublicKey
}

type WatchedUser struct {
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
	Farm  string `yaml:"farm"`

	owner solana.PublicKey
	farm  solana.PublicKey
}

func LoadWatchList(path string) (*WatchList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open watch list: %w", err)
	}
	defer f.Close()
	return ParseWatchList(f)
}

func ParseWatchList(r io.Reader) (*WatchList, error) {
	var w WatchList
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode watch list: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Validate parses every address and rejects empty or duplicate names.
func (w *WatchList) Validate() error {
	if len(w.Farms) == 0 && len(w.Users) == 0 {
		return errors.New("at least one farm or user is required")
	}
	names := make(map[string]struct{})
	for i := range w.Farms {
		f := &w.Farms[i]
		if f.Name == "" {
			return fmt.Errorf("farm %d: name is required", i)
		}
		if _, ok := names["farm/"+f.Name]; ok {
			return fmt.Errorf("duplicate farm name %q", f.Name)
		}
		names["farm/"+f.Name] = struct{}{}
		key, err := solana.PublicKeyFromBase58(f.Address)
		if err != nil {
			return fmt.Errorf("farm %q: invalid address: %w", f.Name, err)
		}
		f.key = key
	}
	for i := range w.Users {
		u := &w.Users[i]
		if u.Name == "" {
			return fmt.Errorf("user %d: name is required", i)
		}
		if _, ok := names["user/"+u.Name]; ok {
			return fmt.Errorf("duplicate user name %q", u.Name)
		}
		names["user/"+u.Name] = struct{}{}
		owner, err := solana.PublicKeyFromBase58(u.Owner)
		if err != nil {
			return fmt.Errorf("user %q: invalid owner: %w", u.Name, err)
		}
		farm, err := solana.PublicKeyFromBase58(u.Farm)
		if err != nil {
			return fmt.Errorf("user %q: invalid farm: %w", u.Name, err)
		}
		u.owner, u.farm = owner, farm
	}
	return nil
}

// farmKeys returns every distinct farm address referenced by the list.
func (w *WatchList) farmKeys() []solana.PublicKey {
	seen := make(map[solana.PublicKey]struct{})
	var keys []solana.PublicKey
	add := func(k solana.PublicKey) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, f := range w.Farms {
		add(f.key)
	}
	for _, u := range w.Users {
		add(u.farm)
	}
	return keys
}
