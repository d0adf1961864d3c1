package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/gagliardetto/solana-go"
	farms "github.com/malbeclabs/farms/sdk/farms/go"
)

type Monitor struct {
	log  *slog.Logger
	cfg  *Config
	pool pond.Pool
}

func New(cfg *Config) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{
		log:  cfg.Logger.With("component", "farms-monitor"),
		cfg:  cfg,
		pool: pond.NewPool(cfg.Concurrency),
	}, nil
}

// Run ticks immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.pool.StopAndWait()

	if err := m.Tick(ctx); err != nil {
		m.log.Error("Failed to tick", "error", err)
	}

	ticker := m.cfg.Clock.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("Context done, stopping")
			return nil
		case <-ticker.Chan():
			if err := m.Tick(ctx); err != nil {
				m.log.Error("Failed to tick", "error", err)
			}
		}
	}
}

// Tick reads every watched farm and user position once and updates the
// gauges. Per-position failures are counted and logged; only failures that
// leave nothing to export are returned.
func (m *Monitor) Tick(ctx context.Context) error {
	start := m.cfg.Clock.Now()
	metrics := m.cfg.Metrics

	now, err := m.cfg.Client.GetTimeSnapshot(ctx)
	if err != nil {
		metrics.Errors.WithLabelValues(MetricErrorTypeGetTimeSnapshot).Inc()
		return fmt.Errorf("failed to get time snapshot: %w", err)
	}

	fetched, err := m.cfg.Client.GetFarmStates(ctx, m.cfg.Watch.farmKeys())
	if err != nil {
		metrics.Errors.WithLabelValues(MetricErrorTypeGetFarmStates).Inc()
		return fmt.Errorf("failed to get farm states: %w", err)
	}
	states := make(map[solana.PublicKey]*farms.FarmState, len(fetched))
	for _, f := range fetched {
		states[f.Key] = f.State
	}
	prices, err := m.cfg.Client.GetPriceBook(ctx, states)
	if err != nil {
		metrics.Errors.WithLabelValues(MetricErrorTypeGetPrices).Inc()
		m.log.Warn("Failed to get oracle prices", "error", err)
		prices = farms.PriceBook{}
	}

	for _, wf := range m.cfg.Watch.Farms {
		farm, ok := states[wf.key]
		if !ok {
			metrics.Errors.WithLabelValues(MetricErrorTypeFarmNotFound).Inc()
			m.log.Warn("Watched farm not found", "farm", wf.Name, "address", wf.key)
			continue
		}
		m.exportFarm(wf.Name, farm, now.For(farm), prices)
	}

	group := m.pool.NewGroup()
	for _, wu := range m.cfg.Watch.Users {
		farm, ok := states[wu.farm]
		if !ok {
			metrics.Errors.WithLabelValues(MetricErrorTypeFarmNotFound).Inc()
			m.log.Warn("Farm of watched user not found", "user", wu.Name, "farm", wu.farm)
			continue
		}
		group.Submit(func() {
			m.exportUser(ctx, wu, farm, now, prices)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	metrics.Ticks.Inc()
	m.log.Debug("Tick complete", "farms", len(m.cfg.Watch.Farms), "users", len(m.cfg.Watch.Users), "duration", m.cfg.Clock.Since(start))
	return nil
}

func (m *Monitor) exportFarm(name string, farm *farms.FarmState, ts uint64, prices farms.PriceBook) {
	metrics := m.cfg.Metrics
	price, priceErr := prices.PriceFor(farm)
	metrics.TotalStaked.WithLabelValues(name).Set(
		farms.ToDecimal(farms.Uint64ToDecimal(farm.TotalStakedAmount), farm.Token.Decimals).InexactFloat64(),
	)
	metrics.Users.WithLabelValues(name).Set(float64(farm.NumUsers))

	for i := range farm.RewardInfos {
		r := &farm.RewardInfos[i]
		if !r.IsInitialized() {
			continue
		}
		labels := []string{name, strconv.Itoa(i), r.Token.Mint.String()}
		metrics.RewardsAvailable.WithLabelValues(labels...).Set(
			farms.ToDecimal(farms.Uint64ToDecimal(r.RewardsAvailable), r.Token.Decimals).InexactFloat64(),
		)
		metrics.RewardRate.WithLabelValues(labels...).Set(
			farms.ToDecimal(farms.CurrentRewardPerTimeUnit(r, ts), r.Token.Decimals).InexactFloat64(),
		)

		if priceErr != nil {
			metrics.RewardRunway.DeleteLabelValues(labels...)
			m.log.Warn("Skipping runway without oracle price", "farm", name, "reward", i, "error", priceErr)
			continue
		}
		runway, ok, err := farms.IssuanceRunway(farm, i, ts, price)
		if err != nil {
			metrics.Errors.WithLabelValues(MetricErrorTypeCompute).Inc()
			m.log.Warn("Failed to compute runway", "farm", name, "reward", i, "error", err)
			continue
		}
		if !ok {
			metrics.RewardRunway.DeleteLabelValues(labels...)
			continue
		}
		seconds := runway.InexactFloat64()
		if farm.TimeUnit == farms.TimeUnitSlots {
			seconds *= m.cfg.SlotDuration.Seconds()
		}
		metrics.RewardRunway.WithLabelValues(labels...).Set(seconds)
		if seconds < time.Hour.Seconds()*24 {
			m.log.Warn("Reward runway below one day", "farm", name, "reward", i, "runway_seconds", seconds)
		}
	}
}

func (m *Monitor) exportUser(ctx context.Context, wu WatchedUser, farm *farms.FarmState, now farms.TimeSnapshot, prices farms.PriceBook) {
	metrics := m.cfg.Metrics
	log := m.log.With("user", wu.Name, "owner", wu.owner, "farm", wu.farm)

	userKey, err := m.cfg.Client.UserStateAddress(wu.farm, wu.owner)
	if err != nil {
		metrics.Errors.WithLabelValues(MetricErrorTypeCompute).Inc()
		log.Warn("Failed to derive user state address", "error", err)
		return
	}
	user, err := m.cfg.Client.GetUserState(ctx, userKey)
	if err != nil {
		metrics.Errors.WithLabelValues(MetricErrorTypeGetUserState).Inc()
		if errors.Is(err, farms.ErrAccountNotFound) {
			log.Info("User has no state in farm", "user_state", userKey)
		} else {
			log.Warn("Failed to get user state", "user_state", userKey, "error", err)
		}
		return
	}
	uf, err := farms.UserFarmForUndelegatedFarm(wu.farm, farm, userKey, user, now, prices)
	if err != nil {
		metrics.Errors.WithLabelValues(MetricErrorTypeCompute).Inc()
		log.Warn("Failed to compute position", "error", err)
		return
	}

	metrics.UserActiveStake.WithLabelValues(wu.Name).Set(uf.TotalActiveStake().InexactFloat64())
	for _, pr := range uf.PendingRewards {
		decimals := farm.RewardInfos[pr.RewardIndex].Token.Decimals
		metrics.UserPendingRewards.WithLabelValues(wu.Name, strconv.Itoa(pr.RewardIndex), pr.RewardTokenMint.String()).Set(
			farms.ToDecimal(pr.CumulatedPendingRewards, decimals).InexactFloat64(),
		)
	}
	log.Debug("Exported user position", "active_stake", uf.TotalActiveStake(), "rewards", len(uf.PendingRewards))
}
