package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Metric names.
	MetricNameBuildInfo          = "farms_monitor_build_info"
	MetricNameErrors             = "farms_monitor_errors_total"
	MetricNameTicks              = "farms_monitor_ticks_total"
	MetricNameRewardsAvailable   = "farms_monitor_rewards_available"
	MetricNameRewardRate         = "farms_monitor_reward_rate"
	MetricNameRewardRunway       = "farms_monitor_reward_runway_seconds"
	MetricNameTotalStaked        = "farms_monitor_total_staked"
	MetricNameUsers              = "farms_monitor_users"
	MetricNameUserPendingRewards = "farms_monitor_user_pending_rewards"
	MetricNameUserActiveStake    = "farms_monitor_user_active_stake"

	// Labels.
	MetricLabelVersion     = "version"
	MetricLabelCommit      = "commit"
	MetricLabelDate        = "date"
	MetricLabelErrorType   = "error_type"
	MetricLabelFarm        = "farm"
	MetricLabelUser        = "user"
	MetricLabelRewardIndex = "reward_index"
	MetricLabelRewardMint  = "reward_mint"

	// Error types.
	MetricErrorTypeGetTimeSnapshot = "get_time_snapshot"
	MetricErrorTypeGetFarmStates   = "get_farm_states"
	MetricErrorTypeFarmNotFound    = "farm_not_found"
	MetricErrorTypeGetUserState    = "get_user_state"
	MetricErrorTypeGetPrices       = "get_prices"
	MetricErrorTypeCompute         = "compute"
)

type Metrics struct {
	BuildInfo          *prometheus.GaugeVec
	Errors             *prometheus.CounterVec
	Ticks              prometheus.Counter
	RewardsAvailable   *prometheus.GaugeVec
	RewardRate         *prometheus.GaugeVec
	RewardRunway       *prometheus.GaugeVec
	TotalStaked        *prometheus.GaugeVec
	Users              *prometheus.GaugeVec
	UserPendingRewards *prometheus.GaugeVec
	UserActiveStake    *prometheus.GaugeVec
}

// NewMetrics creates the collectors but does not auto-register them.
func NewMetrics() *Metrics {
	rewardLabels := []string{MetricLabelFarm, MetricLabelRewardIndex, MetricLabelRewardMint}
	return &Metrics{
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameBuildInfo,
				Help: "Build information of the farms monitor",
			},
			[]string{MetricLabelVersion, MetricLabelCommit, MetricLabelDate},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricNameErrors,
				Help: "Number of errors encountered",
			},
			[]string{MetricLabelErrorType},
		),
		Ticks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricNameTicks,
				Help: "Number of completed monitor ticks",
			},
		),
		RewardsAvailable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameRewardsAvailable,
				Help: "Reward tokens deposited and not yet issued, in token units",
			},
			rewardLabels,
		),
		RewardRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameRewardRate,
				Help: "Current reward rate per farm time unit, in token units",
			},
			rewardLabels,
		),
		RewardRunway: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameRewardRunway,
				Help: "Seconds until available rewards run out at the current rate",
			},
			rewardLabels,
		),
		TotalStaked: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameTotalStaked,
				Help: "Total staked amount of the farm, in token units",
			},
			[]string{MetricLabelFarm},
		),
		Users: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameUsers,
				Help: "Number of user states in the farm",
			},
			[]string{MetricLabelFarm},
		),
		UserPendingRewards: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameUserPendingRewards,
				Help: "Rewards claimable by the user, in token units",
			},
			[]string{MetricLabelUser, MetricLabelRewardIndex, MetricLabelRewardMint},
		),
		UserActiveStake: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameUserActiveStake,
				Help: "Active stake of the user, in token units",
			},
			[]string{MetricLabelUser},
		),
	}
}

// Register all metrics with the provided registry.
func (m *Metrics) Register(r prometheus.Registerer) {
	r.MustRegister(
		m.BuildInfo,
		m.Errors,
		m.Ticks,
		m.RewardsAvailable,
		m.RewardRate,
		m.RewardRunway,
		m.TotalStaked,
		m.Users,
		m.UserPendingRewards,
		m.UserActiveStake,
	)
}
