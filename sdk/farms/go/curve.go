package farms

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrTooManyCurvePoints  = errors.New("too many reward curve points")
	ErrCurveNotAscending   = errors.New("reward curve points must have strictly ascending start times")
	ErrEmptyRewardSchedule = errors.New("reward curve must have at least one point")
)

// NewRewardScheduleCurve builds a curve from the given points and pads the
// remaining capacity with sentinel points.
func NewRewardScheduleCurve(points ...RewardPerTimeUnitPoint) (RewardScheduleCurve, error) {
	var c RewardScheduleCurve
	if len(points) == 0 {
		return c, ErrEmptyRewardSchedule
	}
	if len(points) > MaxCurvePoints {
		return c, fmt.Errorf("%w: %d > %d", ErrTooManyCurvePoints, len(points), MaxCurvePoints)
	}
	for i := 1; i < len(points); i++ {
		if points[i].TsStart <= points[i-1].TsStart {
			return c, fmt.Errorf("%w: point %d starts at %d, previous at %d", ErrCurveNotAscending, i, points[i].TsStart, points[i-1].TsStart)
		}
	}
	for i := range c.Points {
		if i < len(points) {
			c.Points[i] = points[i]
			continue
		}
		c.Points[i] = RewardPerTimeUnitPoint{TsStart: CurveSentinelTsStart}
	}
	return c, nil
}

// RateAt returns the reward rate of the last point whose start is at or
// before ts. Rates are a step function; when no point has started, the
// first point applies.
func (c *RewardScheduleCurve) RateAt(ts uint64) uint64 {
	idx := 0
	for i, p := range c.Points {
		if p.TsStart > ts {
			break
		}
		idx = i
	}
	return c.Points[idx].RewardPerTimeUnit
}

// ActivePoints returns the points that are not sentinels.
func (c *RewardScheduleCurve) ActivePoints() []RewardPerTimeUnitPoint {
	out := make([]RewardPerTimeUnitPoint, 0, len(c.Points))
	for _, p := range c.Points {
		if p.TsStart == CurveSentinelTsStart {
			continue
		}
		out = append(out, p)
	}
	return out
}

// CurrentRewardPerTimeUnit returns the reward rate at ts adjusted by the
// slot's rate decimals.
func CurrentRewardPerTimeUnit(r *RewardInfo, ts uint64) decimal.Decimal {
	rate := Uint64ToDecimal(r.RewardScheduleCurve.RateAt(ts))
	return rate.Shift(-int32(r.RewardsPerSecondDecimals))
}
