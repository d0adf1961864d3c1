package farms

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnsupportedEarlyWithdrawalPenalty = errors.New("unsupported early withdrawal penalty")
	ErrInvalidLockingMode                = errors.New("invalid locking mode")
)

// Lockup describes the lock window that applies to a user's stake. All
// values are in seconds.
type Lockup struct {
	RemainingDuration uint64
	OriginalDuration  uint64
	Expiry            uint64
}

// LockupDurationAndExpiry computes the lock window for the user at now.
// user may be nil when the owner has no state in the farm yet.
func LockupDurationAndExpiry(farm *FarmState, user *UserState, now uint64) (Lockup, error) {
	switch farm.LockingEarlyWithdrawalPenaltyBps {
	case 0, BpsDenominator:
	default:
		return Lockup{}, fmt.Errorf("%w: %d bps", ErrUnsupportedEarlyWithdrawalPenalty, farm.LockingEarlyWithdrawalPenaltyBps)
	}

	var start uint64
	switch farm.LockingMode {
	case LockingModeNone:
		return Lockup{}, nil
	case LockingModeWithExpiry:
		start = farm.LockingStartTimestamp
	case LockingModeContinuous:
		start = now
		if user != nil {
			start = user.LastStakeTs
		}
	default:
		return Lockup{}, fmt.Errorf("%w: %d", ErrInvalidLockingMode, farm.LockingMode)
	}

	// Saturates so an unbounded lock never wraps into the past.
	maturity := uint64(math.MaxUint64)
	if farm.LockingDuration <= math.MaxUint64-start {
		maturity = start + farm.LockingDuration
	}
	var remaining uint64
	if now >= start && now < maturity {
		remaining = maturity - now
	}
	return Lockup{
		RemainingDuration: remaining,
		OriginalDuration:  farm.LockingDuration,
		Expiry:            maturity,
	}, nil
}
