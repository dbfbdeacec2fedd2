package curve

import (
	"fmt"
	"time"
)

// Phase is the time-derived lifecycle stage of a pool.
type Phase int

const (
	PhaseIBRActive Phase = iota + 1
	PhaseOpen
)

func (p Phase) String() string {
	switch p {
	case PhaseIBRActive:
		return "ibr_active"
	case PhaseOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Phase reports the lifecycle stage at now. Selling opens at IBREnd exactly.
func (s *Snapshot) Phase(now time.Time) Phase {
	if now.Before(s.IBREnd) {
		return PhaseIBRActive
	}
	return PhaseOpen
}

// Status is a human readable summary combining phase and pause flag.
func (s *Snapshot) Status(now time.Time) string {
	if s.Paused {
		return s.Phase(now).String() + "+paused"
	}
	return s.Phase(now).String()
}

func (s *Snapshot) checkBuyAllowed(op string) error {
	if s.Paused {
		return stateErr(op, ErrPaused, "")
	}
	return nil
}

func (s *Snapshot) checkSellAllowed(op string, now time.Time) error {
	if s.Paused {
		return stateErr(op, ErrPaused, "")
	}
	if s.Phase(now) == PhaseIBRActive {
		return stateErr(op, ErrIBRActive, fmt.Sprintf("selling opens at %s", s.IBREnd.UTC().Format(time.RFC3339)))
	}
	return nil
}

func (s *Snapshot) setPaused(op string, paused bool) error {
	if s.Paused == paused {
		if paused {
			return stateErr(op, nil, "pool is already paused")
		}
		return stateErr(op, nil, "pool is not paused")
	}
	s.Paused = paused
	return nil
}
