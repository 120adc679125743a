package ordering

import (
	"fmt"
	"strings"
)

// Bands selects how priorities map to ranks.
type Bands int

const (
	// BandsRoutine places routine tasks between explicit high and medium.
	BandsRoutine Bands = iota
	// BandsFlat ranks every task by its priority alone.
	BandsFlat
)

// Tiebreak selects the key used when completion and rank are equal.
type Tiebreak int

const (
	// TiebreakPosition orders equal tasks by their stored manual position.
	TiebreakPosition Tiebreak = iota
	// TiebreakCreatedAt orders equal tasks by creation time, oldest first.
	TiebreakCreatedAt
)

// Policy is chosen once per deployment.
type Policy struct {
	Bands    Bands
	Tiebreak Tiebreak
}

// DefaultPolicy is routine banding with manual position tiebreak.
var DefaultPolicy = Policy{Bands: BandsRoutine, Tiebreak: TiebreakPosition}

// WithTiebreak returns a copy of p using tb.
func (p Policy) WithTiebreak(tb Tiebreak) Policy {
	p.Tiebreak = tb
	return p
}

// ParseBands reads a config value; empty means routine.
func ParseBands(raw string) (Bands, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "routine":
		return BandsRoutine, nil
	case "flat":
		return BandsFlat, nil
	default:
		return 0, fmt.Errorf("unknown priority bands %q (want routine or flat)", raw)
	}
}

// ParseTiebreak reads a config value; empty means position.
func ParseTiebreak(raw string) (Tiebreak, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "position":
		return TiebreakPosition, nil
	case "created", "created_at":
		return TiebreakCreatedAt, nil
	default:
		return 0, fmt.Errorf("unknown tiebreak %q (want position or created)", raw)
	}
}

func (b Bands) String() string {
	if b == BandsFlat {
		return "flat"
	}
	return "routine"
}

func (t Tiebreak) String() string {
	if t == TiebreakCreatedAt {
		return "created"
	}
	return "position"
}
