package model

import (
	"fmt"
	"strings"
)

// Priority is the declared urgency of a task or routine.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority accepts the canonical names and a few short aliases.
// An empty value yields medium.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return PriorityMedium, nil
	case "high", "h", "1":
		return PriorityHigh, nil
	case "medium", "m", "2":
		return PriorityMedium, nil
	case "low", "l", "3":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("unknown priority %q", raw)
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
