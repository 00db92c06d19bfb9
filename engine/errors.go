package engine

import "errors"

var (
	// ErrInvalidDistribution is returned when a strategy's distribution is
	// empty, mis-sized, negative, or does not sum to a value in (0, 1].
	ErrInvalidDistribution = errors.New("invalid distribution")

	// ErrDegenerateMenu is returned when a player cannot afford any action.
	ErrDegenerateMenu = errors.New("degenerate menu")

	// ErrConfiguration is returned for invalid simulation parameters. It is
	// raised before any round is played.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrRoundBudget is returned when a match exceeds its round limit.
	ErrRoundBudget = errors.New("round budget exhausted")
)
