package echem

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrConfiguration indicates a non-finite or out-of-domain parameter.
	ErrConfiguration = errors.New("echem: invalid configuration")

	// ErrUnstable indicates the explicit scheme would oscillate or diverge.
	ErrUnstable = errors.New("echem: numerically unstable")

	// ErrDegenerateGrid indicates the time or space extent collapsed.
	ErrDegenerateGrid = errors.New("echem: degenerate grid")
)

// ConfigError reports the offending parameter.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("echem: invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// StabilityError reports a diffusion number above the explicit-scheme limit.
type StabilityError struct {
	Species Species
	Lambda  float64
	Limit   float64
}

func (e *StabilityError) Error() string {
	return fmt.Sprintf("echem: diffusion number %.4f for %s species exceeds %.2f", e.Lambda, e.Species, e.Limit)
}

func (e *StabilityError) Unwrap() error {
	return ErrUnstable
}
