// Package retry runs an operation with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxAttempts    int           // Total attempts, including the first
	InitialBackoff time.Duration // Wait after the first failure
	MaxBackoff     time.Duration // Cap for any single wait
	Multiplier     float64       // Growth factor between waits
}

// DefaultConfig is used for browser session start.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error
// unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts are
// exhausted, or ctx is done. fn receives the zero-based attempt number.
func Do(ctx context.Context, cfg Config, fn func(attempt int) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(attempt)
		if err == nil {
			if attempt > 0 {
				log.Debug().Int("attempts", attempt+1).Msg("Retry succeeded")
			}
			return nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			log.Debug().Err(perm.err).Msg("Error is not retryable")
			return perm.err
		}
		if errors.Is(err, context.Canceled) {
			return err
		}

		if attempt < cfg.MaxAttempts-1 {
			backoff := Backoff(attempt, cfg)
			log.Debug().
				Int("attempt", attempt+1).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying after backoff")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	log.Warn().
		Int("attempts", cfg.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// Backoff returns the wait after the given zero-based failed attempt:
// InitialBackoff * Multiplier^attempt, capped at MaxBackoff.
func Backoff(attempt int, cfg Config) time.Duration {
	mult := cfg.Multiplier
	if mult < 1 {
		mult = 1
	}
	backoff := float64(cfg.InitialBackoff) * math.Pow(mult, float64(attempt))
	if cfg.MaxBackoff > 0 && backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}
