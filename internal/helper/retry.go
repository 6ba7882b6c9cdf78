// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/telekom/tracerelay/internal/logger"
)

// RetryConfig configures how often and with which initial delay
// a failed call is repeated.
type RetryConfig struct {
	// Count is the number of retries after the first attempt.
	Count int `json:"count" yaml:"count" mapstructure:"count"`
	// Delay is the initial delay, doubled on every retry.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// Validate checks the retry configuration.
func (rc RetryConfig) Validate() error {
	var err error
	if rc.Count < 0 {
		err = errors.Join(err, errors.New("retry count must not be negative"))
	}
	if rc.Delay < 0 {
		err = errors.Join(err, errors.New("retry delay must not be negative"))
	}
	return err
}

// Effector will be the function called by the Retry function
type Effector func(context.Context) error

// Retry runs the effector and repeats failed calls with an exponential backoff
// until it succeeds, the retries are used up or ctx is done.
func Retry(effector Effector, rc RetryConfig) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log := logger.FromContext(ctx)
		for r := 1; ; r++ {
			err := effector(ctx)
			if err == nil || r > rc.Count {
				return err
			}

			delay := getExpBackoff(rc.Delay, r)
			log.DebugContext(ctx, "Effector call failed, retrying", "attempt", r, "delay", delay, "error", err)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
}

// getExpBackoff calculates the delay for the given attempt, starting at 1.
func getExpBackoff(initialDelay time.Duration, iteration int) time.Duration {
	if iteration <= 1 {
		return initialDelay
	}
	return time.Duration(math.Pow(2, float64(iteration-1))) * initialDelay
}
