package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// Delayer pauses a sensitive operation so every outcome takes a similar
// amount of time.
type Delayer func(ctx context.Context) error

// RandomDelay waits a uniformly random duration in [min, max].
func RandomDelay(min, max time.Duration) Delayer {
	if max < min {
		min, max = max, min
	}
	return func(ctx context.Context) error {
		if max <= 0 {
			return nil
		}

		n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)+1))
		if err != nil {
			return err
		}

		timer := time.NewTimer(min + time.Duration(n.Int64()))
		defer timer.Stop()

		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// NoDelay returns immediately.
func NoDelay(context.Context) error { return nil }
