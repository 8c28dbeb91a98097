package poll_utils

import (
	"context"
	"errors"
	"time"
)

// ErrAttemptsExhausted is returned when the predicate never reported done
// within maxAttempts polls.
var ErrAttemptsExhausted = errors.New("poll attempts exhausted")

// Predicate performs one non-blocking check. Returning done=true stops the
// loop successfully; a non-nil error stops it immediately.
type Predicate func(attempt int) (done bool, err error)

// Poll runs predicate at a fixed interval until it reports done, fails, the
// context is cancelled, or maxAttempts is exhausted. maxAttempts <= 0 means
// no attempt bound; the context is then the only way out of a predicate that
// never completes. The first attempt runs immediately, the interval applies
// between attempts.
func Poll(ctx context.Context, interval time.Duration, maxAttempts int, predicate Predicate) error {
	for attempt := 1; ; attempt++ {
		done, err := predicate(attempt)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			return ErrAttemptsExhausted
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
