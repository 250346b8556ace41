package provisioning

import (
	"context"
	"fmt"
	"time"
)

// StatusCheck performs one status query and returns the raw state and its
// normalized status. The request is built fresh inside the check; nothing
// is reused or mutated between iterations.
type StatusCheck func(ctx context.Context) (raw string, status Status, err error)

// waitForTerminal polls check until a terminal status, the timeout, or
// cancellation.
//
// The first check runs immediately. Between non-terminal checks the poller
// sleeps interval, bounded by the remaining budget so the deadline is never
// overshot. Hitting the deadline returns StatusTimedOut together with the
// last observed raw state rather than an error: a slow resource is a
// result, not a malfunction. Cancellation is checked before every request
// and during every sleep and returns promptly.
func waitForTerminal(ctx context.Context, check StatusCheck, timeout, interval time.Duration, obs Observer, kind, resource string) (Status, string, error) {
	deadline := time.Now().Add(timeout)
	lastRaw := ""

	for {
		if err := ctx.Err(); err != nil {
			return StatusUnknown, lastRaw, fmt.Errorf("polling cancelled: %w", err)
		}

		raw, status, err := check(ctx)
		if err != nil {
			return StatusUnknown, lastRaw, err
		}
		lastRaw = raw

		obs.Event(Event{
			Type:     EventPollChecking,
			Kind:     kind,
			Resource: resource,
			Message:  "observed state " + raw,
			Fields:   map[string]string{"state": raw, "status": string(status)},
		})

		if status.Terminal() {
			return status, raw, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			obs.Event(Event{
				Type:     EventPollTimedOut,
				Kind:     kind,
				Resource: resource,
				Message:  fmt.Sprintf("no terminal state within %v, last state %s", timeout, raw),
			})
			return StatusTimedOut, raw, nil
		}

		sleep := interval
		if sleep > remaining {
			sleep = remaining
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return StatusUnknown, lastRaw, fmt.Errorf("polling cancelled: %w", ctx.Err())
		case <-timer.C:
		}

		// The budget may have run out during the sleep; do not spend it on
		// another query.
		if time.Now().After(deadline) {
			obs.Event(Event{
				Type:     EventPollTimedOut,
				Kind:     kind,
				Resource: resource,
				Message:  fmt.Sprintf("no terminal state within %v, last state %s", timeout, lastRaw),
			})
			return StatusTimedOut, lastRaw, nil
		}
	}
}
