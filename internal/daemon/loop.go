package daemon

import (
	"context"
	"log"
	"time"
)

// PassTimeout is the 1-hour budget a single ingest pass is allowed before
// it counts as a strike.
const PassTimeout = time.Hour

// MaxStrikes is the number of consecutive failing passes the daemon
// tolerates before it exits.
const MaxStrikes = 5

// Pass is one full ingest pass. It should check ctx periodically at its
// own suspension points (file boundaries, remote calls); the loop does
// not forcibly kill a pass mid-write, it only stops waiting for it once
// PassTimeout elapses and records the strike.
type Pass func(ctx context.Context) error

// RunLoop repeatedly invokes pass, each wrapped in PassTimeout, until
// either ctx is cancelled or the failure counter trips after MaxStrikes
// consecutive failures (a failure being either a returned error or a
// timeout). A successful pass resets the counter. interval is the pause
// between passes; stop, if non-nil, is a watchdog channel the caller can
// close to ask the loop to exit after its current pass completes.
func RunLoop(ctx context.Context, interval time.Duration, pass Pass, stop <-chan struct{}, logger *log.Logger) error {
	strikes := NewFailureCount(MaxStrikes)

	for {
		if err := strikes.Check(); err != nil {
			return err
		}

		passCtx, cancel := context.WithTimeout(ctx, PassTimeout)
		done := make(chan error, 1)
		go func() { done <- pass(passCtx) }()
		var err error
		select {
		case err = <-done:
		case <-passCtx.Done():
			err = passCtx.Err()
		}
		cancel()

		if err != nil {
			logger.Printf("ingest pass failed: %v", err)
			if incErr := strikes.Increment(); incErr != nil {
				return incErr
			}
		} else if resetErr := strikes.Reset(); resetErr != nil {
			return resetErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-time.After(interval):
		}
	}
}
