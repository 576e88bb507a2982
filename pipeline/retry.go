// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// RetryWithBackoff invokes operation up to maxAttempts times, doubling the
// delay between attempts starting from baseDelay.
//
// Every attempt runs under its own deadline derived from callTimeout, so a
// stalled embedding or vector-store call is cut off and retried instead of
// wedging the run; those calls are the only operations with external
// latency. A callTimeout of zero leaves attempts unbounded. The operation
// must honor the context it is handed.
//
// Returns the error from the last attempt if all attempts fail, or the
// parent context's error if it is canceled between attempts.
func RetryWithBackoff(ctx context.Context, operation func(ctx context.Context) error, maxAttempts int, baseDelay, callTimeout time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	delay := baseDelay
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr := attemptCall(ctx, operation, callTimeout)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("call succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == maxAttempts {
			return lastErr
		}

		slog.Debug("call failed, backing off",
			"attempt", attempt, "maxAttempts", maxAttempts, "delay", delay, "error", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

// attemptCall runs one attempt, bounded by callTimeout when it is positive.
func attemptCall(ctx context.Context, operation func(ctx context.Context) error, callTimeout time.Duration) error {
	if callTimeout <= 0 {
		return operation(ctx)
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return operation(callCtx)
}
