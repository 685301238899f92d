// Package retry provides backoff and retry logic for transient failures
// in Bluesky API calls.
//
// Retries are opt-in: the client runs with retries disabled unless the
// configuration enables them, so a failed page normally ends the run.
//
// Features:
//   - Exponential and constant backoff strategies
//   - Jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Configurable retry predicates driven by typed error classification
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		_, err := client.FetchProfile(actor)
//		return err
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 5,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    2 * time.Second,
//			MaxDelay:     30 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// Only network, rate-limit and 5xx errors are considered retryable;
// auth, not-found and parsing errors fail immediately.
package retry
