// Package ratelimit provides rate limiting for the Bluesky API client.
//
// The client paces paginated requests to stay well below the documented
// AT Protocol ceiling of 3000 requests per 5-minute window per source IP.
//
// Available Implementations:
//
// Fixed Delay:
//   - Enforces a minimum gap between consecutive requests
//   - The first request passes immediately
//   - Default pacing used between paginated calls (400ms)
//
// Sliding Window:
//   - Tracks requests within a moving time window
//   - Used as a hard ceiling matching the documented API limit
//
// Chain:
//   - Combines several limiters; a request must pass all of them
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// 400ms between paginated calls, capped at 3000 per 5 minutes
//	limiter := ratelimit.NewChain(
//	    ratelimit.NewFixedDelay(400*time.Millisecond),
//	    ratelimit.NewSlidingWindow(3000, 5*time.Minute),
//	)
//
//	// Block until allowed
//	limiter.Wait()
//	// Proceed with request
package ratelimit
