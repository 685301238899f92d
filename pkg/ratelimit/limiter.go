package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// FixedDelay enforces a fixed minimum gap between consecutive requests.
// The first request passes immediately; each subsequent request waits
// until the delay since the previous one has elapsed.
type FixedDelay struct {
	delay time.Duration
	last  time.Time
	mu    sync.Mutex
}

// NewFixedDelay creates a fixed-delay rate limiter
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay}
}

// Allow checks if a request can proceed without waiting
func (fd *FixedDelay) Allow() bool {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	now := time.Now()
	if fd.last.IsZero() || now.Sub(fd.last) >= fd.delay {
		fd.last = now
		return true
	}

	return false
}

// Wait blocks until the fixed delay has elapsed since the previous request
func (fd *FixedDelay) Wait() {
	fd.mu.Lock()

	now := time.Now()
	if fd.last.IsZero() {
		fd.last = now
		fd.mu.Unlock()
		return
	}

	remaining := fd.delay - now.Sub(fd.last)
	if remaining > 0 {
		fd.mu.Unlock()
		time.Sleep(remaining)
		fd.mu.Lock()
	}

	fd.last = time.Now()
	fd.mu.Unlock()
}

// Reset clears the last-request timestamp
func (fd *FixedDelay) Reset() {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	fd.last = time.Time{}
}

// SlidingWindow implements a sliding window rate limiter
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a new sliding window rate limiter
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
	}
}

// Allow checks if a request can proceed
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.cleanOldRequests(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}

	return false
}

// Wait blocks until a request is allowed
func (sw *SlidingWindow) Wait() {
	for !sw.Allow() {
		sw.mu.Lock()
		if len(sw.requests) > 0 {
			oldestRequest := sw.requests[0]
			timeToWait := sw.windowSize - time.Since(oldestRequest)
			sw.mu.Unlock()

			if timeToWait > 0 {
				time.Sleep(timeToWait)
			}
		} else {
			sw.mu.Unlock()
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Reset clears all recorded requests
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
}

// cleanOldRequests removes requests outside the sliding window
func (sw *SlidingWindow) cleanOldRequests(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	// Find the first request that's within the window
	i := 0
	for i < len(sw.requests) && sw.requests[i].Before(cutoff) {
		i++
	}

	// Keep only requests within the window
	if i > 0 {
		copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:len(sw.requests)-i]
	}
}

// Chain combines several limiters; a request must pass all of them.
// Wait blocks on each limiter in order.
type Chain struct {
	limiters []Limiter
}

// NewChain creates a limiter that enforces every given limiter
func NewChain(limiters ...Limiter) *Chain {
	return &Chain{limiters: limiters}
}

// Allow checks all limiters; limiters earlier in the chain are consulted first
func (c *Chain) Allow() bool {
	for _, l := range c.limiters {
		if !l.Allow() {
			return false
		}
	}
	return true
}

// Wait blocks until every limiter in the chain allows the request
func (c *Chain) Wait() {
	for _, l := range c.limiters {
		l.Wait()
	}
}

// Reset resets every limiter in the chain
func (c *Chain) Reset() {
	for _, l := range c.limiters {
		l.Reset()
	}
}
