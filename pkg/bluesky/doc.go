// Package bluesky provides a client for the Bluesky / AT Protocol XRPC API.
//
// This package includes:
//   - A configurable HTTP client with rate limiting and typed errors
//   - Type-safe models for profile, followers and follows responses
//   - Helper functions for constructing XRPC endpoint URLs
//   - Optional session authentication via com.atproto.server.createSession
//
// Example usage:
//
//	client := bluesky.NewClient(30*time.Second, nil)
//
//	// Fetch profile metadata
//	profile, err := client.FetchProfile("alice.bsky.social")
//	if err != nil {
//	    if apiErr, ok := err.(*errors.Error); ok {
//	        switch apiErr.Type {
//	        case errors.ErrorTypeNotFound:
//	            // Unknown actor
//	        case errors.ErrorTypeRateLimit:
//	            // Back off
//	        }
//	    }
//	}
//
//	// Walk a paginated follower list
//	cursor := ""
//	for {
//	    page, err := client.FetchFollowers("alice.bsky.social", cursor)
//	    // Handle page.Followers
//	    if err != nil || page.Cursor == "" {
//	        break
//	    }
//	    cursor = page.Cursor
//	}
package bluesky
