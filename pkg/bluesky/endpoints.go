package bluesky

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// PublicAPIURL is the base URL for unauthenticated XRPC calls
	PublicAPIURL = "https://public.api.bsky.app/xrpc"

	// AuthAPIURL is the base URL for authenticated XRPC calls
	AuthAPIURL = "https://bsky.social/xrpc"

	// ProfileEndpoint returns profile metadata for an actor
	ProfileEndpoint = "/app.bsky.actor.getProfile"

	// FollowersEndpoint returns a page of accounts following an actor
	FollowersEndpoint = "/app.bsky.graph.getFollowers"

	// FollowsEndpoint returns a page of accounts an actor follows
	FollowsEndpoint = "/app.bsky.graph.getFollows"

	// CreateSessionEndpoint exchanges handle+app-password for a session token
	CreateSessionEndpoint = "/com.atproto.server.createSession"

	// PageLimit is the number of entries requested per paginated call
	PageLimit = 100

	// RequestDelay is the default minimum gap between consecutive API calls
	RequestDelay = 400 * time.Millisecond
)

// ProfileURL constructs the URL for fetching an actor's profile
func ProfileURL(base, actor string) string {
	params := url.Values{}
	params.Set("actor", actor)

	return fmt.Sprintf("%s%s?%s", base, ProfileEndpoint, params.Encode())
}

// FollowersURL constructs the URL for one page of an actor's followers
func FollowersURL(base, actor, cursor string) string {
	return graphURL(base, FollowersEndpoint, actor, cursor)
}

// FollowsURL constructs the URL for one page of accounts an actor follows
func FollowsURL(base, actor, cursor string) string {
	return graphURL(base, FollowsEndpoint, actor, cursor)
}

// CreateSessionURL constructs the URL for the session-creation call
func CreateSessionURL(base string) string {
	return base + CreateSessionEndpoint
}

// graphURL builds a paginated graph endpoint URL
func graphURL(base, endpoint, actor, cursor string) string {
	params := url.Values{}
	params.Set("actor", actor)
	params.Set("limit", fmt.Sprintf("%d", PageLimit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	return fmt.Sprintf("%s%s?%s", base, endpoint, params.Encode())
}

// IsValidActor checks if an actor identifier looks like a handle or a DID.
// Handles are dotted domain names (alice.bsky.social); DIDs start with "did:".
func IsValidActor(actor string) bool {
	if actor == "" {
		return false
	}

	if strings.HasPrefix(actor, "did:") {
		return len(actor) > len("did:")
	}

	// Handles must contain at least one dot and no spaces
	if !strings.Contains(actor, ".") || strings.ContainsAny(actor, " /@") {
		return false
	}
	if strings.HasPrefix(actor, ".") || strings.HasSuffix(actor, ".") {
		return false
	}

	return true
}

// SanitizeActor normalizes an actor identifier from user input
func SanitizeActor(actor string) string {
	actor = strings.TrimSpace(actor)
	actor = strings.TrimPrefix(actor, "@")
	actor = strings.TrimRight(actor, "/")

	return actor
}
