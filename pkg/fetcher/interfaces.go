package fetcher

import "bskygraph/pkg/bluesky"

// GraphClient defines the Bluesky API operations the fetcher depends on
type GraphClient interface {
	FetchProfile(actor string) (*bluesky.Profile, error)
	FetchFollowers(actor, cursor string) (*bluesky.FollowersPage, error)
	FetchFollows(actor, cursor string) (*bluesky.FollowsPage, error)
}
