package fetcher

import (
	"fmt"

	"bskygraph/pkg/bluesky"
	"bskygraph/pkg/logger"
)

// Graph holds the complete raw social graph of one actor
type Graph struct {
	Actor     string               `json:"actor"`
	Profile   *bluesky.Profile     `json:"profile"`
	Followers []bluesky.GraphEntry `json:"followers"`
	Follows   []bluesky.GraphEntry `json:"follows"`
}

// ProgressFunc is called after each fetched page with the stage name
// ("followers" or "follows") and the running entry count
type ProgressFunc func(stage string, fetched int)

// Fetcher collects the complete follower and follow lists for an actor
// by walking the paginated graph endpoints
type Fetcher struct {
	client   GraphClient
	logger   logger.Logger
	progress ProgressFunc
}

// New creates a Fetcher using the given API client
func New(client GraphClient, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Fetcher{
		client: client,
		logger: log,
	}
}

// SetProgress registers a per-page progress callback
func (f *Fetcher) SetProgress(fn ProgressFunc) {
	f.progress = fn
}

// Fetch retrieves the profile and both complete graph lists for actor.
// A failed profile lookup aborts the fetch before any pagination starts.
func (f *Fetcher) Fetch(actor string) (*Graph, error) {
	profile, err := f.client.FetchProfile(actor)
	if err != nil {
		f.logger.WithError(err).WithField("actor", actor).Error("profile lookup failed")
		return nil, err
	}

	f.logger.InfoWithFields("profile fetched", map[string]interface{}{
		"actor":     actor,
		"handle":    profile.Handle,
		"did":       profile.DID,
		"followers": profile.FollowersCount,
		"follows":   profile.FollowsCount,
	})

	graph := &Graph{
		Actor:   actor,
		Profile: profile,
	}

	graph.Followers, err = f.fetchFollowers(actor, profile.FollowersCount)
	if err != nil {
		return nil, err
	}

	graph.Follows, err = f.fetchFollows(actor, profile.FollowsCount)
	if err != nil {
		return nil, err
	}

	return graph, nil
}

// fetchFollowers walks the followers endpoint until the server omits a
// cursor or returns an empty page
func (f *Fetcher) fetchFollowers(actor string, expected int) ([]bluesky.GraphEntry, error) {
	var entries []bluesky.GraphEntry
	cursor := ""
	page := 0

	for {
		resp, err := f.client.FetchFollowers(actor, cursor)
		if err != nil {
			return nil, fmt.Errorf("followers page %d: %w", page+1, err)
		}

		entries = append(entries, resp.Followers...)
		page++

		f.reportProgress("followers", actor, len(entries), expected, page)

		if resp.Cursor == "" || len(resp.Followers) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	f.logger.InfoWithFields("followers fetched", map[string]interface{}{
		"actor": actor,
		"count": len(entries),
		"pages": page,
	})

	return entries, nil
}

// fetchFollows walks the follows endpoint until pagination terminates
func (f *Fetcher) fetchFollows(actor string, expected int) ([]bluesky.GraphEntry, error) {
	var entries []bluesky.GraphEntry
	cursor := ""
	page := 0

	for {
		resp, err := f.client.FetchFollows(actor, cursor)
		if err != nil {
			return nil, fmt.Errorf("follows page %d: %w", page+1, err)
		}

		entries = append(entries, resp.Follows...)
		page++

		f.reportProgress("follows", actor, len(entries), expected, page)

		if resp.Cursor == "" || len(resp.Follows) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	f.logger.InfoWithFields("follows fetched", map[string]interface{}{
		"actor": actor,
		"count": len(entries),
		"pages": page,
	})

	return entries, nil
}

func (f *Fetcher) reportProgress(stage, actor string, fetched, expected, page int) {
	f.logger.DebugWithFields("page fetched", map[string]interface{}{
		"actor":   actor,
		"stage":   stage,
		"page":    page,
		"fetched": fetched,
		"total":   expected,
	})

	if f.progress != nil {
		f.progress(stage, fetched)
	}
}
