package analyzer

import (
	"bskygraph/pkg/bluesky"
)

// Result holds the categorized social graph derived from the raw
// follower and follow lists. The DID is the identity key; each derived
// list preserves the insertion order of first occurrence in its source
// list (mutuals follow the order of the follows list).
type Result struct {
	Followers        []bluesky.GraphEntry `json:"followers"`
	Follows          []bluesky.GraphEntry `json:"follows"`
	Mutuals          []bluesky.GraphEntry `json:"mutuals"`
	Fans             []bluesky.GraphEntry `json:"fans"`
	NotFollowingBack []bluesky.GraphEntry `json:"not_following_back"`
}

// Counts holds the sizes of the raw and derived lists
type Counts struct {
	Followers        int `json:"followers"`
	Follows          int `json:"follows"`
	Mutuals          int `json:"mutuals"`
	Fans             int `json:"fans"`
	NotFollowingBack int `json:"not_following_back"`
}

// Analyze computes the relationship categories from the two raw lists:
// mutuals (intersection), fans (followers minus follows) and
// not-following-back (follows minus followers). The input lists are
// de-duplicated by DID on first occurrence; the API does not guarantee
// uniqueness across page boundaries.
func Analyze(followers, follows []bluesky.GraphEntry) Result {
	followers = dedupe(followers)
	follows = dedupe(follows)

	followerDIDs := didSet(followers)
	followDIDs := didSet(follows)

	result := Result{
		Followers: followers,
		Follows:   follows,
	}

	for _, entry := range follows {
		if followerDIDs[entry.DID] {
			result.Mutuals = append(result.Mutuals, entry)
		} else {
			result.NotFollowingBack = append(result.NotFollowingBack, entry)
		}
	}

	for _, entry := range followers {
		if !followDIDs[entry.DID] {
			result.Fans = append(result.Fans, entry)
		}
	}

	return result
}

// Counts returns the sizes of all lists in the result
func (r Result) Counts() Counts {
	return Counts{
		Followers:        len(r.Followers),
		Follows:          len(r.Follows),
		Mutuals:          len(r.Mutuals),
		Fans:             len(r.Fans),
		NotFollowingBack: len(r.NotFollowingBack),
	}
}

// IsMutual reports whether the given DID appears in both directions
func (r Result) IsMutual(did string) bool {
	for _, entry := range r.Mutuals {
		if entry.DID == did {
			return true
		}
	}
	return false
}

// dedupe removes repeated DIDs, keeping the first occurrence in order
func dedupe(entries []bluesky.GraphEntry) []bluesky.GraphEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]bluesky.GraphEntry, 0, len(entries))

	for _, entry := range entries {
		if seen[entry.DID] {
			continue
		}
		seen[entry.DID] = true
		out = append(out, entry)
	}

	return out
}

// didSet builds a membership set keyed by DID
func didSet(entries []bluesky.GraphEntry) map[string]bool {
	set := make(map[string]bool, len(entries))
	for _, entry := range entries {
		set[entry.DID] = true
	}
	return set
}
