package fetcher

import (
	"testing"

	"bskygraph/pkg/bluesky"
	"bskygraph/pkg/errors"
	"bskygraph/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient implements GraphClient with scripted page sequences
type mockClient struct {
	profile       *bluesky.Profile
	profileErr    error
	followerPages []bluesky.FollowersPage
	followPages   []bluesky.FollowsPage
	followersErr  error
	followsErr    error

	profileCalls   int
	followerCalls  int
	followCalls    int
	gotCursors     []string
}

func (m *mockClient) FetchProfile(actor string) (*bluesky.Profile, error) {
	m.profileCalls++
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.profile, nil
}

func (m *mockClient) FetchFollowers(actor, cursor string) (*bluesky.FollowersPage, error) {
	m.gotCursors = append(m.gotCursors, cursor)
	if m.followersErr != nil {
		return nil, m.followersErr
	}
	page := m.followerPages[m.followerCalls]
	m.followerCalls++
	return &page, nil
}

func (m *mockClient) FetchFollows(actor, cursor string) (*bluesky.FollowsPage, error) {
	if m.followsErr != nil {
		return nil, m.followsErr
	}
	page := m.followPages[m.followCalls]
	m.followCalls++
	return &page, nil
}

func entries(dids ...string) []bluesky.GraphEntry {
	out := make([]bluesky.GraphEntry, 0, len(dids))
	for _, did := range dids {
		out = append(out, bluesky.GraphEntry{DID: "did:plc:" + did})
	}
	return out
}

func TestFetchSinglePage(t *testing.T) {
	client := &mockClient{
		profile: &bluesky.Profile{DID: "did:plc:subject", Handle: "alice.bsky.social"},
		followerPages: []bluesky.FollowersPage{
			{Followers: entries("f1", "f2"), Cursor: ""},
		},
		followPages: []bluesky.FollowsPage{
			{Follows: entries("g1"), Cursor: ""},
		},
	}

	f := New(client, logger.NewTestLogger())
	graph, err := f.Fetch("alice.bsky.social")

	require.NoError(t, err)
	assert.Equal(t, "alice.bsky.social", graph.Actor)
	assert.Equal(t, "did:plc:subject", graph.Profile.DID)
	assert.Len(t, graph.Followers, 2)
	assert.Len(t, graph.Follows, 1)
	assert.Equal(t, 1, client.followerCalls)
	assert.Equal(t, 1, client.followCalls)
}

func TestFetchPaginationConcatenatesInOrder(t *testing.T) {
	client := &mockClient{
		profile: &bluesky.Profile{DID: "did:plc:subject"},
		followerPages: []bluesky.FollowersPage{
			{Followers: entries("f1", "f2"), Cursor: "page2"},
			{Followers: entries("f3", "f4"), Cursor: "page3"},
			{Followers: entries("f5"), Cursor: ""},
		},
		followPages: []bluesky.FollowsPage{
			{Follows: entries("g1"), Cursor: ""},
		},
	}

	f := New(client, logger.NewTestLogger())
	graph, err := f.Fetch("alice.bsky.social")

	require.NoError(t, err)
	assert.Equal(t, 3, client.followerCalls)
	assert.Equal(t, []string{"", "page2", "page3", ""}, client.gotCursors[:4])

	want := []string{"did:plc:f1", "did:plc:f2", "did:plc:f3", "did:plc:f4", "did:plc:f5"}
	got := make([]string, 0, len(graph.Followers))
	for _, e := range graph.Followers {
		got = append(got, e.DID)
	}
	assert.Equal(t, want, got)
}

func TestFetchStopsOnEmptyPageWithCursor(t *testing.T) {
	// A server returning a cursor alongside an empty page must not loop
	client := &mockClient{
		profile: &bluesky.Profile{DID: "did:plc:subject"},
		followerPages: []bluesky.FollowersPage{
			{Followers: entries("f1"), Cursor: "page2"},
			{Followers: nil, Cursor: "page3"},
		},
		followPages: []bluesky.FollowsPage{
			{Follows: nil, Cursor: ""},
		},
	}

	f := New(client, logger.NewTestLogger())
	graph, err := f.Fetch("alice.bsky.social")

	require.NoError(t, err)
	assert.Equal(t, 2, client.followerCalls)
	assert.Len(t, graph.Followers, 1)
}

func TestFetchProfileErrorAbortsBeforePagination(t *testing.T) {
	client := &mockClient{
		profileErr: errors.New(errors.ErrorTypeNotFound, "Profile not found"),
	}

	f := New(client, logger.NewTestLogger())
	graph, err := f.Fetch("nonexistent.bsky.social")

	require.Error(t, err)
	assert.Nil(t, graph)
	assert.Equal(t, 1, client.profileCalls)
	assert.Equal(t, 0, client.followerCalls)
	assert.Equal(t, 0, client.followCalls)
	assert.True(t, errors.IsNotFound(err))
}

func TestFetchFollowersErrorWrapsPageNumber(t *testing.T) {
	client := &mockClient{
		profile:      &bluesky.Profile{DID: "did:plc:subject"},
		followersErr: errors.New(errors.ErrorTypeServerError, "upstream failure"),
	}

	f := New(client, logger.NewTestLogger())
	_, err := f.Fetch("alice.bsky.social")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "followers page 1")
	assert.True(t, errors.TypeOf(err) == errors.ErrorTypeServerError)
}

func TestFetchFollowsErrorAfterFollowersSucceed(t *testing.T) {
	client := &mockClient{
		profile: &bluesky.Profile{DID: "did:plc:subject"},
		followerPages: []bluesky.FollowersPage{
			{Followers: entries("f1"), Cursor: ""},
		},
		followsErr: errors.New(errors.ErrorTypeRateLimit, "Rate Limit Exceeded"),
	}

	f := New(client, logger.NewTestLogger())
	_, err := f.Fetch("alice.bsky.social")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "follows page 1")
	assert.Equal(t, 1, client.followerCalls)
}

func TestFetchProgressCallback(t *testing.T) {
	client := &mockClient{
		profile: &bluesky.Profile{DID: "did:plc:subject"},
		followerPages: []bluesky.FollowersPage{
			{Followers: entries("f1", "f2"), Cursor: "page2"},
			{Followers: entries("f3"), Cursor: ""},
		},
		followPages: []bluesky.FollowsPage{
			{Follows: entries("g1"), Cursor: ""},
		},
	}

	type call struct {
		stage   string
		fetched int
	}
	var calls []call

	f := New(client, logger.NewTestLogger())
	f.SetProgress(func(stage string, fetched int) {
		calls = append(calls, call{stage, fetched})
	})

	_, err := f.Fetch("alice.bsky.social")
	require.NoError(t, err)

	assert.Equal(t, []call{
		{"followers", 2},
		{"followers", 3},
		{"follows", 1},
	}, calls)
}

func TestFetchEmptyGraph(t *testing.T) {
	client := &mockClient{
		profile: &bluesky.Profile{DID: "did:plc:subject"},
		followerPages: []bluesky.FollowersPage{
			{Followers: nil, Cursor: ""},
		},
		followPages: []bluesky.FollowsPage{
			{Follows: nil, Cursor: ""},
		},
	}

	f := New(client, logger.NewTestLogger())
	graph, err := f.Fetch("alice.bsky.social")

	require.NoError(t, err)
	assert.Empty(t, graph.Followers)
	assert.Empty(t, graph.Follows)
}
