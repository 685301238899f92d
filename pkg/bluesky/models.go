package bluesky

// Profile represents the response of app.bsky.actor.getProfile
type Profile struct {
	DID            string `json:"did"`
	Handle         string `json:"handle"`
	DisplayName    string `json:"displayName,omitempty"`
	Description    string `json:"description,omitempty"`
	FollowersCount int    `json:"followersCount"`
	FollowsCount   int    `json:"followsCount"`
	PostsCount     int    `json:"postsCount"`
}

// GraphEntry represents a single account in a followers or follows page
type GraphEntry struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	IndexedAt   string `json:"indexedAt,omitempty"`
}

// FollowersPage represents one page of app.bsky.graph.getFollowers.
// An absent cursor marks the final page.
type FollowersPage struct {
	Subject   GraphEntry   `json:"subject"`
	Followers []GraphEntry `json:"followers"`
	Cursor    string       `json:"cursor,omitempty"`
}

// FollowsPage represents one page of app.bsky.graph.getFollows
type FollowsPage struct {
	Subject GraphEntry   `json:"subject"`
	Follows []GraphEntry `json:"follows"`
	Cursor  string       `json:"cursor,omitempty"`
}

// Session represents the response of com.atproto.server.createSession
type Session struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	DID        string `json:"did"`
}

// createSessionRequest is the body of com.atproto.server.createSession
type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// xrpcError is the error body returned by XRPC endpoints on non-2xx status
type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
