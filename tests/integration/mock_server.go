package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
)

// MockBlueskyServer simulates the XRPC endpoints bskygraph talks to:
// getProfile, getFollowers, getFollows and createSession. Accounts are
// registered synthetically; pagination is driven by numeric cursors.
type MockBlueskyServer struct {
	server         *httptest.Server
	requestCount   int32
	endpointCounts map[string]*int32
	errorResponses map[string]int // endpoint name to forced status code
	pageSize       int
	mu             sync.RWMutex

	accounts map[string]*mockAccount
	appPass  map[string]string // handle to accepted app password
}

type mockAccount struct {
	DID       string
	Handle    string
	Followers []mockEntry
	Follows   []mockEntry
}

type mockEntry struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
	IndexedAt   string `json:"indexedAt,omitempty"`
}

// NewMockBlueskyServer starts a mock XRPC server
func NewMockBlueskyServer() *MockBlueskyServer {
	m := &MockBlueskyServer{
		accounts:       make(map[string]*mockAccount),
		appPass:        make(map[string]string),
		errorResponses: make(map[string]int),
		endpointCounts: map[string]*int32{
			"getProfile":    new(int32),
			"getFollowers":  new(int32),
			"getFollows":    new(int32),
			"createSession": new(int32),
		},
		pageSize: 100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/app.bsky.actor.getProfile", m.handleProfile)
	mux.HandleFunc("/xrpc/app.bsky.graph.getFollowers", m.handleFollowers)
	mux.HandleFunc("/xrpc/app.bsky.graph.getFollows", m.handleFollows)
	mux.HandleFunc("/xrpc/com.atproto.server.createSession", m.handleCreateSession)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the base XRPC URL of the mock server
func (m *MockBlueskyServer) URL() string {
	return m.server.URL + "/xrpc"
}

// Close shuts the server down
func (m *MockBlueskyServer) Close() {
	m.server.Close()
}

// AddAccount registers an account with generated follower/follow lists.
// Overlap determines how many DIDs appear in both lists (the mutuals).
func (m *MockBlueskyServer) AddAccount(handle string, followers, follows, overlap int) *mockAccount {
	m.mu.Lock()
	defer m.mu.Unlock()

	account := &mockAccount{
		DID:    "did:plc:" + handle,
		Handle: handle,
	}

	for i := 0; i < overlap; i++ {
		entry := mockEntry{
			DID:         fmt.Sprintf("did:plc:mutual%04d", i),
			Handle:      fmt.Sprintf("mutual%04d.bsky.social", i),
			DisplayName: fmt.Sprintf("Mutual %d", i),
		}
		account.Followers = append(account.Followers, entry)
		account.Follows = append(account.Follows, entry)
	}
	for i := overlap; i < followers; i++ {
		account.Followers = append(account.Followers, mockEntry{
			DID:    fmt.Sprintf("did:plc:fan%04d", i),
			Handle: fmt.Sprintf("fan%04d.bsky.social", i),
		})
	}
	for i := overlap; i < follows; i++ {
		account.Follows = append(account.Follows, mockEntry{
			DID:    fmt.Sprintf("did:plc:nfb%04d", i),
			Handle: fmt.Sprintf("nfb%04d.bsky.social", i),
		})
	}

	m.accounts[handle] = account
	m.accounts[account.DID] = account
	return account
}

// SetCredentials registers an accepted handle/app-password pair
func (m *MockBlueskyServer) SetCredentials(handle, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appPass[handle] = password
}

// SetErrorResponse forces an endpoint ("getProfile" etc) to return a status code
func (m *MockBlueskyServer) SetErrorResponse(endpoint string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorResponses[endpoint] = code
}

// SetPageSize overrides the server-side page size
func (m *MockBlueskyServer) SetPageSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageSize = n
}

// RequestCount returns the total number of requests served
func (m *MockBlueskyServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// EndpointCount returns the number of requests served for one endpoint
func (m *MockBlueskyServer) EndpointCount(endpoint string) int {
	if counter, ok := m.endpointCounts[endpoint]; ok {
		return int(atomic.LoadInt32(counter))
	}
	return 0
}

func (m *MockBlueskyServer) track(endpoint string) {
	atomic.AddInt32(&m.requestCount, 1)
	if counter, ok := m.endpointCounts[endpoint]; ok {
		atomic.AddInt32(counter, 1)
	}
}

func (m *MockBlueskyServer) forcedError(endpoint string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorResponses[endpoint]
}

func (m *MockBlueskyServer) lookup(actor string) *mockAccount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accounts[actor]
}

func (m *MockBlueskyServer) sendXRPCError(w http.ResponseWriter, code int, errName, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errName,
		"message": message,
	})
}

func (m *MockBlueskyServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	m.track("getProfile")

	if code := m.forcedError("getProfile"); code > 0 {
		m.sendXRPCError(w, code, "InternalServerError", "forced error")
		return
	}

	account := m.lookup(r.URL.Query().Get("actor"))
	if account == nil {
		// XRPC reports unknown actors as InvalidRequest
		m.sendXRPCError(w, http.StatusBadRequest, "InvalidRequest", "Profile not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"did":            account.DID,
		"handle":         account.Handle,
		"displayName":    "Account " + account.Handle,
		"followersCount": len(account.Followers),
		"followsCount":   len(account.Follows),
	})
}

func (m *MockBlueskyServer) handleFollowers(w http.ResponseWriter, r *http.Request) {
	m.track("getFollowers")

	if code := m.forcedError("getFollowers"); code > 0 {
		m.sendXRPCError(w, code, "InternalServerError", "forced error")
		return
	}

	account := m.lookup(r.URL.Query().Get("actor"))
	if account == nil {
		m.sendXRPCError(w, http.StatusBadRequest, "InvalidRequest", "Profile not found")
		return
	}

	page, cursor := m.paginate(account.Followers, r)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"subject":   map[string]string{"did": account.DID, "handle": account.Handle},
		"followers": page,
		"cursor":    cursor,
	})
}

func (m *MockBlueskyServer) handleFollows(w http.ResponseWriter, r *http.Request) {
	m.track("getFollows")

	if code := m.forcedError("getFollows"); code > 0 {
		m.sendXRPCError(w, code, "InternalServerError", "forced error")
		return
	}

	account := m.lookup(r.URL.Query().Get("actor"))
	if account == nil {
		m.sendXRPCError(w, http.StatusBadRequest, "InvalidRequest", "Profile not found")
		return
	}

	page, cursor := m.paginate(account.Follows, r)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"subject": map[string]string{"did": account.DID, "handle": account.Handle},
		"follows": page,
		"cursor":  cursor,
	})
}

func (m *MockBlueskyServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	m.track("createSession")

	if code := m.forcedError("createSession"); code > 0 {
		m.sendXRPCError(w, code, "InternalServerError", "forced error")
		return
	}

	var body struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		m.sendXRPCError(w, http.StatusBadRequest, "InvalidRequest", "malformed request")
		return
	}

	m.mu.RLock()
	expected, ok := m.appPass[body.Identifier]
	m.mu.RUnlock()

	if !ok || expected != body.Password {
		m.sendXRPCError(w, http.StatusUnauthorized, "AuthenticationRequired", "Invalid identifier or password")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"accessJwt":  "mock-access-token",
		"refreshJwt": "mock-refresh-token",
		"handle":     body.Identifier,
		"did":        "did:plc:" + body.Identifier,
	})
}

// paginate slices entries according to the cursor and page size. The
// cursor is the numeric offset of the next page, empty on the last page.
func (m *MockBlueskyServer) paginate(entries []mockEntry, r *http.Request) ([]mockEntry, string) {
	m.mu.RLock()
	pageSize := m.pageSize
	m.mu.RUnlock()

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n < pageSize {
			pageSize = n
		}
	}

	offset := 0
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		if n, err := strconv.Atoi(cursor); err == nil && n >= 0 {
			offset = n
		}
	}

	if offset >= len(entries) {
		return []mockEntry{}, ""
	}

	end := offset + pageSize
	if end >= len(entries) {
		return entries[offset:], ""
	}
	return entries[offset:end], strconv.Itoa(end)
}
