package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"bskygraph/pkg/analyzer"
	"bskygraph/pkg/bluesky"
	"bskygraph/pkg/errors"
	"bskygraph/pkg/fetcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *Document {
	graph := &fetcher.Graph{
		Actor: "alice.bsky.social",
		Profile: &bluesky.Profile{
			DID:    "did:plc:subject",
			Handle: "alice.bsky.social",
		},
		Followers: []bluesky.GraphEntry{
			{DID: "did:plc:a", Handle: "a.bsky.social", DisplayName: "A"},
			{DID: "did:plc:b", Handle: "b.bsky.social", DisplayName: "B, with comma"},
		},
		Follows: []bluesky.GraphEntry{
			{DID: "did:plc:b", Handle: "b.bsky.social", DisplayName: "B, with comma"},
			{DID: "did:plc:c", Handle: "c.bsky.social", IndexedAt: "2024-01-15T10:30:00Z"},
		},
	}
	result := analyzer.Analyze(graph.Followers, graph.Follows)
	return NewDocument(graph, result)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatNone, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{" csv ", FormatCSV, false},
		{"xml", FormatNone, true},
		{"yaml", FormatNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsConfig(err))
				assert.Contains(t, err.Error(), "unsupported export format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDocument(t *testing.T) {
	doc := testDocument()

	assert.Equal(t, "alice.bsky.social", doc.Actor)
	assert.Equal(t, 2, doc.Counts.Followers)
	assert.Equal(t, 2, doc.Counts.Follows)
	assert.Equal(t, 1, doc.Counts.Mutuals)
	assert.Equal(t, 1, doc.Counts.Fans)
	assert.Equal(t, 1, doc.Counts.NotFollowingBack)
}

func TestWriteJSON(t *testing.T) {
	doc := testDocument()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(doc, &buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "alice.bsky.social", decoded["actor"])
	assert.Contains(t, decoded, "profile")
	assert.Contains(t, decoded, "counts")
	assert.Contains(t, decoded, "followers")
	assert.Contains(t, decoded, "follows")
	assert.Contains(t, decoded, "mutuals")
	assert.Contains(t, decoded, "fans")
	assert.Contains(t, decoded, "not_following_back")

	counts := decoded["counts"].(map[string]interface{})
	assert.Equal(t, float64(1), counts["mutuals"])
}

func TestWriteCSV(t *testing.T) {
	doc := testDocument()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(doc, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, []string{"relationship", "did", "handle", "display_name", "description", "indexed_at"}, records[0])

	// Followers first, categorized, then not-following-back
	assert.Equal(t, "fan", records[1][0])
	assert.Equal(t, "did:plc:a", records[1][1])
	assert.Equal(t, "mutual", records[2][0])
	assert.Equal(t, "B, with comma", records[2][3])
	assert.Equal(t, "not_following_back", records[3][0])
	assert.Equal(t, "2024-01-15T10:30:00Z", records[3][5])
}

func TestWriteCSVEmptyGraph(t *testing.T) {
	graph := &fetcher.Graph{Actor: "alice.bsky.social"}
	doc := NewDocument(graph, analyzer.Analyze(nil, nil))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(doc, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestWriteToFile(t *testing.T) {
	doc := testDocument()
	path := filepath.Join(t.TempDir(), "out", "graph.json")

	require.NoError(t, Write(doc, FormatJSON, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "alice.bsky.social", decoded.Actor)

	// No temp file left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteCSVToFile(t *testing.T) {
	doc := testDocument()
	path := filepath.Join(t.TempDir(), "graph.csv")

	require.NoError(t, Write(doc, FormatCSV, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestWriteInvalidFormat(t *testing.T) {
	doc := testDocument()
	err := Write(doc, Format("xml"), "")
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestJSONRoundTripPreservesOrder(t *testing.T) {
	doc := testDocument()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(doc, &buf))

	var decoded Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Mutuals, 1)
	assert.Equal(t, "did:plc:b", decoded.Mutuals[0].DID)
	require.Len(t, decoded.NotFollowingBack, 1)
	assert.Equal(t, "did:plc:c", decoded.NotFollowingBack[0].DID)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			max:      100,
			expected: "hello",
		},
		{
			name:     "exact length unchanged",
			input:    "abcde",
			max:      5,
			expected: "abcde",
		},
		{
			name:     "ascii truncated",
			input:    "abcdefgh",
			max:      5,
			expected: "abcde...",
		},
		{
			name:     "multibyte runes kept intact",
			input:    "héllo wörld, çafé tîme",
			max:      10,
			expected: "héllo wörl...",
		},
		{
			name:     "cjk truncated on rune boundary",
			input:    strings.Repeat("日本語", 10),
			max:      4,
			expected: "日本語日...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunes(tt.input, tt.max)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
