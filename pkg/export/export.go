package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bskygraph/pkg/analyzer"
	"bskygraph/pkg/bluesky"
	"bskygraph/pkg/errors"
	"bskygraph/pkg/fetcher"
)

// Format is an export format selector
type Format string

const (
	// FormatNone means no export artifact; only the console summary is shown
	FormatNone Format = ""
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format string. An empty string selects no
// export. Anything else than json or csv is a configuration error so
// it can be rejected before any network activity.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatNone, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatNone, errors.NewConfig(fmt.Sprintf("unsupported export format %q (supported: json, csv)", s))
	}
}

// Document is the exported artifact: account metadata, counts, the raw
// lists and the derived relationship categories
type Document struct {
	Actor            string               `json:"actor"`
	Profile          *bluesky.Profile     `json:"profile"`
	Counts           analyzer.Counts      `json:"counts"`
	Followers        []bluesky.GraphEntry `json:"followers"`
	Follows          []bluesky.GraphEntry `json:"follows"`
	Mutuals          []bluesky.GraphEntry `json:"mutuals"`
	Fans             []bluesky.GraphEntry `json:"fans"`
	NotFollowingBack []bluesky.GraphEntry `json:"not_following_back"`
}

// NewDocument builds the export document from a fetched graph and its analysis
func NewDocument(graph *fetcher.Graph, result analyzer.Result) *Document {
	return &Document{
		Actor:            graph.Actor,
		Profile:          graph.Profile,
		Counts:           result.Counts(),
		Followers:        result.Followers,
		Follows:          result.Follows,
		Mutuals:          result.Mutuals,
		Fans:             result.Fans,
		NotFollowingBack: result.NotFollowingBack,
	}
}

// WriteJSON writes the document as an indented JSON object
func WriteJSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// csvHeader is the CSV schema: the relationship category plus the
// account fields carried for each identifier
var csvHeader = []string{"relationship", "did", "handle", "display_name", "description", "indexed_at"}

// WriteCSV writes one row per identifier with its relationship category.
// Followers come first (tagged mutual or fan, in follower-list order),
// then the remaining follows tagged not_following_back.
func WriteCSV(doc *Document, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	mutualDIDs := make(map[string]bool, len(doc.Mutuals))
	for _, entry := range doc.Mutuals {
		mutualDIDs[entry.DID] = true
	}

	for _, entry := range doc.Followers {
		category := "fan"
		if mutualDIDs[entry.DID] {
			category = "mutual"
		}
		if err := writer.Write(csvRow(category, entry)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	for _, entry := range doc.NotFollowingBack {
		if err := writer.Write(csvRow("not_following_back", entry)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(category string, entry bluesky.GraphEntry) []string {
	return []string{category, entry.DID, entry.Handle, entry.DisplayName, entry.Description, entry.IndexedAt}
}

// Write serializes the document in the given format to path, or to
// stdout when path is empty. Files are written to a temporary file
// first and atomically renamed into place.
func Write(doc *Document, format Format, path string) error {
	write := func(w io.Writer) error {
		switch format {
		case FormatJSON:
			return WriteJSON(doc, w)
		case FormatCSV:
			return WriteCSV(doc, w)
		default:
			return errors.NewConfig(fmt.Sprintf("unsupported export format %q (supported: json, csv)", format))
		}
	}

	if path == "" {
		return write(os.Stdout)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	writeErr := write(out)
	closeErr := out.Close()

	if writeErr != nil {
		os.Remove(tempFile)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
