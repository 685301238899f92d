package export

import (
	"fmt"
	"strings"

	"bskygraph/pkg/bluesky"
	"bskygraph/pkg/ui"
)

const (
	summaryMutualsLimit = 20
	summaryOthersLimit  = 10
)

// PrintSummary prints a human-readable summary of the analyzed graph
func PrintSummary(doc *Document) {
	divider := strings.Repeat("=", 60)

	fmt.Println()
	fmt.Println(ui.Dim(divider))
	ui.PrintHighlight("SOCIAL GRAPH SUMMARY")
	fmt.Println(ui.Dim(divider))

	if doc.Profile != nil {
		name := doc.Profile.DisplayName
		if name == "" {
			name = doc.Profile.Handle
		}
		ui.PrintInfo("Account", fmt.Sprintf("%s (@%s)", name, doc.Profile.Handle))
		ui.PrintInfo("DID", doc.Profile.DID)
		if doc.Profile.Description != "" {
			ui.PrintInfo("Bio", truncateRunes(doc.Profile.Description, 100))
		}
	}

	ui.PrintInfo("Followers", fmt.Sprintf("%d", doc.Counts.Followers))
	ui.PrintInfo("Following", fmt.Sprintf("%d", doc.Counts.Follows))
	ui.PrintInfo("Mutuals", fmt.Sprintf("%d", doc.Counts.Mutuals))
	ui.PrintInfo("Fans", fmt.Sprintf("%d", doc.Counts.Fans))
	ui.PrintInfo("Not following back", fmt.Sprintf("%d", doc.Counts.NotFollowingBack))

	printTop(fmt.Sprintf("Top %d Mutuals", summaryMutualsLimit), doc.Mutuals, summaryMutualsLimit)
	printTop(fmt.Sprintf("Top %d Fans (follow you, you don't follow back)", summaryOthersLimit), doc.Fans, summaryOthersLimit)
	printTop(fmt.Sprintf("Top %d Not Following Back", summaryOthersLimit), doc.NotFollowingBack, summaryOthersLimit)

	fmt.Println(ui.Dim(divider))
}

// truncateRunes shortens s to at most max runes, appending an ellipsis
// when it was cut. Bios can contain multi-byte characters, so slicing
// happens on runes rather than bytes.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func printTop(title string, entries []bluesky.GraphEntry, limit int) {
	if len(entries) == 0 || ui.IsQuietMode() {
		return
	}

	fmt.Printf("\n--- %s ---\n", ui.Cyan(title))

	if len(entries) < limit {
		limit = len(entries)
	}
	for _, entry := range entries[:limit] {
		name := entry.DisplayName
		if name == "" {
			name = entry.Handle
		}
		fmt.Printf("  @%-30s  %s\n", entry.Handle, name)
	}
}
