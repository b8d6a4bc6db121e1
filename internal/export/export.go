// Package export formats saved study options for copying or downloading.
package export

import (
	"strings"

	"career-mentor/internal/selection"
)

const (
	// DownloadFileName is the suggested name for the downloaded list.
	DownloadFileName = "my-study-options.txt"
	// DownloadContentType is the media type of DownloadText output.
	DownloadContentType = "text/plain; charset=utf-8"

	downloadTitle = "My Saved Study Options"
	ruleWidth     = 30
)

// ClipboardText joins the selected items with newlines.
func ClipboardText(s selection.Set) string {
	return strings.Join(s.Items(), "\n")
}

// DownloadText renders a titled list suitable for a text file download.
// An empty selection yields only the title and rule.
func DownloadText(s selection.Set) string {
	var b strings.Builder
	b.WriteString(downloadTitle)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(s.Items(), "\n\n"))
	return b.String()
}
