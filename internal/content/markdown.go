// Package content normalizes post bodies before they are stored. The rich
// text editor can hand us HTML; the board stores markdown.
package content

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Format names accepted from clients.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ToMarkdown converts body to markdown when format is "html". Any other
// format is stored as given, even if the text mentions tags like <br>.
// Conversion failures return the input unchanged.
func ToMarkdown(body, format string) string {
	if body == "" || !strings.EqualFold(format, FormatHTML) {
		return body
	}

	markdown, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return body
	}
	return strings.TrimSpace(markdown)
}
