package widget

import (
	"html"
	"regexp"
	"strings"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// RenderHTML turns message content into display HTML. Everything is escaped
// first; the only markup produced is <strong> for **text** and <br> for
// newlines.
func RenderHTML(content string) string {
	out := html.EscapeString(content)
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = strings.ReplaceAll(out, "\r\n", "\n")
	return strings.ReplaceAll(out, "\n", "<br>")
}

var categoryIcons = map[string]string{
	"technical": "code",
	"projects":  "zap",
	"contact":   "mail",
}

const defaultIcon = "message-circle"

// Icon returns the icon name for a suggestion category ID.
func Icon(categoryID string) string {
	if icon, ok := categoryIcons[categoryID]; ok {
		return icon
	}
	return defaultIcon
}
