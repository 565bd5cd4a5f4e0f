package cli

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// theme holds the terminal color scheme.
type theme struct {
	User      lipgloss.Color
	Assistant lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
}

var defaultTheme = theme{
	User:      lipgloss.Color("#5FAFD7"), // light blue
	Assistant: lipgloss.Color("#00ABF0"), // site accent
	Success:   lipgloss.Color("#00D787"), // green
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
}

func (t theme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User).Bold(true)
}

func (t theme) assistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Assistant).Bold(true)
}

func (t theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t theme) headingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Underline(true)
}

var boldMarkup = regexp.MustCompile(`\*\*(.*?)\*\*`)

// renderTerminal is the terminal counterpart of widget.RenderHTML: **text**
// becomes bold and lines are indented under the speaker label.
func renderTerminal(content string) string {
	bold := lipgloss.NewStyle().Bold(true)
	out := boldMarkup.ReplaceAllStringFunc(content, func(m string) string {
		return bold.Render(boldMarkup.FindStringSubmatch(m)[1])
	})
	out = strings.ReplaceAll(out, "\r\n", "\n")
	return strings.ReplaceAll(out, "\n", "\n  ")
}
