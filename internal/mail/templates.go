package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"portfolio-site/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// OwnerNotice is the data for the email sent to the site owner.
type OwnerNotice struct {
	Submission domain.ContactSubmission
	OwnerName  string
	Year       int
}

// SenderAck is the data for the acknowledgment sent back to the submitter.
type SenderAck struct {
	Submission domain.ContactSubmission
	OwnerName  string
	BaseURL    string
	GitHub     string
	LinkedIn   string
	Year       int
}

// Templates holds the parsed contact email bodies.
type Templates struct {
	owner  *template.Template
	sender *template.Template
}

func ParseTemplates() (*Templates, error) {
	funcs := template.FuncMap{"lines": lines}
	owner, err := template.New("owner.html").Funcs(funcs).ParseFS(templateFS, "templates/owner.html")
	if err != nil {
		return nil, fmt.Errorf("mail: parse owner template: %w", err)
	}
	sender, err := template.New("sender.html").Funcs(funcs).ParseFS(templateFS, "templates/sender.html")
	if err != nil {
		return nil, fmt.Errorf("mail: parse sender template: %w", err)
	}
	return &Templates{owner: owner, sender: sender}, nil
}

func (t *Templates) RenderOwnerNotice(data OwnerNotice) (string, error) {
	return execute(t.owner, data)
}

func (t *Templates) RenderSenderAck(data SenderAck) (string, error) {
	return execute(t.sender, data)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// lines escapes s and turns its line breaks into <br> tags.
func lines(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
}
