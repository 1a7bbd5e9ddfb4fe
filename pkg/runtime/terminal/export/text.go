package export

import (
	"fmt"
	"github.com/de-tools/ledger-atlas/pkg/models/domain"
	"io"
	"os"
	"text/template"
)

// TextReporter outputs reports to the console in a formatted text form
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new console reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &TextReporter{writer: writer}
}

func (c *TextReporter) Handle(report *domain.Report) error {
	tmpl := `
{{.Title}}
{{range .Sections}}
=== {{.Title}} ===
{{range $key, $value := .Summary}}
{{$key}}: {{$value}}
{{end}}
{{range .Details}}
- {{.Name}}: {{.Value}}{{if .Unit}} {{.Unit}}{{end}}{{if .Description}}
  {{.Description}}{{end}}
{{end}}
{{end}}
`
	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
