package output

import (
	"fmt"
	"io"

	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formatter writes a report.
type Formatter interface {
	Format(w io.Writer, report *domain.Report) error
}

// NewFormatter creates a formatter for the given format. Unknown formats fall
// back to text.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// TextFormatter writes the human-readable report.
type TextFormatter struct{}

// Format writes each mismatch in run order followed by the summary line.
func (f *TextFormatter) Format(w io.Writer, report *domain.Report) error {
	for _, o := range report.Failed() {
		if _, err := fmt.Fprintln(w, o.MismatchLine()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, report.Summary())
	return err
}
