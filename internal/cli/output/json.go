package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct{}

// Format writes report as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, report *domain.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
