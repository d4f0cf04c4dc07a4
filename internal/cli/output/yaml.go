package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
)

// YAMLFormatter formats reports as YAML.
type YAMLFormatter struct{}

// Format writes report as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, report *domain.Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return err
	}
	return encoder.Close()
}
