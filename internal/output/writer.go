// Package output writes conversion reports.
package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/semantify/pkg/semantic"
)

// Format represents report format types.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Report describes one converted document.
type Report struct {
	Source      string          `json:"source" yaml:"source"`
	Destination string          `json:"destination,omitempty" yaml:"destination,omitempty"`
	Charset     string          `json:"charset,omitempty" yaml:"charset,omitempty"`
	Stats       *semantic.Stats `json:"stats" yaml:"stats"`
}

// Writer serializes reports.
type Writer interface {
	// Write records a single report.
	Write(r Report) error

	// Close writes anything buffered.
	Close() error
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatText, "":
		return &textWriter{w: w}, nil
	case FormatJSON:
		return newJSONWriter(w), nil
	case FormatJSONL:
		return newJSONLWriter(w), nil
	case FormatYAML:
		return newYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

type textWriter struct {
	w io.Writer
}

func (t *textWriter) Write(r Report) error {
	if _, err := fmt.Fprintf(t.w, "=== %s ===\n", r.Source); err != nil {
		return err
	}
	if r.Destination != "" {
		if _, err := fmt.Fprintf(t.w, "Output: %s\n", r.Destination); err != nil {
			return err
		}
	}
	if r.Stats == nil {
		return nil
	}
	_, err := io.WriteString(t.w, r.Stats.String())
	return err
}

func (t *textWriter) Close() error { return nil }
