package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/semantify/pkg/semantic"
)

func sampleReport(source string) Report {
	stats := semantic.NewStats()
	stats.InputBytes = 100
	stats.OutputBytes = 80
	stats.GenericElements = 3
	stats.RecordPromotion("nav")
	stats.RecordUnwrap("div")
	stats.RecordUnwrap("span")
	return Report{Source: source, Destination: "out.html", Charset: "utf-8", Stats: stats}
}

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format  Format
		wantErr bool
	}{
		{FormatText, false},
		{"", false},
		{FormatJSON, false},
		{FormatJSONL, false},
		{FormatYAML, false},
		{Format("xml"), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unsupported format")
				}
				return
			}
			if err != nil || w == nil {
				t.Fatalf("NewWriter() = %v, %v", w, err)
			}
		})
	}
}

func TestJSONWriter_SingleReportIsObject(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON)
	if err := w.Write(sampleReport("a.html")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected JSON object, got %q: %v", buf.String(), err)
	}
	if got.Source != "a.html" || got.Stats.Promoted["nav"] != 1 {
		t.Errorf("unexpected report: %+v", got)
	}
}

func TestJSONWriter_MultipleReportsIsArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON)
	_ = w.Write(sampleReport("a.html"))
	_ = w.Write(sampleReport("b.html"))
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var got []Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected JSON array: %v", err)
	}
	if len(got) != 2 || got[1].Source != "b.html" {
		t.Errorf("unexpected reports: %+v", got)
	}
}

func TestJSONLWriter_StreamsLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSONL)
	_ = w.Write(sampleReport("a.html"))

	// Written immediately, before Close.
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Fatal("expected line to be flushed on Write")
	}
	_ = w.Write(sampleReport("b.html"))
	_ = w.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var r Report
	if err := json.Unmarshal([]byte(lines[1]), &r); err != nil || r.Source != "b.html" {
		t.Errorf("unexpected line %q: %v", lines[1], err)
	}
}

func TestYAMLWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatYAML)
	_ = w.Write(sampleReport("a.html"))
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if got["source"] != "a.html" {
		t.Errorf("expected source a.html, got %v", got["source"])
	}
	if !strings.Contains(buf.String(), "generic_elements: 3") {
		t.Errorf("expected stats in YAML, got %s", buf.String())
	}
}

func TestTextWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatText)
	_ = w.Write(sampleReport("a.html"))
	_ = w.Close()

	out := buf.String()
	for _, want := range []string{"=== a.html ===", "Output: out.html", "1 promoted, 2 unwrapped", "Promoted to: nav=1", "Unwrapped: div=1, span=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
