package semantic

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stats captures what a conversion did.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// GenericElements is the number of div/span elements collected.
	GenericElements int `json:"generic_elements" yaml:"generic_elements"`

	// Promoted counts promotions by target tag.
	Promoted map[string]int `json:"promoted" yaml:"promoted"`

	// Unwrapped counts unwrapped elements by source tag.
	Unwrapped map[string]int `json:"unwrapped" yaml:"unwrapped"`

	// Timing
	ParseDuration   time.Duration `json:"parse_duration_ns" yaml:"parse_duration_ns"`
	RewriteDuration time.Duration `json:"rewrite_duration_ns" yaml:"rewrite_duration_ns"`
	RenderDuration  time.Duration `json:"render_duration_ns" yaml:"render_duration_ns"`
	TotalDuration   time.Duration `json:"total_duration_ns" yaml:"total_duration_ns"`
}

// NewStats creates a Stats with initialized maps.
func NewStats() *Stats {
	return &Stats{
		Promoted:  make(map[string]int),
		Unwrapped: make(map[string]int),
	}
}

// RecordPromotion records a generic element promoted to tag.
func (s *Stats) RecordPromotion(tag string) {
	s.Promoted[strings.ToLower(tag)]++
}

// RecordUnwrap records a generic element that was dissolved.
func (s *Stats) RecordUnwrap(from string) {
	s.Unwrapped[strings.ToLower(from)]++
}

// TotalPromoted returns the number of promoted elements.
func (s *Stats) TotalPromoted() int {
	return sum(s.Promoted)
}

// TotalUnwrapped returns the number of unwrapped elements.
func (s *Stats) TotalUnwrapped() int {
	return sum(s.Unwrapped)
}

func sum(m map[string]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %d -> %d bytes\n", s.InputBytes, s.OutputBytes))
	sb.WriteString(fmt.Sprintf("Generic elements: %d (%d promoted, %d unwrapped)\n",
		s.GenericElements, s.TotalPromoted(), s.TotalUnwrapped()))

	if len(s.Promoted) > 0 {
		sb.WriteString("Promoted to: ")
		sb.WriteString(formatCounts(s.Promoted))
		sb.WriteString("\n")
	}
	if len(s.Unwrapped) > 0 {
		sb.WriteString("Unwrapped: ")
		sb.WriteString(formatCounts(s.Unwrapped))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, rewrite=%v, render=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.RewriteDuration.Round(time.Microsecond),
		s.RenderDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// formatCounts renders tag=count pairs sorted by tag.
func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, ", ")
}
