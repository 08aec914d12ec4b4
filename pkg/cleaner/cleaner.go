// Package cleaner defines composable HTML transformation stages.
// The semantic converter is one stage; others turn its output into
// different formats.
package cleaner

// Cleaner transforms HTML content.
type Cleaner interface {
	// Clean transforms the input HTML. The output format depends on the
	// implementation (html, markdown...).
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
