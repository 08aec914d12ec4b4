package semantic

import "errors"

// Errors returned by the converter. Check with errors.Is.
var (
	// ErrParse is returned when the input cannot be turned into a tree.
	ErrParse = errors.New("semantic: parse failed")

	// ErrRender is returned when the rewritten tree cannot be serialized.
	ErrRender = errors.New("semantic: render failed")

	// ErrInvalidConfig is returned when a rule table or config fails validation.
	ErrInvalidConfig = errors.New("semantic: invalid config")
)

// UnavailableMessage is the user-facing text for a failed conversion.
const UnavailableMessage = "conversion not available for this input"
