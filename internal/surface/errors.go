package surface

import "errors"

var (
	// ErrInvalidSelection means zero or more than two parameters were
	// selected. It is a guidance condition, not a failure.
	ErrInvalidSelection = errors.New("surface: select 1 or 2 variables")

	ErrUnknownParameter   = errors.New("surface: parameter not in parameter set")
	ErrRangeOutOfBounds   = errors.New("surface: range override outside allowed interval")
	ErrInvalidSampleCount = errors.New("surface: sample count must be at least 1")
	ErrNilMetric          = errors.New("surface: nil metric function")
)

const (
	// SelectionGuidance is shown instead of a plot when the selection size is wrong.
	SelectionGuidance = "Por favor, selecciona 1 o 2 variables para visualizar la función continua."
	// EmptySelectionGuidance is shown when nothing is selected.
	EmptySelectionGuidance = "Por favor, selecciona al menos una variable de entrada."
)

// SelectionError carries the offending selection size.
type SelectionError struct {
	Count int
}

func (e *SelectionError) Error() string {
	return ErrInvalidSelection.Error()
}

func (e *SelectionError) Unwrap() error {
	return ErrInvalidSelection
}

// IsGuidance reports whether err should be shown as a message rather than
// treated as a failure.
func IsGuidance(err error) bool {
	return errors.Is(err, ErrInvalidSelection)
}

// Guidance returns the user-facing message for a guidance error, or "".
func Guidance(err error) string {
	var se *SelectionError
	if errors.As(err, &se) {
		if se.Count == 0 {
			return EmptySelectionGuidance
		}
		return SelectionGuidance
	}
	if IsGuidance(err) {
		return SelectionGuidance
	}
	return ""
}
