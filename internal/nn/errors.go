package nn

import "fmt"

// ConstructionError reports a cell/output/driver composition that can never
// run: wrong cell kind for the driver or state sizes that do not line up.
type ConstructionError struct {
	Reason string
}

func (e *ConstructionError) Error() string {
	return "nn: invalid composition: " + e.Reason
}

func constructionErrorf(format string, args ...any) error {
	return &ConstructionError{Reason: fmt.Sprintf(format, args...)}
}
