package analysis

import "fmt"

// InvalidRangeError indicates a score range with low > high or a NaN or
// infinite bound.
type InvalidRangeError struct {
	Low, High float64
}

func (e *InvalidRangeError) Error() string {
	if !finite(e.Low) || !finite(e.High) {
		return fmt.Sprintf("invalid score range [%v, %v]: bounds must be finite numbers", e.Low, e.High)
	}
	return fmt.Sprintf("invalid score range [%g, %g]: low must not exceed high", e.Low, e.High)
}

// EmptyDatasetError indicates there is no data loaded at all. An empty
// filtered result is not an error.
type EmptyDatasetError struct {
	Name string
}

func (e *EmptyDatasetError) Error() string {
	if e == nil || e.Name == "" {
		return "dataset is empty"
	}
	return fmt.Sprintf("dataset %s is empty", e.Name)
}
