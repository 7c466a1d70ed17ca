package dataset

import (
	"errors"
	"fmt"
)

// MissingColumnError is returned at load time when a required column is absent.
type MissingColumnError struct {
	Column string
	Source string
}

func (e *MissingColumnError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("missing required column %q in %s", e.Column, e.Source)
	}
	return fmt.Sprintf("missing required column %q", e.Column)
}

// ErrUnsupported indicates no loader accepts the given source.
var ErrUnsupported = errors.New("unsupported dataset source")
