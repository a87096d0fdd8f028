package core

import (
	"errors"
	"fmt"
)

// ErrNotApplicable is returned when a file is not a manifest any registered
// handler recognizes. It signals absence of data, not a failure.
var ErrNotApplicable = errors.New("not applicable")

// ParseError wraps a failure to read or parse a manifest file.
type ParseError struct {
	Ecosystem string
	Path      string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parsing %s: %v", e.Ecosystem, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
