package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned for a hotspot tier other than Free / Limited Free.
var ErrUnknownCategory = errors.New("unknown hotspot category")

// SchemaError reports a column the data does not carry.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

// ValueError reports a cell that cannot be interpreted.
type ValueError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("row %d: malformed %s value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }
