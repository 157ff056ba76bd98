package service

import (
	"errors"
	"fmt"
)

// ValidationError is a local, pre-submit rule violation. It is surfaced
// immediately and never reaches the data-access layer.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNoSubItems is returned by budget distribution over a partida
// without subpartidas.
var ErrNoSubItems = errors.New("no sub-items to distribute budget across")
