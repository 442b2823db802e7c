package main

import (
	"errors"
	"math"
)

// ErrInvalidParameter is the sentinel behind every parameter validation failure
var ErrInvalidParameter = errors.New("invalid parameter")

// ValidationError describes which input was rejected and why
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap lets errors.Is(err, ErrInvalidParameter) match
func (e *ValidationError) Unwrap() error {
	return ErrInvalidParameter
}

// IsUndefinedGini reports whether g is the undefined-Gini sentinel (empty or all-zero input)
func IsUndefinedGini(g float64) bool {
	return math.IsNaN(g)
}
