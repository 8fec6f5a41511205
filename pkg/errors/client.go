// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package errors

import "errors"

// NotFound represents a record that is absent from the store. For set-valued
// and queue-valued records this is the normal steady state, not a failure.
type NotFound struct {
	base
}

// Error returns the error message for NotFound.
func (nf NotFound) Error() string {
	return nf.error()
}

// Unwrap returns the wrapped error, if any.
func (nf NotFound) Unwrap() error {
	return nf.err
}

// NewNotFound creates a new NotFound error with the provided message.
func NewNotFound(message string, err ...error) NotFound {
	return NotFound{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Conflict represents a fail-if-exists insert that lost to an existing key.
type Conflict struct {
	base
}

// Error returns the error message for Conflict.
func (c Conflict) Error() string {
	return c.error()
}

// Unwrap returns the wrapped error, if any.
func (c Conflict) Unwrap() error {
	return c.err
}

// NewConflict creates a new Conflict error with the provided message.
func NewConflict(message string, err ...error) Conflict {
	return Conflict{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Validation represents invalid input supplied by a caller.
type Validation struct {
	base
}

// Error returns the error message for Validation.
func (v Validation) Error() string {
	return v.error()
}

// Unwrap returns the wrapped error, if any.
func (v Validation) Unwrap() error {
	return v.err
}

// NewValidation creates a new Validation error with the provided message.
func NewValidation(message string, err ...error) Validation {
	return Validation{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}
