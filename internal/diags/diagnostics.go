// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package diags

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostics is a list of diagnostics. It grows by calling Append, which
// accepts a number of different diagnostic-like types and normalizes them.
//
// A nil Diagnostics is a valid, empty list.
type Diagnostics []Diagnostic

// Append appends a new set of diagnostics to the list, returning the
// combined list. The given items may be any mixture of Diagnostic,
// Diagnostics and error values; nil items are silently ignored. Any other
// type causes a panic, since that suggests a bug in the caller.
func (d Diagnostics) Append(items ...interface{}) Diagnostics {
	for _, item := range items {
		if item == nil {
			continue
		}

		switch ti := item.(type) {
		case Diagnostic:
			d = append(d, ti)
		case Diagnostics:
			d = append(d, ti...)
		case error:
			d = append(d, nativeError{ti})
		default:
			panic(fmt.Errorf("can't construct diagnostic(s) from %T", item))
		}
	}

	// Given the above, we will have a non-nil empty slice here if the
	// original d was nil and no items were appended, which we'll normalize
	// back to nil.
	if len(d) == 0 {
		return nil
	}

	return d
}

// HasErrors returns true if any of the diagnostics in the list have a
// severity of Error.
func (d Diagnostics) HasErrors() bool {
	for _, diag := range d {
		if diag.Severity() == Error {
			return true
		}
	}
	return false
}

// Err flattens a diagnostics list into a single Go error, or to nil if the
// diagnostics list does not include any error-level diagnostics.
func (d Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}

	var b strings.Builder
	count := 0
	for _, diag := range d {
		if diag.Severity() != Error {
			continue
		}
		if count > 0 {
			b.WriteString("; ")
		}
		b.WriteString(diag.Summary())
		if detail := diag.Detail(); detail != "" {
			b.WriteString(": ")
			b.WriteString(detail)
		}
		count++
	}
	return errors.New(b.String())
}

// nativeError is a Diagnostic implementation that wraps a normal Go error.
type nativeError struct {
	err error
}

var _ Diagnostic = nativeError{}

func (e nativeError) Severity() Severity {
	return Error
}

func (e nativeError) Summary() string {
	return e.err.Error()
}

func (e nativeError) Detail() string {
	return ""
}
