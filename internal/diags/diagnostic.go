// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package diags

// Diagnostic is the describing interface for a single problem report. Unlike
// a plain error it carries a severity, so callers can distinguish fatal
// problems from advisories when rendering.
type Diagnostic interface {
	Severity() Severity
	Summary() string
	Detail() string
}

// Severity describes the severity of a diagnostic.
type Severity rune

const (
	Error   Severity = 'E'
	Warning Severity = 'W'
)

// diagnosticBase is a simple Diagnostic implementation carrying only the
// three basic fields.
type diagnosticBase struct {
	severity Severity
	summary  string
	detail   string
}

func (d diagnosticBase) Severity() Severity {
	return d.severity
}

func (d diagnosticBase) Summary() string {
	return d.summary
}

func (d diagnosticBase) Detail() string {
	return d.detail
}

// Sourceless creates and returns a diagnostic with no source location
// information. This is generally used for operational-type errors that are
// caused by or relate to the environment where mutx is running rather than
// to the supplied arguments.
func Sourceless(severity Severity, summary, detail string) Diagnostic {
	return diagnosticBase{
		severity: severity,
		summary:  summary,
		detail:   detail,
	}
}
