// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package diags

import (
	"errors"
	"strings"
	"testing"
)

func TestDiagnosticsAppend(t *testing.T) {
	var d Diagnostics

	d = d.Append(nil)
	if d != nil {
		t.Fatalf("appending nil produced %#v; want nil", d)
	}

	d = d.Append(Sourceless(Warning, "a warning", ""))
	if d.HasErrors() {
		t.Fatalf("warnings alone must not report HasErrors")
	}

	d = d.Append(errors.New("a native error"))
	if !d.HasErrors() {
		t.Fatalf("native errors must report HasErrors")
	}
	if len(d) != 2 {
		t.Fatalf("wrong length %d; want 2", len(d))
	}

	var more Diagnostics
	more = more.Append(Sourceless(Error, "structured", "with detail"))
	d = d.Append(more)
	if len(d) != 3 {
		t.Fatalf("wrong length %d after appending Diagnostics; want 3", len(d))
	}
}

func TestDiagnosticsErr(t *testing.T) {
	var d Diagnostics
	if d.Err() != nil {
		t.Fatalf("empty diagnostics produced a non-nil error")
	}

	d = d.Append(Sourceless(Warning, "just a warning", ""))
	if d.Err() != nil {
		t.Fatalf("warning-only diagnostics produced a non-nil error")
	}

	d = d.Append(Sourceless(Error, "broke", "badly"))
	err := d.Err()
	if err == nil {
		t.Fatalf("error diagnostics produced a nil error")
	}
	if !strings.Contains(err.Error(), "broke") || !strings.Contains(err.Error(), "badly") {
		t.Errorf("flattened error %q missing summary or detail", err)
	}
	if strings.Contains(err.Error(), "warning") {
		t.Errorf("flattened error %q includes warning text", err)
	}
}

func TestAppendPanicsOnUnknownType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("appending an int did not panic")
		}
	}()

	var d Diagnostics
	d.Append(42)
}
