// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package arguments

import (
	"errors"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"1s", time.Second},
		{"30s", 30 * time.Second},
		{"1m", time.Minute},
		{"5m", 5 * time.Minute},
		{"2h", 2 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"42", 42 * time.Second},
		{"0", 0},
	}

	for _, test := range tests {
		got, err := ParseDuration(test.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %s", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q: got %s; want %s", test.input, got, test.want)
		}
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "10x", "m", "-5s", "1.5h", "5 m"} {
		_, err := ParseDuration(input)
		var invalidErr *InvalidDurationError
		if !errors.As(err, &invalidErr) {
			t.Errorf("%q: wrong error %#v; want InvalidDurationError", input, err)
		}
	}
}
