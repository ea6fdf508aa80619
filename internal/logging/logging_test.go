// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package logging

import (
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  hclog.Level
	}{
		{"", hclog.Off},
		{"TRACE", hclog.Trace},
		{"DEBUG", hclog.Debug},
		{"INFO", hclog.Info},
		{"WARN", hclog.Warn},
		{"ERROR", hclog.Error},
		{"banana", hclog.Off},
	}

	for _, test := range tests {
		if got := parseLogLevel(test.input); got != test.want {
			t.Errorf("parseLogLevel(%q) = %v; want %v", test.input, got, test.want)
		}
	}
}

func TestHCLoggerIsStable(t *testing.T) {
	if HCLogger() != HCLogger() {
		t.Error("HCLogger returned different instances")
	}
}
