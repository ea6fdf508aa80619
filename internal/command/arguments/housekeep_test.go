// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package arguments

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseHousekeepLocks(t *testing.T) {
	got, diagnostics := ParseHousekeepLocks([]string{
		"-recursive",
		"-older-than", "2h",
		"-dry-run",
		"/tmp/locks",
	})
	if diagnostics.HasErrors() {
		t.Fatalf("unexpected diags: %s", diagnostics.Err())
	}

	want := &Housekeep{
		Dir:          "/tmp/locks",
		Recursive:    true,
		OlderThan:    2 * time.Hour,
		HasOlderThan: true,
		DryRun:       true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrong result\n%s", diff)
	}
}

func TestParseHousekeepLocksDefaults(t *testing.T) {
	got, diagnostics := ParseHousekeepLocks(nil)
	if diagnostics.HasErrors() {
		t.Fatalf("unexpected diags: %s", diagnostics.Err())
	}
	if got.Dir != "" {
		t.Errorf("unexpected default dir %q; the command resolves the cache location", got.Dir)
	}
}

func TestParseHousekeepBackups(t *testing.T) {
	got, diagnostics := ParseHousekeepBackups([]string{
		"-suffix", ".bak",
		"-keep-newest", "3",
		"/tmp/backups",
	})
	if diagnostics.HasErrors() {
		t.Fatalf("unexpected diags: %s", diagnostics.Err())
	}

	if got.Suffix != ".bak" {
		t.Errorf("wrong suffix %q", got.Suffix)
	}
	if !got.HasKeepNewest || got.KeepNewest != 3 {
		t.Errorf("wrong keep-newest %v/%d", got.HasKeepNewest, got.KeepNewest)
	}
	if got.Dir != "/tmp/backups" {
		t.Errorf("wrong dir %q", got.Dir)
	}
}

func TestParseHousekeepBackupsDefaultSuffix(t *testing.T) {
	got, diagnostics := ParseHousekeepBackups(nil)
	if diagnostics.HasErrors() {
		t.Fatalf("unexpected diags: %s", diagnostics.Err())
	}
	if got.Suffix != ".mutx.backup" {
		t.Errorf("wrong default suffix %q; want .mutx.backup", got.Suffix)
	}
	if got.HasKeepNewest {
		t.Errorf("keep-newest unexpectedly set by default")
	}
}

func TestParseHousekeepBackupsInvalidSuffix(t *testing.T) {
	for _, suffix := range []string{"", "."} {
		_, diagnostics := ParseHousekeepBackups([]string{"-suffix", suffix, "/tmp"})
		if !diagnostics.HasErrors() {
			t.Errorf("suffix %q accepted; want rejection", suffix)
		}
	}
}

func TestParseHousekeepAll(t *testing.T) {
	t.Run("single dir covers both", func(t *testing.T) {
		got, diagnostics := ParseHousekeepAll([]string{"/tmp/both"})
		if diagnostics.HasErrors() {
			t.Fatalf("unexpected diags: %s", diagnostics.Err())
		}
		if got.LocksDir != "/tmp/both" || got.BackupsDir != "/tmp/both" {
			t.Errorf("single dir not applied to both categories: %#v", got)
		}
	})

	t.Run("split dirs", func(t *testing.T) {
		got, diagnostics := ParseHousekeepAll([]string{"-locks-dir", "/a", "-backups-dir", "/b"})
		if diagnostics.HasErrors() {
			t.Fatalf("unexpected diags: %s", diagnostics.Err())
		}
		if got.LocksDir != "/a" || got.BackupsDir != "/b" {
			t.Errorf("split dirs not applied: %#v", got)
		}
	})

	invalid := map[string][]string{
		"nothing given":    {},
		"mixed forms":      {"-locks-dir", "/a", "/tmp/both"},
		"only locks-dir":   {"-locks-dir", "/a"},
		"only backups-dir": {"-backups-dir", "/b"},
	}
	for name, args := range invalid {
		t.Run(name, func(t *testing.T) {
			_, diagnostics := ParseHousekeepAll(args)
			if !diagnostics.HasErrors() {
				t.Fatalf("accepted; want rejection")
			}
		})
	}
}

func TestParseHousekeepInvalidDuration(t *testing.T) {
	_, diagnostics := ParseHousekeepLocks([]string{"-older-than", "banana", "/tmp"})
	if !diagnostics.HasErrors() {
		t.Fatalf("invalid duration accepted")
	}
}
