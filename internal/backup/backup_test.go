// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package backup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCreatePlain(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")
	if err := os.WriteFile(target, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Create(target, &Spec{Suffix: ".mutx.backup"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	want := filepath.Join(dir, "config.json.mutx.backup")
	if got != want {
		t.Fatalf("wrong backup path %q; want %q", got, want)
	}

	content, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "{}" {
		t.Errorf("backup contents %q; want %q", content, "{}")
	}

	// No .tmp staging file may remain.
	if _, err := os.Stat(want + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("staging file left behind next to %s", want)
	}
}

func TestCreateTimestamped(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(target, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Create(target, &Spec{Suffix: ".mutx.backup", Timestamp: true})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	name := filepath.Base(got)
	if !strings.HasPrefix(name, "data.txt.") || !strings.HasSuffix(name, ".mutx.backup") {
		t.Fatalf("backup name %q does not match the grammar", name)
	}

	// The segment between base and suffix must be a strictly-valid
	// timestamp: 8 digits, underscore, 6 digits.
	seg := strings.TrimSuffix(strings.TrimPrefix(name, "data.txt."), ".mutx.backup")
	if !ValidTimestamp(seg) {
		t.Errorf("timestamp segment %q does not satisfy the grammar", seg)
	}

	// And the parser must round-trip it.
	base, timestamped, ok := ParseName(name, ".mutx.backup")
	if !ok || !timestamped || base != "data.txt" {
		t.Errorf("ParseName(%q) = (%q, %v, %v); want (data.txt, true, true)", name, base, timestamped, ok)
	}
}

func TestCreateMissingTargetIsNoop(t *testing.T) {
	dir := t.TempDir()

	got, err := Create(filepath.Join(dir, "absent.txt"), &Spec{Suffix: ".bak"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != "" {
		t.Fatalf("backup %q created for a missing target", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("files appeared in the directory: %v", entries)
	}
}

func TestCreateBackupDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "x.txt")
	if err := os.WriteFile(target, []byte("OLD"), 0644); err != nil {
		t.Fatal(err)
	}

	backupDir := filepath.Join(dir, "backups")
	if err := os.Mkdir(backupDir, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := Create(target, &Spec{Suffix: ".bak", Dir: backupDir})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := filepath.Join(backupDir, "x.txt.bak")
	if got != want {
		t.Fatalf("wrong backup path %q; want %q", got, want)
	}
}

func TestCreateBackupDirMissing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "x.txt")
	if err := os.WriteFile(target, []byte("OLD"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Create(target, &Spec{Suffix: ".bak", Dir: filepath.Join(dir, "nope")})
	var dirErr *DirError
	if !errors.As(err, &dirErr) {
		t.Fatalf("wrong error %#v; want DirError", err)
	}
}

func TestValidateSuffix(t *testing.T) {
	for _, suffix := range []string{"", "."} {
		err := ValidateSuffix(suffix)
		var invalidErr *InvalidSuffixError
		if !errors.As(err, &invalidErr) {
			t.Errorf("suffix %q: wrong error %#v; want InvalidSuffixError", suffix, err)
		}
	}

	for _, suffix := range []string{".bak", ".mutx.backup", "~", "-old"} {
		if err := ValidateSuffix(suffix); err != nil {
			t.Errorf("suffix %q unexpectedly rejected: %s", suffix, err)
		}
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name, suffix string
		wantBase     string
		wantStamped  bool
		wantOK       bool
	}{
		// The strictness cases are the housekeeper's defense against
		// deleting user files that merely resemble backups.
		{"g.txt.20260125_143000.mutx.backup", ".mutx.backup", "g.txt", true, true},
		{"f.backup", ".mutx.backup", "", false, false},
		{"f.bak", ".mutx.backup", "", false, false},
		{"f.20260125.backup", ".mutx.backup", "", false, false},
		{"x.txt.bak", ".bak", "x.txt", false, true},
		{"x.txt.mutx.backup", ".mutx.backup", "x.txt", false, true},

		// A 15-char tail in the timestamp position must be strictly
		// valid or the whole name is disqualified.
		{"g.txt.2026012a_143000.mutx.backup", ".mutx.backup", "", false, false},
		{"g.txt.20260125-143000.mutx.backup", ".mutx.backup", "", false, false},

		// The suffix alone is not a backup of anything.
		{".mutx.backup", ".mutx.backup", "", false, false},
	}

	for _, test := range tests {
		base, stamped, ok := ParseName(test.name, test.suffix)
		got := []interface{}{base, stamped, ok}
		want := []interface{}{test.wantBase, test.wantStamped, test.wantOK}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ParseName(%q, %q) wrong result\n%s", test.name, test.suffix, diff)
		}
	}
}

func TestValidTimestamp(t *testing.T) {
	valid := []string{"20260125_143000", "19700101_000000"}
	invalid := []string{"", "20260125143000", "20260125-143000", "2026012_1430000", "2026012a_143000", "20260125_14300"}

	for _, s := range valid {
		if !ValidTimestamp(s) {
			t.Errorf("%q rejected; want accepted", s)
		}
	}
	for _, s := range invalid {
		if ValidTimestamp(s) {
			t.Errorf("%q accepted; want rejected", s)
		}
	}
}
