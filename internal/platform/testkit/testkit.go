// Package testkit provides testing helpers
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	perr "predictkit/internal/platform/errors"
)

// MustPanic asserts that fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain asserts that haystack contains needle. Long haystacks are written to a
// temp file so the failure message stays readable
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	if len(haystack) <= 200 {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
	out := filepath.Join(t.TempDir(), "haystack.txt")
	_ = os.WriteFile(out, []byte(haystack), 0o600)
	t.Fatalf("expected output to contain %q\n\nfull output written to %s", needle, out)
}

// MustCode asserts err carries code
func MustCode(t *testing.T, err error, code perr.ErrorCode) {
	t.Helper()
	if !perr.IsCode(err, code) {
		t.Fatalf("want error code %v, got %v (%v)", code, perr.CodeOf(err), err)
	}
}
