// Package e2e implements end to end testing utilities.
package e2e

import (
	"os"
	"testing"
)

// Env variable with path to manifest of tree exported from real file.
const Env = "TTREE_E2E_MANIFEST"

// Manifest returns path to manifest for end-to-end tests, skipping test
// if not set.
func Manifest(tb testing.TB) string {
	tb.Helper()
	p, ok := os.LookupEnv(Env)
	if !ok || p == "" {
		tb.Skipf("E2E: %s not set", Env)
	}
	if _, err := os.Stat(p); err != nil {
		tb.Fatalf("E2E: %s=%s is invalid: %v", Env, p, err)
	}
	return p
}
