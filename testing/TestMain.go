// Package testing prepares the process environment for package tests that
// import it for side effects: binaries stay in test mode and token signing
// has a secret.
package testing

import (
	"os"
	stdtesting "testing"
)

var defaults = map[string]string{
	"BREWOPS_TEST_MODE": "1",
	"JWT_SECRET":        "brewops-test-secret",
	"CURRENCY_CODE":     "LKR",
}

func init() {
	applyDefaults()
}

func applyDefaults() {
	for key, value := range defaults {
		if key == "BREWOPS_TEST_MODE" {
			_ = os.Setenv(key, value)
			continue
		}
		if _, ok := os.LookupEnv(key); !ok {
			_ = os.Setenv(key, value)
		}
	}
}

// TestMain runs m with the test defaults applied.
func TestMain(m *stdtesting.M) {
	applyDefaults()
	os.Exit(m.Run())
}
