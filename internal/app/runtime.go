package app

import (
	"os"
	"strconv"
	"sync"
)

const testModeEnv = "BREWOPS_TEST_MODE"

var (
	testModeMu  sync.RWMutex
	testModeSet bool
	testMode    bool
)

func readTestMode() bool {
	raw, ok := os.LookupEnv(testModeEnv)
	if !ok {
		return false
	}
	on, err := strconv.ParseBool(raw)
	return err == nil && on
}

// InTestMode reports whether binaries should skip connecting to Postgres,
// Redis and the network. It is set by the shared testing package.
func InTestMode() bool {
	testModeMu.RLock()
	if testModeSet {
		defer testModeMu.RUnlock()
		return testMode
	}
	testModeMu.RUnlock()
	RefreshTestMode()
	return InTestMode()
}

// RefreshTestMode re-reads BREWOPS_TEST_MODE.
func RefreshTestMode() {
	testModeMu.Lock()
	defer testModeMu.Unlock()
	testMode = readTestMode()
	testModeSet = true
}
