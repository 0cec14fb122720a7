// Package guard flips binaries into test mode. Test packages import it for
// its side effect so InTestMode is already true when first consulted.
package guard

import "os"

const testModeEnv = "ODYSSEY_TEST_MODE"

func init() {
	if os.Getenv(testModeEnv) == "" {
		_ = os.Setenv(testModeEnv, "1")
	}
}
