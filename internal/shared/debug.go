package shared

import (
	"fmt"
	"os"
)

// DebugPrint prints a debug line when debug mode is enabled
func DebugPrint(debug bool, format string, args ...interface{}) {
	if debug {
		fmt.Printf("DEBUG: "+format+"\n", args...)
	}
}

// IsDebugMode reports whether debug output was requested via the environment
func IsDebugMode() bool {
	return os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"
}
