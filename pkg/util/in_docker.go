package util

import "os"

// IsRunningInDocker reports whether the process runs inside a container.
// Used to decide where the sqlite database file should live.
func IsRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if _, err := os.Stat("/run/.containerenv"); err == nil {
		return true
	}

	return false
}
