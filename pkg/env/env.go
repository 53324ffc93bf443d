package env

import "os"

// Get reads an environment variable, falling back when it is unset or empty.
// Config structs go through envconfig; this covers the few knobs read before
// config loads, like the log format.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
