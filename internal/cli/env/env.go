// Package env provides helper functions for looking up environment variables
// with support for multiple fallback keys, plus accessors for the variables
// the deepl CLI understands.
package env

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables honored by the CLI, matching the conventions of the
// other DeepL client libraries.
const (
	KeyAuthKey    = "DEEPL_AUTH_KEY"
	KeyServerURL  = "DEEPL_SERVER_URL"
	KeyProxyURL   = "DEEPL_PROXY_URL"
	KeyMaxRetries = "DEEPL_MAX_RETRIES"
	KeyVerbose    = "DEEPL_VERBOSE"
)

// LookupEnv searches for environment variables by the given keys in order.
// It returns the first non-empty trimmed value found and true, or empty
// string and false if no matching non-empty variable is found.
func LookupEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

// LookupEnvInt searches for environment variables by the given keys and
// attempts to parse the value as an integer.
func LookupEnvInt(keys ...string) (int, bool) {
	if value, ok := LookupEnv(keys...); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n, true
		}
	}
	return 0, false
}

// LookupEnvBool interprets the value of the first matching variable as a
// boolean. "true", "1" and "yes" (case-insensitive) are considered true.
func LookupEnvBool(keys ...string) (bool, bool) {
	if value, ok := LookupEnv(keys...); ok {
		v := strings.ToLower(value)
		return v == "true" || v == "1" || v == "yes", true
	}
	return false, false
}

// AuthKey returns the API authentication key from the environment, or empty
// when unset.
func AuthKey() string {
	v, _ := LookupEnv(KeyAuthKey)
	return v
}

// ServerURL returns the API base URL override from the environment.
func ServerURL() string {
	v, _ := LookupEnv(KeyServerURL)
	return v
}

// ProxyURL returns the proxy URL from the environment.
func ProxyURL() string {
	v, _ := LookupEnv(KeyProxyURL)
	return v
}

// MaxRetries returns the retry cap override from the environment.
func MaxRetries() (int, bool) {
	return LookupEnvInt(KeyMaxRetries)
}

// Verbose reports whether debug logging is requested via the environment.
func Verbose() (bool, bool) {
	return LookupEnvBool(KeyVerbose)
}
