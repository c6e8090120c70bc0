// Package config loads and merges sift configuration from defaults, the
// config file, SIFT_* environment variables, and CLI flag overrides.
package config
