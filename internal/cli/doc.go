// Package cli implements the sift command surface: query, tables,
// config, cache, and version.
package cli
