// Package cache provides a TTL'd file-based cache for query results,
// keyed by catalog fingerprint and query text.
package cache
