// Package output renders query results in text, JSON, CSV, and Markdown
// formats.
package output
