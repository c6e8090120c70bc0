// Sift is a CLI for running a restricted SQL SELECT dialect over JSON
// tables declared in a YAML catalog.
//
// Queries are parsed into a logical plan, rewritten to use hash indexes
// where equality filters allow, and executed by an in-memory interpreter
// that reports how many rows each query touched.
//
// Usage:
//
//	sift query --sql "SELECT * FROM Album WHERE ArtistId = 82"
//	sift query --explain --sql "SELECT * FROM Album WHERE AlbumId = 6"
//	sift tables                   # list catalog tables
//	sift config init              # write a default config file
//	sift cache clear              # drop cached query results
//
// Without a configured catalog, sift queries a built-in demo dataset.
package main
