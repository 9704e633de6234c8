// Package collection loads every article under a content directory and runs
// the checks that need the whole set at once: slug uniqueness and the tag
// index.
//
// Files are discovered by extension and loaded concurrently by a worker pool
// limited to GOMAXPROCS. Results are always ordered by path so reports are
// stable between runs.
package collection
