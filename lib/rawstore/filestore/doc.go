// Package filestore provides a raw store backed by a single JSON file.
//
// The file holds a flat string-to-string object. Writes replace the whole
// file via a temp-file rename, and every read goes back to disk, so multiple
// processes sharing the file observe each other's writes. This is the
// cross-process analog of an origin-shared browser store: combined with the
// bus watcher it delivers change signals between processes the way storage
// events travel between tabs.
package filestore
