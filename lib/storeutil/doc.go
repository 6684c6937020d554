// Package storeutil provides supporting utilities around a storage
// manager: an availability probe, JSON export/import of raw contents, and a
// background sweeper that periodically purges expired records.
package storeutil
