// Package cmd implements the command-line interface for the tabstore
// persistence layer. It provides a hierarchical command structure with
// operations for working with a local key-value store.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value operations (get, set, delete, cleanup, etc.)
//   - backup: Commands for exporting and importing the raw storage contents
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See tabstore -help for a list of all commands.
package cmd
