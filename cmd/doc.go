// Package cmd implements the command-line interface for the segstore
// storage server. It provides a hierarchical command structure with
// operations for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for storage operations (put, get, del, range, rdel)
//   - serve: Commands for starting and configuring the storage server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See segstore -help for a list of all commands.
package cmd
