// Package cmd implements the command-line interface for sharedbox. It
// provides a hierarchical command structure for inspecting and manipulating
// shared dictionary segments.
//
// The package is organized into several subpackages:
//
//   - dict: Commands for dictionary operations (get, set, load, stats, etc.)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Each invocation is a fresh process, so segment state is carried between
// invocations through snapshot files in the configured data dir.
//
// See sharedbox -help for a list of all commands.
package cmd
