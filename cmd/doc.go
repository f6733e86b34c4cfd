// Package cmd implements the command-line interface kvl. It provides raw slot
// access on the configured store and operates the sample ledger through the
// storage layer.
//
// The package is organized into several subpackages:
//
//   - slot: Commands for raw slot operations (get, set, clear, has, info)
//   - layout: Prints the portable layout document of the sample ledger
//   - ledger: Commands that create, read and modify the sample ledger
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See kvl -help for a list of all commands.
package cmd
