// Package contract contains Ledger, a sample contract storage that is laid out with
// the storage building blocks. It backs the ledger and layout commands of the CLI
// and serves as an end to end example of spread persistence.
package contract
