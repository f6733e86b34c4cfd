// Package internal provides the command and query structures of the dstore
// package. It defines the format used to hand slot operations from the store
// client to the replicated state machine.
//
// This package is intended for internal use by the dstore implementation and should
// not be imported directly by external code.
//
//   - Command System: write operations (Set, Clear) that modify the state of the
//     slot database. Commands are serialized and proposed to the RAFT shard, then
//     applied on every replica.
//
//   - Query System: read operations (Get, Has, GetDBInfo). Queries are executed
//     locally on the state machine and therefore do not require serialization.
//
// Command Format:
//
//	- 1 byte: Command type (Set, Clear)
//	- 32 bytes: slot key
//	- M bytes: Value data (optional, only present for Set)
//
// The types in this package are not thread-safe. The RAFT protocol applies commands
// sequentially on the state machine.
package internal
