// Package common provides the configuration and logging utilities shared by the
// slot stores and the kvl command line tool.
//
// Key Components:
//
//   - Config: the settings of one kvl invocation (backend, data directory, codec,
//     log level and the RAFT parameters of the replicated backend). Provides
//     utilities for converting to Dragonboat-specific configurations.
//
//   - Logger: custom logging implementation that integrates with Dragonboat's
//     logging system. Every package obtains its logger through
//     logger.GetLogger(name) and InitLoggers sets the format and level for all of
//     them at once.
package common
