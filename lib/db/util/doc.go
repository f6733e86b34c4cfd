// Package util provides utility components for database engines that satisfy the
// db.SlotDB interface.
//
// The package contains:
//   - statistics: a SizeHistogram for tracking value sizes and distribution
//     statistics for shard balance reporting
//   - functions: seed generation and hash functions used for shard selection
package util
