// Package testing provides standardised tests and benchmarks for slot database
// engines that satisfy the db.SlotDB interface.
//
// Example usage:
//
//	factory := func() db.SlotDB {
//		return NewMyDatabase()
//	}
//
//	dbtesting.RunSlotDBTests(t, "MyDatabase", factory)
//	dbtesting.RunSlotDBBenchmarks(b, "MyDatabase", factory)
package testing
