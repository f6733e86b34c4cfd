// Package leveldb implements a persistent slot database (db.SlotDB) on top of
// goleveldb.
//
// Every slot is one leveldb record under the key 'S' ‖ slot key. The record value
// starts with the write index (8 bytes, big endian) followed by the raw slot bytes.
// The write index of the database itself is stored in a separate meta record so it
// survives restarts.
//
// Writes with an index lower than the index of the stored record are ignored, which
// makes the engine usable as the state of a replicated state machine in the same way
// as the in-memory maple engine.
//
// Example:
//
//	database, err := leveldb.NewLevelDB(&leveldb.DBOptions{Path: "./data/slots"})
//	if err != nil {
//		return err
//	}
//	defer database.Close()
package leveldb
