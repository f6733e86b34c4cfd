// Package dstore implements a distributed slot store (store.Store) on top of the
// Dragonboat RAFT library.
//
// Every write (Set, Clear) is serialized into an internal.Command and proposed to the
// shard with SyncPropose. Once committed, the SlotStateMachine of every replica
// applies the command to its own db.SlotDB, using the raft log index as write index.
// Reads (Get, Has) go through SyncRead and are therefore linearizable; GetDBInfo uses
// a stale read.
//
// Proposals and reads that fail with dragonboat.ErrSystemBusy are retried a few
// times before an error is returned.
//
// Snapshots are delegated to the Save and Load operations of the slot database.
//
// Usage Example:
//
//	cfg := common.Config{
//		DataDir: "data/node-1",
//		Raft: common.RaftConfig{
//			ShardID:        1,
//			ReplicaID:      1,
//			ClusterMembers: map[uint64]string{1: "localhost:63001"},
//			RTTMillisecond: 100,
//			TimeoutSecond:  5,
//		},
//	}
//	s, err := dstore.StartNode(cfg, func() db.SlotDB { return maple.NewMapleDB(nil) })
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
// If the node host is managed elsewhere, NewDistributedStore wraps an already
// running shard.
package dstore
