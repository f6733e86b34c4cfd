package dstore

import (
	"fmt"
	"github.com/ValentinKolb/kvlayout/lib/common"
	"github.com/ValentinKolb/kvlayout/lib/store"
	"time"

	"github.com/lni/dragonboat/v4"
)

// StartNode creates a NodeHost from the configuration, joins the shard and waits until
// the shard has a leader. The returned store stops the node host on Close.
func StartNode(cfg common.Config, dbFactory store.DBFactory) (store.Store, error) {
	if len(cfg.Raft.ClusterMembers) == 0 {
		return nil, fmt.Errorf("no cluster members configured")
	}
	if _, ok := cfg.Raft.ClusterMembers[cfg.Raft.ReplicaID]; !ok {
		return nil, fmt.Errorf("no address found for replica ID %d in cluster members", cfg.Raft.ReplicaID)
	}

	nh, err := dragonboat.NewNodeHost(cfg.ToNodeHostConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create node host: %w", err)
	}

	if err := nh.StartConcurrentReplica(cfg.Raft.ClusterMembers, false, CreateStateMachineFactory(dbFactory), cfg.ToDragonboatConfig()); err != nil {
		nh.Close()
		return nil, fmt.Errorf("failed to start shard %d: %w", cfg.Raft.ShardID, err)
	}

	timeout := time.Duration(cfg.Raft.TimeoutSecond) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	deadline := time.Now().Add(timeout)
	for {
		leader, _, valid, err := nh.GetLeaderID(cfg.Raft.ShardID)
		if err == nil && valid {
			log.Infof("shard %d ready, leader is replica %d", cfg.Raft.ShardID, leader)
			break
		}
		if time.Now().After(deadline) {
			nh.Close()
			return nil, fmt.Errorf("shard %d has no leader after %s", cfg.Raft.ShardID, timeout)
		}
		time.Sleep(50 * time.Millisecond)
	}

	return newStore(nh, cfg.Raft.ShardID, timeout, true), nil
}
