package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/config"
	"sort"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Backend selection
// --------------------------------------------------------------------------

// Backend names the slot store a command operates on
type Backend string

const (
	BackendMemory  Backend = "memory"  // in-memory maple engine, lost on exit
	BackendLevelDB Backend = "leveldb" // on-disk leveldb engine in DataDir
	BackendRaft    Backend = "raft"    // dragonboat replicated store over a maple engine
)

// ParseBackend validates a backend name
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(s)); b {
	case BackendMemory, BackendLevelDB, BackendRaft:
		return b, nil
	default:
		return "", fmt.Errorf("invalid backend: %s. must be one of memory, leveldb, raft", s)
	}
}

// --------------------------------------------------------------------------
// helper functions for to interface with Dragonboat
// --------------------------------------------------------------------------

// Dragonboat uses RTT (Round Trip Time) to determine the timing of elections and heartbeats.
// These default values are selected according to the RAFT Paper
const (
	electionRTTFactor  = 10
	heartbeatRTTFactor = 1
)

// ToDragonboatConfig converts the Config to a Dragonboat Config
func (c *Config) ToDragonboatConfig() config.Config {
	return config.Config{
		ReplicaID:          c.Raft.ReplicaID,
		ShardID:            c.Raft.ShardID,
		ElectionRTT:        electionRTTFactor,
		HeartbeatRTT:       heartbeatRTTFactor,
		CheckQuorum:        true,
		SnapshotEntries:    c.Raft.SnapshotEntries,
		CompactionOverhead: c.Raft.CompactionOverhead,
		MaxInMemLogSize:    0,
	}
}

// ToNodeHostConfig creates a NodeHostConfig for Dragonboat
func (c *Config) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.Raft.RTTMillisecond,
		RaftAddress:    c.Raft.ClusterMembers[c.Raft.ReplicaID],
	}
}

// --------------------------------------------------------------------------
// Configuration struct
// --------------------------------------------------------------------------

// RaftConfig holds the parameters of the replicated backend
type RaftConfig struct {
	ShardID            uint64
	ReplicaID          uint64
	ClusterMembers     map[uint64]string
	RTTMillisecond     uint64
	SnapshotEntries    uint64
	CompactionOverhead uint64
	TimeoutSecond      int64
}

// Config holds everything a command needs to open a slot store
type Config struct {
	Backend  Backend
	DataDir  string
	Codec    string
	LogLevel string
	Raft     RaftConfig
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Storage")
	addField("Backend", string(c.Backend))
	addField("Data Directory", c.DataDir)
	addField("Codec", c.Codec)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	if c.Backend == BackendRaft {
		addSection("Node Identity")
		addField("RAFT Address", c.Raft.ClusterMembers[c.Raft.ReplicaID])
		addField("Node ID", strconv.FormatUint(c.Raft.ReplicaID, 10))
		addField("Shard ID", strconv.FormatUint(c.Raft.ShardID, 10))

		addSection("RAFT Parameters")
		addField("Round Trip Time (ms)", fmt.Sprintf("%d ms", c.Raft.RTTMillisecond))
		addField("Election RTT (ms)", fmt.Sprintf("%d", c.Raft.RTTMillisecond*electionRTTFactor))
		addField("Heartbeat RTT (ms)", fmt.Sprintf("%d", c.Raft.RTTMillisecond*heartbeatRTTFactor))
		addField("Snapshot Entries", fmt.Sprintf("%d", c.Raft.SnapshotEntries))
		addField("Compaction Overhead", fmt.Sprintf("%d", c.Raft.CompactionOverhead))
		addField("Timeout", fmt.Sprintf("%d sec", c.Raft.TimeoutSecond))

		addSection("Cluster")
		sb.WriteString("  Initial Members:\n")

		// Sort keys for consistent output
		var keys []uint64
		for k := range c.Raft.ClusterMembers {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("    Node %d: %s\n", k, c.Raft.ClusterMembers[k]))
		}
	}
	return sb.String()
}
