package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ValentinKolb/kvlayout/lib/codec"
	"github.com/ValentinKolb/kvlayout/lib/common"
	"github.com/ValentinKolb/kvlayout/lib/db"
	"github.com/ValentinKolb/kvlayout/lib/db/engines/leveldb"
	"github.com/ValentinKolb/kvlayout/lib/db/engines/maple"
	dbutil "github.com/ValentinKolb/kvlayout/lib/db/util"
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/storage"
	"github.com/ValentinKolb/kvlayout/lib/store"
	"github.com/ValentinKolb/kvlayout/lib/store/dstore"
	"github.com/ValentinKolb/kvlayout/lib/store/lstore"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logger.GetLogger("cli")

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// --------------------------------------------------------------------------
// Flags & configuration
// --------------------------------------------------------------------------

// SetupStoreFlags adds the flags that select and configure the slot store
func SetupStoreFlags(cmd *cobra.Command) {
	key := "backend"
	cmd.PersistentFlags().String(key, string(common.BackendLevelDB), WrapString("The slot store to operate on (memory, leveldb, raft). The memory backend is lost when the command exits"))

	key = "data-dir"
	cmd.PersistentFlags().String(key, "data", WrapString("Directory of the leveldb database and of the raft logs and snapshots"))

	key = "codec"
	cmd.PersistentFlags().String(key, codec.Default, WrapString(fmt.Sprintf("Encoding of packed values (%s)", strings.Join(codec.Names(), ", "))))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "shard"
	cmd.PersistentFlags().Uint64(key, 100, WrapString("(raft) ID of the shard holding the slots"))

	key = "replica-id"
	cmd.PersistentFlags().String(key, "", WrapString("(raft) ReplicaID is the unique identifier of this node (e.g. 'node-1')"))

	key = "cluster-members"
	cmd.PersistentFlags().String(key, "", WrapString("(raft) ClusterMembers is a comma-separated list of node addresses in the format 'node-1=localhost:63001,node-2=localhost:63002,...'"))

	key = "rtt-millisecond"
	cmd.PersistentFlags().Uint64(key, 100, WrapString("(raft) RTTMillisecond is the average Round Trip Time (RTT) in milliseconds between two nodes"))

	key = "snapshot-entries"
	cmd.PersistentFlags().Uint64(key, 10, WrapString("(raft) SnapshotEntries defines after how many applied log entries the state machine is snapshotted"))

	key = "compaction-overhead"
	cmd.PersistentFlags().Uint64(key, 5, WrapString("(raft) CompactionOverhead defines the number of snapshots that are retained"))

	key = "timeout"
	cmd.PersistentFlags().Int64(key, 5, WrapString("(raft) Timeout in seconds for proposals and reads"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("kvl")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetConfig reads the store configuration from viper
func GetConfig() (common.Config, error) {
	backend, err := common.ParseBackend(viper.GetString("backend"))
	if err != nil {
		return common.Config{}, err
	}

	cfg := common.Config{
		Backend:  backend,
		DataDir:  viper.GetString("data-dir"),
		Codec:    viper.GetString("codec"),
		LogLevel: viper.GetString("log-level"),
		Raft: common.RaftConfig{
			ShardID:            viper.GetUint64("shard"),
			RTTMillisecond:     viper.GetUint64("rtt-millisecond"),
			SnapshotEntries:    viper.GetUint64("snapshot-entries"),
			CompactionOverhead: viper.GetUint64("compaction-overhead"),
			TimeoutSecond:      viper.GetInt64("timeout"),
		},
	}

	if backend != common.BackendRaft {
		return cfg, nil
	}

	id := viper.GetString("replica-id")
	if id == "" {
		return cfg, fmt.Errorf("replica-id is required for the raft backend")
	}
	cfg.Raft.ReplicaID = dbutil.HashString(id, 0)

	members, err := ParseClusterMembers(viper.GetString("cluster-members"))
	if err != nil {
		return cfg, err
	}
	cfg.Raft.ClusterMembers = members

	if _, ok := members[cfg.Raft.ReplicaID]; !ok {
		return cfg, fmt.Errorf("no address found for replica ID %s in cluster members", id)
	}
	return cfg, nil
}

// ParseClusterMembers parses 'id=address' pairs. The ids are hashed to replica IDs.
func ParseClusterMembers(s string) (map[uint64]string, error) {
	if s == "" {
		return nil, fmt.Errorf("cluster-members is required for the raft backend")
	}
	members := make(map[uint64]string)
	for _, member := range strings.Split(s, ",") {
		parts := strings.Split(member, "=")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid cluster member format: %s (expected ID=address)", member)
		}
		members[dbutil.HashString(strings.TrimSpace(parts[0]), 0)] = strings.TrimSpace(parts[1])
	}
	return members, nil
}

// --------------------------------------------------------------------------
// Store access
// --------------------------------------------------------------------------

// OpenStore opens the slot store selected by the configuration
func OpenStore(cfg common.Config) (store.Store, error) {
	log.Debugf("opening store: %s", cfg.String())

	switch cfg.Backend {
	case common.BackendMemory:
		return lstore.NewLocalStore(func() db.SlotDB { return maple.NewMapleDB(nil) }), nil
	case common.BackendLevelDB:
		database, err := leveldb.NewLevelDB(&leveldb.DBOptions{Path: cfg.DataDir})
		if err != nil {
			return nil, err
		}
		return lstore.NewLocalStore(func() db.SlotDB { return database }), nil
	case common.BackendRaft:
		return dstore.StartNode(cfg, func() db.SlotDB { return maple.NewMapleDB(nil) })
	default:
		return nil, fmt.Errorf("invalid backend %s", cfg.Backend)
	}
}

// WithStore opens the configured store, runs fn and closes the store again
func WithStore(fn func(s store.Store) error) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	s, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Errorf("failed to close store: %v", err)
		}
	}()
	return fn(s)
}

// WithEnv is like WithStore but hands out a storage environment using the configured codec
func WithEnv(fn func(env *storage.Env) error) error {
	c, err := codec.ByName(viper.GetString("codec"))
	if err != nil {
		return err
	}
	return WithStore(func(s store.Store) error {
		return fn(storage.NewEnv(s, c))
	})
}

// ParseKey parses a slot key given as hex (0x...) or as a decimal number
func ParseKey(s string) (key.Key, error) {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return key.FromUint64(n), nil
	}
	return key.Parse(s)
}
