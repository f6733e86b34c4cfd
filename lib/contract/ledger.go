package contract

import (
	"errors"
	"fmt"
	"math"

	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
	"github.com/ValentinKolb/kvlayout/lib/storage"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("contract")

// Ledger status discriminants
const (
	StatusActive uint8 = iota
	StatusPaused
	StatusClosed
)

// NumReserves is the number of reserve slots of a ledger.
const NumReserves = 3

// BalancesPrefix is the hashing prefix of the balances map.
const BalancesPrefix = "kvl ledger balances"

// DefaultRoot is the root key used when none is configured.
const DefaultRoot key.StorageKey = 0x4c454447 // "LEDG"

// slot offsets of the ledger fields, relative to the root
const (
	statusOffset   = 2
	reservesOffset = 5
	configOffset   = 8
)

var (
	// ErrNotActive is returned by operations that need an active ledger.
	ErrNotActive = errors.New("ledger is not active")
	// ErrLimitExceeded is returned when a credit exceeds the configured maximum balance.
	ErrLimitExceeded = errors.New("balance limit exceeded")
)

// --------------------------------------------------------------------------
// Config
// --------------------------------------------------------------------------

// Config holds the tunables of a ledger. It is stored packed and may be missing in
// ledgers created before it existed.
type Config struct {
	FeeBasisPoints uint32 `cbor:"fee" json:"fee"`
	MaxBalance     uint64 `cbor:"max" json:"max"`
}

// Default sets the defaults used when a ledger is allocated.
func (c *Config) Default() error {
	c.FeeBasisPoints = 30
	c.MaxBalance = math.MaxUint32
	return nil
}

// Initialize sets the defaults used when the config is read but missing.
func (c *Config) Initialize() error {
	return c.Default()
}

// --------------------------------------------------------------------------
// Ledger
// --------------------------------------------------------------------------

// Ledger is a small contract state that uses every storage building block:
//
//	root+0      owner          Value[string]
//	root+1      total supply   Value[uint64]
//	root+2..4   status         Enum: Active | Paused{reason} | Closed{at, by}
//	root+5..7   reserves       Array of 3 Value[uint64]
//	root+8      config         Upgradable Value[Config]
//	root+9      balances       HashMap[string, uint64]
type Ledger struct {
	Owner       storage.Value[string]
	TotalSupply storage.Value[uint64]
	Status      *storage.Enum
	Reserves    *storage.Array[*storage.Value[uint64]]
	Config      *storage.Upgradable[*storage.Value[Config]]
	Balances    *storage.HashMap[string, uint64]

	pauseReason storage.Value[string]
	closedAt    storage.Value[uint64]
	closedBy    storage.Value[string]

	fields *storage.Struct
}

// NewLedger creates an empty ledger. Its config is treated as not initialized, so
// pulling a ledger without a stored config allocates the default one.
func NewLedger() *Ledger {
	l := &Ledger{
		Reserves: storage.NewArray(NumReserves, func() *storage.Value[uint64] { return &storage.Value[uint64]{} }),
		Config:   storage.NewUpgradable(&storage.Value[Config]{}, storage.NotInitialized),
		Balances: storage.NewHashMap[string, uint64](
			layout.NewHashingStrategy(layout.Blake2x256, []byte(BalancesPrefix), nil),
		),
	}
	l.Status = storage.NewEnum(
		storage.NewStruct(),
		storage.NewStruct(storage.Named("reason", &l.pauseReason)),
		storage.NewStruct(storage.Named("at", &l.closedAt), storage.Named("by", &l.closedBy)),
	)
	l.fields = storage.NewStruct(
		storage.Named("owner", &l.Owner),
		storage.Named("total_supply", &l.TotalSupply),
		storage.Named("status", l.Status),
		storage.Named("reserves", l.Reserves),
		storage.Named("config", l.Config),
		storage.Named("balances", l.Balances),
	)
	return l
}

func (l *Ledger) Footprint() uint64         { return l.fields.Footprint() }
func (l *Ledger) RequiresDeepCleanUp() bool { return l.fields.RequiresDeepCleanUp() }

func (l *Ledger) PullSpread(env *storage.Env, ptr *key.Ptr) error {
	return l.fields.PullSpread(env, ptr)
}

func (l *Ledger) PushSpread(env *storage.Env, ptr *key.Ptr) error {
	return l.fields.PushSpread(env, ptr)
}

func (l *Ledger) ClearSpread(env *storage.Env, ptr *key.Ptr) error {
	return l.fields.ClearSpread(env, ptr)
}

func (l *Ledger) AllocateSpread(env *storage.Env, ptr *key.Ptr) error {
	return l.fields.AllocateSpread(env, ptr)
}

func (l *Ledger) Layout(ptr *key.Ptr) layout.Layout {
	return l.fields.Layout(ptr)
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Create allocates a ledger owned by owner and writes it at root.
func Create(env *storage.Env, root key.Key, owner string) (*Ledger, error) {
	l := NewLedger()
	if err := storage.AllocateSpreadRoot(env, root, l); err != nil {
		return nil, err
	}
	l.Owner.V = owner
	if err := l.Save(env, root); err != nil {
		return nil, err
	}
	log.Infof("created ledger at %s for %s", root, owner)
	return l, nil
}

// Load reads the ledger stored at root.
func Load(env *storage.Env, root key.Key) (*Ledger, error) {
	l := NewLedger()
	if err := storage.PullSpreadRoot(env, root, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Save writes the ledger at root.
func (l *Ledger) Save(env *storage.Env, root key.Key) error {
	return storage.PushSpreadRoot(env, root, l)
}

// Delete removes the ledger stored at root including all balances.
func (l *Ledger) Delete(env *storage.Env, root key.Key) error {
	return storage.ClearSpreadRoot(env, root, l)
}

// ConfigKey returns the slot holding the packed config of the ledger at root.
func ConfigKey(root key.Key) key.Key {
	return root.Add(configOffset)
}

// LoadConfig reads the config of the ledger at root, falling back to the defaults if
// it was never written.
func LoadConfig(env *storage.Env, root key.Key) (Config, error) {
	return storage.PullOrInit[Config](env, ConfigKey(root))
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// StatusName returns the name of the current status.
func (l *Ledger) StatusName() string {
	switch l.Status.Discriminant() {
	case StatusActive:
		return "active"
	case StatusPaused:
		return "paused"
	case StatusClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", l.Status.Discriminant())
	}
}

// PauseReason returns the reason of a paused ledger.
func (l *Ledger) PauseReason() string {
	return l.pauseReason.V
}

// ClosedBy returns when and by whom a closed ledger was closed.
func (l *Ledger) ClosedBy() (uint64, string) {
	return l.closedAt.V, l.closedBy.V
}

// Credit adds amount to the balance of account and to the total supply. The balance
// is written immediately, the total supply on the next Save.
func (l *Ledger) Credit(account string, amount uint64) (uint64, error) {
	if l.Status.Discriminant() != StatusActive {
		return 0, ErrNotActive
	}
	balance, _, err := l.Balances.Get(account)
	if err != nil {
		return 0, err
	}
	if amount > math.MaxUint64-balance || balance+amount > l.Config.Inner.V.MaxBalance {
		return 0, fmt.Errorf("%w: %s would hold more than %d", ErrLimitExceeded, account, l.Config.Inner.V.MaxBalance)
	}
	balance += amount
	if err := l.Balances.Insert(account, balance); err != nil {
		return 0, err
	}
	l.TotalSupply.V += amount
	return balance, nil
}

// Pause pauses an active ledger.
func (l *Ledger) Pause(reason string) error {
	if l.Status.Discriminant() != StatusActive {
		return ErrNotActive
	}
	l.pauseReason.V = reason
	return l.Status.Set(StatusPaused)
}

// Resume reactivates a paused ledger.
func (l *Ledger) Resume() error {
	if l.Status.Discriminant() != StatusPaused {
		return fmt.Errorf("ledger is %s, not paused", l.StatusName())
	}
	l.pauseReason.V = ""
	return l.Status.Set(StatusActive)
}

// Flip toggles between active and paused.
func (l *Ledger) Flip(reason string) error {
	if l.Status.Discriminant() == StatusPaused {
		return l.Resume()
	}
	return l.Pause(reason)
}

// Close closes the ledger for good.
func (l *Ledger) Close(at uint64, by string) error {
	if l.Status.Discriminant() == StatusClosed {
		return errors.New("ledger is already closed")
	}
	l.closedAt.V = at
	l.closedBy.V = by
	return l.Status.Set(StatusClosed)
}

// SetReserve sets reserve slot i.
func (l *Ledger) SetReserve(i int, amount uint64) error {
	if i < 0 || i >= l.Reserves.Len() {
		return fmt.Errorf("reserve %d out of range [0, %d)", i, l.Reserves.Len())
	}
	l.Reserves.At(i).V = amount
	return nil
}

// ReserveValues returns the reserve amounts.
func (l *Ledger) ReserveValues() []uint64 {
	out := make([]uint64, l.Reserves.Len())
	for i := range out {
		out[i] = l.Reserves.At(i).V
	}
	return out
}
