package internal

import (
	"fmt"
	"github.com/ValentinKolb/kvlayout/lib/db"
	"github.com/ValentinKolb/kvlayout/lib/key"
)

// CommandType defines the possible operations for the state machine.
type CommandType uint8

const (
	CommandTSet   CommandType = iota // Insert or overwrite a slot.
	CommandTClear                    // Remove a slot.
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTSet:
		return "Set"
	case CommandTClear:
		return "Clear"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// ToDBFeature converts a CommandType to the corresponding db.Feature.
// This can be used for checking if the database supports a certain operation.
func (ct CommandType) ToDBFeature() (db.Feature, error) {
	switch ct {
	case CommandTSet:
		return db.FeatureSet, nil
	case CommandTClear:
		return db.FeatureDelete, nil
	default:
		return 0, fmt.Errorf("unknown command type %d", ct)
	}
}

// Command represents a command to be executed by the state machine (a single entry in the raft log)
type Command struct {
	Type  CommandType
	Key   key.Key
	Value []byte
}

// headerSize is the size of the fixed part of a serialized command: Type + Key
const headerSize = 1 + key.Size

// SizeBytes returns the exact number of bytes needed to serialize this command
func (command *Command) SizeBytes() int {
	return headerSize + len(command.Value)
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 32 bytes for the slot key,
// N bytes for value data (optional)
func (command *Command) Serialize() []byte {
	result := make([]byte, command.SizeBytes())

	result[0] = byte(command.Type)
	copy(result[1:headerSize], command.Key[:])

	if command.Value != nil {
		copy(result[headerSize:], command.Value)
	}

	return result
}

// Deserialize extracts all Command fields from a byte array.
func (command *Command) Deserialize(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("data too short for command: %d bytes (min %d)", len(data), headerSize)
	}

	command.Type = CommandType(data[0])
	copy(command.Key[:], data[1:headerSize])

	if len(data) > headerSize {
		valueLen := len(data) - headerSize
		// Reuse existing buffer if possible to reduce allocations
		if command.Value == nil || cap(command.Value) < valueLen {
			command.Value = make([]byte, valueLen)
		} else {
			command.Value = command.Value[:valueLen]
		}
		copy(command.Value, data[headerSize:])
	} else {
		command.Value = nil
	}

	return nil
}
