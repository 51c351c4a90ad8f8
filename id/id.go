// Package id defines TypeID-based identity types for token records.
//
// Every notification the engine emits carries an event ID, and every write
// call carries an operation ID shared by all events it produced (a fee leg
// and its net leg have different event IDs but the same operation ID).
// IDs are UUIDv7-based, so they sort by creation time.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record type encoded in a TypeID.
type Prefix string

const (
	PrefixEvent     Prefix = "evt" // Emitted notification
	PrefixOperation Prefix = "op"  // Write call that produced one or more events
)

// ID is a prefix-qualified identifier such as "evt_01h2xcejqtf2nbrexx3vqjhp41".
// The zero value is Nil and encodes as an empty string.
//
//nolint:recvcheck // Value receivers for reads, pointer receiver for UnmarshalText.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// EventID identifies an emitted event (prefix: "evt").
type EventID = ID

// OperationID identifies a write call (prefix: "op").
type OperationID = ID

// New generates an ID with the given prefix. It panics on an invalid prefix.
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return ID{inner: tid, valid: true}
}

// NewEventID generates a new event ID.
func NewEventID() ID { return New(PrefixEvent) }

// NewOperationID generates a new operation ID.
func NewOperationID() ID { return New(PrefixOperation) }

// Parse parses any TypeID string.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{inner: tid, valid: true}, nil
}

func parseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}
	return parsed, nil
}

// ParseEventID parses s and requires the "evt" prefix.
func ParseEventID(s string) (ID, error) { return parseWithPrefix(s, PrefixEvent) }

// ParseOperationID parses s and requires the "op" prefix.
func ParseOperationID(s string) (ID, error) { return parseWithPrefix(s, PrefixOperation) }

func (i ID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// Prefix returns the prefix, empty for Nil.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}
	return Prefix(i.inner.Prefix())
}

// IsNil reports whether i is the zero value.
func (i ID) IsNil() bool { return !i.valid }

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields Nil.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
