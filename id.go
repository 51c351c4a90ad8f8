package gametoken

import "github.com/Gametoken-tech/gametoken/id"

// ID is the primary identifier type for events and operations.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// EventID identifies one committed event.
type EventID = id.EventID

// OperationID groups the events of one call.
type OperationID = id.OperationID
