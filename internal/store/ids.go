package store

import "github.com/google/uuid"

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Run order comes from seq; the embedded timestamp only makes IDs readable
// in the order they were created.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. Panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
