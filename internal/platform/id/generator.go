package id

import "github.com/google/uuid"

// Generator creates invocation identifiers for pipeline runs.
type Generator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Static returns the same id every time, for tests and replays.
type Static string

func (s Static) NewID() string {
	return string(s)
}
