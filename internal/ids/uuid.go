package ids

import "github.com/google/uuid"

// UUIDGenerator produces random (version 4) UUID strings.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

// Generate returns a new globally unique identifier.
func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}
