package store

import "github.com/google/uuid"

// SessionIDGenerator supplies the id of each new Session.
type SessionIDGenerator interface {
	Generate() uuid.UUID
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids, so log lines
// sort by session start.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7, falling back to a random UUIDv4 if the
// clock cannot be read.
func (UUIDv7Generator) Generate() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// WithSessionIDs replaces the session id generator. Tests use it to get
// predictable query_id log fields.
func WithSessionIDs(gen SessionIDGenerator) Option {
	return func(s *Store) {
		s.ids = gen
	}
}
