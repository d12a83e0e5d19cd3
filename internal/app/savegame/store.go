package savegame

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "dungeon-server/internal/platform/errors"
)

var ErrNotFound = apperrors.New(apperrors.CodeSaveNotFound, "save slot not found")

// Slot describes a stored save without its payload.
type Slot struct {
	AccountID     uuid.UUID `json:"account_id"`
	Name          string    `json:"slot"`
	SchemaVersion int       `json:"schema_version"`
	PlayerName    string    `json:"player_name"`
	PlayerLevel   int       `json:"player_level"`
	Floor         int       `json:"floor"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Record struct {
	Slot
	Data []byte `json:"data"`
}

// Store persists save documents. Put replaces a slot in a single write: a
// reader sees either the previous document or the new one.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, accountID uuid.UUID, slot string) (Record, error)
	List(ctx context.Context, accountID uuid.UUID) ([]Slot, error)
	Delete(ctx context.Context, accountID uuid.UUID, slot string) error
	Close() error
}
