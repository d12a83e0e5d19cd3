package savegame

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, rec Record) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO save_slots (account_id, slot, schema_version, player_name, player_level, floor, data, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (account_id, slot) DO UPDATE
SET schema_version = EXCLUDED.schema_version,
    player_name = EXCLUDED.player_name,
    player_level = EXCLUDED.player_level,
    floor = EXCLUDED.floor,
    data = EXCLUDED.data,
    updated_at = EXCLUDED.updated_at
`, rec.AccountID, rec.Name, rec.SchemaVersion, rec.PlayerName, rec.PlayerLevel, rec.Floor, rec.Data, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert save slot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, accountID uuid.UUID, slot string) (Record, error) {
	var rec Record
	err := s.db.QueryRow(ctx, `
SELECT account_id, slot, schema_version, player_name, player_level, floor, data, updated_at
FROM save_slots WHERE account_id = $1 AND slot = $2
`, accountID, slot).Scan(&rec.AccountID, &rec.Name, &rec.SchemaVersion, &rec.PlayerName, &rec.PlayerLevel, &rec.Floor, &rec.Data, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("query save slot: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, accountID uuid.UUID) ([]Slot, error) {
	rows, err := s.db.Query(ctx, `
SELECT account_id, slot, schema_version, player_name, player_level, floor, updated_at
FROM save_slots WHERE account_id = $1 ORDER BY updated_at DESC
`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query save slots: %w", err)
	}
	defer rows.Close()

	slots := make([]Slot, 0)
	for rows.Next() {
		var sl Slot
		if err := rows.Scan(&sl.AccountID, &sl.Name, &sl.SchemaVersion, &sl.PlayerName, &sl.PlayerLevel, &sl.Floor, &sl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan save slot: %w", err)
		}
		slots = append(slots, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate save slots: %w", err)
	}
	return slots, nil
}

func (s *PostgresStore) Delete(ctx context.Context, accountID uuid.UUID, slot string) error {
	res, err := s.db.Exec(ctx, `DELETE FROM save_slots WHERE account_id = $1 AND slot = $2`, accountID, slot)
	if err != nil {
		return fmt.Errorf("delete save slot: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close is a no-op; the pool belongs to the caller.
func (s *PostgresStore) Close() error { return nil }
