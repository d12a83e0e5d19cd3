package savegame

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"dungeon-server/internal/platform/migrate"
	"dungeon-server/migrations"
)

// SQLiteStore keeps every slot in one local database file.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.UpSQL(ctx, db, migrations.SQLite()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO save_slots (account_id, slot, schema_version, player_name, player_level, floor, data, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (account_id, slot) DO UPDATE
SET schema_version = excluded.schema_version,
    player_name = excluded.player_name,
    player_level = excluded.player_level,
    floor = excluded.floor,
    data = excluded.data,
    updated_at = excluded.updated_at
`, rec.AccountID.String(), rec.Name, rec.SchemaVersion, rec.PlayerName, rec.PlayerLevel, rec.Floor, rec.Data, rec.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert save slot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, accountID uuid.UUID, slot string) (Record, error) {
	var (
		rec     Record
		account string
		updated int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT account_id, slot, schema_version, player_name, player_level, floor, data, updated_at
FROM save_slots WHERE account_id = ? AND slot = ?
`, accountID.String(), slot).Scan(&account, &rec.Name, &rec.SchemaVersion, &rec.PlayerName, &rec.PlayerLevel, &rec.Floor, &rec.Data, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("query save slot: %w", err)
	}
	rec.AccountID = accountID
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, accountID uuid.UUID) ([]Slot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT slot, schema_version, player_name, player_level, floor, updated_at
FROM save_slots WHERE account_id = ? ORDER BY updated_at DESC, slot ASC
`, accountID.String())
	if err != nil {
		return nil, fmt.Errorf("query save slots: %w", err)
	}
	defer rows.Close()

	slots := make([]Slot, 0)
	for rows.Next() {
		sl := Slot{AccountID: accountID}
		var updated int64
		if err := rows.Scan(&sl.Name, &sl.SchemaVersion, &sl.PlayerName, &sl.PlayerLevel, &sl.Floor, &updated); err != nil {
			return nil, fmt.Errorf("scan save slot: %w", err)
		}
		sl.UpdatedAt = time.UnixMilli(updated).UTC()
		slots = append(slots, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate save slots: %w", err)
	}
	return slots, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, accountID uuid.UUID, slot string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM save_slots WHERE account_id = ? AND slot = ?`, accountID.String(), slot)
	if err != nil {
		return fmt.Errorf("delete save slot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
