package savegame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const fileExt = ".save"

// FileStore writes one file per slot under dir/<account>/. Writes go to a
// temp file that is synced and renamed over the slot.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("save dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &FileStore{dir: filepath.Clean(dir)}, nil
}

func (s *FileStore) path(accountID uuid.UUID, slot string) string {
	return filepath.Join(s.dir, accountID.String(), slot+fileExt)
}

func (s *FileStore) Put(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode save slot: %w", err)
	}
	dst := s.path(rec.AccountID, rec.Name)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create account dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+rec.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp save: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp save: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("replace save: %w", err)
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, accountID uuid.UUID, slot string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	body, err := os.ReadFile(s.path(accountID, slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("read save slot: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return Record{}, fmt.Errorf("decode save slot: %w", err)
	}
	return rec, nil
}

func (s *FileStore) List(ctx context.Context, accountID uuid.UUID) ([]Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, accountID.String()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Slot{}, nil
		}
		return nil, fmt.Errorf("read account dir: %w", err)
	}
	slots := make([]Slot, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		rec, err := s.Get(ctx, accountID, strings.TrimSuffix(name, fileExt))
		if err != nil {
			return nil, err
		}
		slots = append(slots, rec.Slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].UpdatedAt.Equal(slots[j].UpdatedAt) {
			return slots[i].UpdatedAt.After(slots[j].UpdatedAt)
		}
		return slots[i].Name < slots[j].Name
	})
	return slots, nil
}

func (s *FileStore) Delete(ctx context.Context, accountID uuid.UUID, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(accountID, slot)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete save slot: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
