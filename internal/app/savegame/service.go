package savegame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dungeon-server/internal/app/persistence"
	"dungeon-server/internal/domain/world"
	apperrors "dungeon-server/internal/platform/errors"
	"dungeon-server/internal/platform/mq"
)

const (
	AutosaveSlot = "autosave"
	maxSlotName  = 32
)

var ErrInvalidSlot = apperrors.New(apperrors.CodeInvalidChoice, "slot names are 1-32 letters, digits, '-' or '_'")

type Service struct {
	store    Store
	saves    *persistence.Manager
	cache    *redis.Client
	cacheTTL time.Duration
	pub      mq.Publisher
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(store Store, saves *persistence.Manager, cache *redis.Client, cacheTTL time.Duration, pub mq.Publisher, logger zerolog.Logger) *Service {
	return &Service{store: store, saves: saves, cache: cache, cacheTTL: cacheTTL, pub: pub, logger: logger, now: time.Now}
}

// NormalizeSlot lower-cases a slot name and checks its characters. Empty
// names mean the autosave slot.
func NormalizeSlot(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return AutosaveSlot, nil
	}
	if len(name) > maxSlotName {
		return "", ErrInvalidSlot
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", ErrInvalidSlot
		}
	}
	return name, nil
}

func (s *Service) Save(ctx context.Context, accountID uuid.UUID, slot string, w *world.World) (Slot, error) {
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return Slot{}, err
	}
	data, err := s.saves.Save(w)
	if err != nil {
		return Slot{}, err
	}
	sum, err := s.saves.Peek(data)
	if err != nil {
		return Slot{}, err
	}
	rec := Record{
		Slot: Slot{
			AccountID:     accountID,
			Name:          slot,
			SchemaVersion: sum.SchemaVersion,
			PlayerName:    sum.PlayerName,
			PlayerLevel:   sum.PlayerLevel,
			Floor:         sum.Floor,
			UpdatedAt:     s.now().UTC().Truncate(time.Millisecond),
		},
		Data: data,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return Slot{}, err
	}
	s.invalidate(ctx, accountID, slot)
	s.publish(ctx, mq.SubjectGameSaved, map[string]any{
		"account_id": accountID, "slot": slot, "player": sum.PlayerName, "level": sum.PlayerLevel, "floor": sum.Floor,
	})
	s.logger.Debug().Str("account_id", accountID.String()).Str("slot", slot).Int("bytes", len(data)).Msg("game saved")
	return rec.Slot, nil
}

// Load decodes a slot into a fresh world. The caller's live world is only
// replaced once this returns without error.
func (s *Service) Load(ctx context.Context, accountID uuid.UUID, slot string) (*world.World, Slot, error) {
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return nil, Slot{}, err
	}
	rec, err := s.record(ctx, accountID, slot)
	if err != nil {
		return nil, Slot{}, err
	}
	w, err := s.saves.Load(rec.Data)
	if err != nil {
		return nil, Slot{}, err
	}
	return w, rec.Slot, nil
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]Slot, error) {
	key := s.listKey(accountID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var slots []Slot
			if uErr := json.Unmarshal(cached, &slots); uErr == nil {
				return slots, nil
			}
		}
	}
	slots, err := s.store.List(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if b, err := json.Marshal(slots); err == nil {
			_ = s.cache.Set(ctx, key, b, s.cacheTTL).Err()
		}
	}
	return slots, nil
}

func (s *Service) Delete(ctx context.Context, accountID uuid.UUID, slot string) error {
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, accountID, slot); err != nil {
		return err
	}
	s.invalidate(ctx, accountID, slot)
	return nil
}

func (s *Service) record(ctx context.Context, accountID uuid.UUID, slot string) (Record, error) {
	key := s.blobKey(accountID, slot)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var rec Record
			if uErr := json.Unmarshal(cached, &rec); uErr == nil {
				return rec, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("save cache read failed")
		}
	}
	rec, err := s.store.Get(ctx, accountID, slot)
	if err != nil {
		return Record{}, err
	}
	if s.cache != nil {
		if b, err := json.Marshal(rec); err == nil {
			_ = s.cache.Set(ctx, key, b, s.cacheTTL).Err()
		}
	}
	return rec, nil
}

func (s *Service) listKey(accountID uuid.UUID) string {
	return "saves:list:" + accountID.String()
}

func (s *Service) blobKey(accountID uuid.UUID, slot string) string {
	return fmt.Sprintf("saves:blob:%s:%s", accountID, slot)
}

func (s *Service) invalidate(ctx context.Context, accountID uuid.UUID, slot string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.listKey(accountID), s.blobKey(accountID, slot)).Err()
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if s.pub == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.pub.Publish(ctx, subject, b); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("publish failed")
	}
}

func (s *Service) Close() error {
	return s.store.Close()
}
