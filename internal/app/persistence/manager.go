package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
	"dungeon-server/internal/platform/dice"
	apperrors "dungeon-server/internal/platform/errors"
)

// SchemaVersion tags every save document. Bump it whenever the layout of
// SaveState or anything it embeds changes shape.
const SchemaVersion = 3

var (
	ErrVersionMismatch = apperrors.New(apperrors.CodeVersionMismatch, "save was written by an incompatible version")
	ErrCorruptSave     = apperrors.New(apperrors.CodeCorruptSave, "save data is corrupt")
)

type SaveState struct {
	SchemaVersion int                           `json:"schemaVersion"`
	SavedAt       time.Time                     `json:"savedAt"`
	Player        *character.Player             `json:"player"`
	Floors        [world.MaxFloors]*world.Floor `json:"floors"`
	Session       Session                       `json:"session"`
}

type Session struct {
	Seed      uint64           `json:"seed"`
	RNG       []byte           `json:"rng"`
	Location  world.RoomRef    `json:"location"`
	Encounter *world.Encounter `json:"encounter,omitempty"`
	GameOver  bool             `json:"gameOver"`
	Completed bool             `json:"completed"`
	Turns     int              `json:"turns"`
}

// Summary is the slice of a save shown in slot listings.
type Summary struct {
	SchemaVersion int       `json:"schema_version"`
	SavedAt       time.Time `json:"saved_at"`
	PlayerName    string    `json:"player_name"`
	PlayerLevel   int       `json:"player_level"`
	Class         string    `json:"class"`
	Floor         int       `json:"floor"`
}

type Manager struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{logger: logger, now: time.Now}
}

func (m *Manager) Save(w *world.World) ([]byte, error) {
	if w == nil || w.Player == nil || w.Dice == nil {
		return nil, apperrors.New(apperrors.CodeUnknown, "nothing to save")
	}
	rng, err := w.Dice.State()
	if err != nil {
		return nil, err
	}
	state := SaveState{
		SchemaVersion: SchemaVersion,
		SavedAt:       m.now().UTC(),
		Player:        w.Player,
		Floors:        w.Floors,
		Session: Session{
			Seed:      w.Seed,
			RNG:       rng,
			Location:  w.Location,
			Encounter: w.Encounter,
			GameOver:  w.GameOver,
			Completed: w.Completed,
			Turns:     w.Turns,
		},
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return data, nil
}

// Load decodes a save into a brand new world. Nothing the caller holds is
// touched, so a failed load leaves the running session as it was.
func (m *Manager) Load(data []byte) (*world.World, error) {
	if err := checkVersion(data); err != nil {
		return nil, err
	}
	var state SaveState
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&state); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCorruptSave, "decode save", err)
	}
	if err := validate(&state); err != nil {
		return nil, err
	}

	rng := dice.New(state.Session.Seed)
	if err := rng.Restore(state.Session.RNG); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCorruptSave, "restore rng", err)
	}
	w := &world.World{
		Seed:      state.Session.Seed,
		Dice:      rng,
		Player:    state.Player,
		Floors:    state.Floors,
		Location:  state.Session.Location,
		Encounter: state.Session.Encounter,
		GameOver:  state.Session.GameOver,
		Completed: state.Session.Completed,
		Turns:     state.Session.Turns,
	}
	normalize(w)
	if n := discardSpentGuns(w.Player); n > 0 {
		m.logger.Debug().Int("count", n).Msg("spent golden gun crumbled on load")
	}
	return w, nil
}

// Peek reads the listing fields without validating the whole document.
func (m *Manager) Peek(data []byte) (Summary, error) {
	if err := checkVersion(data); err != nil {
		return Summary{}, err
	}
	var head struct {
		SchemaVersion int       `json:"schemaVersion"`
		SavedAt       time.Time `json:"savedAt"`
		Player        *struct {
			Name  string `json:"name"`
			Class string `json:"class"`
			Level int    `json:"level"`
		} `json:"player"`
		Session struct {
			Location world.RoomRef `json:"location"`
		} `json:"session"`
	}
	if err := json.Unmarshal(data, &head); err != nil || head.Player == nil {
		return Summary{}, ErrCorruptSave
	}
	return Summary{
		SchemaVersion: head.SchemaVersion,
		SavedAt:       head.SavedAt,
		PlayerName:    head.Player.Name,
		PlayerLevel:   head.Player.Level,
		Class:         head.Player.Class,
		Floor:         head.Session.Location.Floor,
	}, nil
}

func checkVersion(data []byte) error {
	var probe struct {
		SchemaVersion *int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return apperrors.Wrap(apperrors.CodeCorruptSave, "read schema version", err)
	}
	if probe.SchemaVersion == nil {
		return apperrors.New(apperrors.CodeCorruptSave, "save has no schema version")
	}
	if *probe.SchemaVersion != SchemaVersion {
		return apperrors.WithMetadata(apperrors.CodeVersionMismatch,
			fmt.Sprintf("save schema %d, expected %d", *probe.SchemaVersion, SchemaVersion),
			map[string]string{"found": fmt.Sprint(*probe.SchemaVersion), "expected": fmt.Sprint(SchemaVersion)})
	}
	return nil
}

// normalize replaces nil collections left by hand-edited or sparse saves so
// the rest of the game never has to nil-check them.
func normalize(w *world.World) {
	p := w.Player
	if p.Items == nil {
		p.Items = []item.Item{}
	}
	if p.Weapons == nil {
		p.Weapons = []item.Weapon{}
	}
	if p.Wearables == nil {
		p.Wearables = []item.Item{}
	}
	for _, f := range w.Floors {
		if f == nil {
			continue
		}
		for _, r := range f.Rooms {
			if r.Exits == nil {
				r.Exits = map[world.Direction]world.Exit{}
			}
			if r.Enemies == nil {
				r.Enemies = []world.Enemy{}
			}
			if r.Items == nil {
				r.Items = []item.Item{}
			}
			if r.Weapons == nil {
				r.Weapons = []item.Weapon{}
			}
		}
	}
	if w.Encounter != nil && w.Encounter.Effects == nil {
		w.Encounter.Effects = []world.StatusEffect{}
	}
}

func discardSpentGuns(p *character.Player) int {
	n := 0
	if p.Weapon != nil && p.Weapon.IsGoldenGun() && p.Weapon.UsesRemaining <= 0 {
		p.Weapon = nil
		n++
	}
	kept := p.Weapons[:0]
	for _, w := range p.Weapons {
		if w.IsGoldenGun() && w.UsesRemaining <= 0 {
			n++
			continue
		}
		kept = append(kept, w)
	}
	p.Weapons = kept
	return n
}
