package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"dungeon-server/internal/app/itemization"
	"dungeon-server/internal/app/worldgen"
	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
	"dungeon-server/internal/platform/dice"
)

func newWorld(t *testing.T, seed uint64) *world.World {
	t.Helper()
	p, err := character.New("Vesna", character.ClassRogue, itemization.StartingWeapons()[2])
	if err != nil {
		t.Fatalf("character.New err: %v", err)
	}
	return worldgen.NewGenerator(itemization.New(), zerolog.Nop()).NewWorld(seed, p)
}

// mutate plays a little: clears a room, takes its loot, unseals a secret,
// descends a floor and carries a half-spent Golden Gun.
func mutate(t *testing.T, w *world.World) {
	t.Helper()
	p := w.Player
	p.Level, p.Experience, p.Gold = 4, 73, 41
	p.Health = p.MaxHealth - 17
	p.Stats.Agility += 2
	_ = p.AddItem(item.MustLookup("health potion"))
	p.Wear(item.MustLookup("mana flower"))
	gun := itemization.GoldenGun(w.Dice.UUID(), "Reality Ripper")
	gun.UsesRemaining = 3
	_ = p.AddWeapon(gun)

	f := w.Floor(1)
	for _, r := range f.Rooms {
		if len(r.Enemies) == 0 {
			continue
		}
		r.RemoveEnemy(r.Enemies[0].ID)
		r.Visited = true
		r.Items = r.Items[:0]
		break
	}
	for _, r := range f.Rooms {
		if r.Sealed {
			r.Sealed = false
			r.Visited = true
			break
		}
	}
	f.Mapped = true
	worldgen.NewGenerator(itemization.New(), zerolog.Nop()).EnsureFloor(w, 2)
	w.Turns = 29
	_ = w.Dice.IntN(1000)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := NewManager(zerolog.Nop())
	w := newWorld(t, 77)
	mutate(t, w)

	data, err := m.Save(w)
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	got, err := m.Load(data)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if a, b := w.Dice.Uint64(), got.Dice.Uint64(); a != b {
		t.Fatalf("rng diverged after load: %d vs %d", a, b)
	}
	w.Dice, got.Dice = nil, nil
	if !reflect.DeepEqual(w.Player, got.Player) {
		t.Fatalf("player mismatch:\nwant %+v\ngot  %+v", w.Player, got.Player)
	}
	for i := range w.Floors {
		if !reflect.DeepEqual(w.Floors[i], got.Floors[i]) {
			t.Fatalf("floor %d mismatch", i+1)
		}
	}
	if !reflect.DeepEqual(w, got) {
		t.Fatal("session fields mismatch")
	}
	if got.Floors[2] != nil {
		t.Fatal("ungenerated floors must stay ungenerated")
	}
}

func TestLoadKeepsEncounterInProgress(t *testing.T) {
	m := NewManager(zerolog.Nop())
	w := newWorld(t, 5)
	w.Encounter = &world.Encounter{
		ID:      w.Dice.UUID(),
		Room:    w.Location,
		State:   world.StatePlayerTurn,
		Turn:    2,
		Foe:     world.Foe{BossID: "goblin-king", Name: "Goblin King", Health: 40, MaxHealth: 95, Damage: 14},
		Effects: []world.StatusEffect{{Source: "Undertow", Kind: world.EffectDebuff, Stat: item.StatAgility, Magnitude: 4, TurnsLeft: 1}},
	}
	data, err := m.Save(w)
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	got, err := m.Load(data)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !reflect.DeepEqual(w.Encounter, got.Encounter) {
		t.Fatalf("encounter mismatch: %+v vs %+v", w.Encounter, got.Encounter)
	}
}

func rewrite(t *testing.T, data []byte, edit func(map[string]any)) []byte {
	t.Helper()
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	edit(doc)
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return out
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	m := NewManager(zerolog.Nop())
	live := newWorld(t, 11)
	data, _ := m.Save(live)
	before, _ := m.Save(live)

	old := rewrite(t, data, func(doc map[string]any) { doc["schemaVersion"] = SchemaVersion - 1 })
	got, err := m.Load(old)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	if got != nil {
		t.Fatal("rejected load must not return a world")
	}
	after, _ := m.Save(live)
	var a, b SaveState
	_ = json.Unmarshal(before, &a)
	_ = json.Unmarshal(after, &b)
	a.SavedAt = b.SavedAt
	if !reflect.DeepEqual(a, b) {
		t.Fatal("live world changed after a rejected load")
	}
}

func TestLoadRejectsCorruptSaves(t *testing.T) {
	m := NewManager(zerolog.Nop())
	data, _ := m.Save(newWorld(t, 12))

	resolving := newWorld(t, 12)
	resolving.Encounter = &world.Encounter{
		ID:    resolving.Dice.UUID(),
		Room:  resolving.Location,
		State: world.StateResolvingAction,
		Foe:   world.Foe{BossID: "goblin-king", Name: "Goblin King", Health: 40, MaxHealth: 95, Damage: 14},
	}
	midTurn, _ := m.Save(resolving)

	hoarder := newWorld(t, 12)
	for hoarder.Player.InventoryCount() <= hoarder.Player.Capacity() {
		hoarder.Player.Items = append(hoarder.Player.Items, item.MustLookup("health potion"))
	}
	overfull, _ := m.Save(hoarder)

	cases := []struct {
		name string
		data []byte
	}{
		{"truncated", data[:len(data)/2]},
		{"not json", []byte("dungeon")},
		{"no version", rewrite(t, data, func(doc map[string]any) { delete(doc, "schemaVersion") })},
		{"unknown field", rewrite(t, data, func(doc map[string]any) { doc["cheats"] = true })},
		{"missing player", rewrite(t, data, func(doc map[string]any) { delete(doc, "player") })},
		{"missing first floor", rewrite(t, data, func(doc map[string]any) {
			doc["floors"].([]any)[0] = nil
		})},
		{"bad location", rewrite(t, data, func(doc map[string]any) {
			doc["session"].(map[string]any)["location"] = map[string]any{"floor": 4, "room": 0}
		})},
		{"overhealed", rewrite(t, data, func(doc map[string]any) {
			doc["player"].(map[string]any)["health"] = 100000
		})},
		{"encounter mid-resolution", midTurn},
		{"inventory over capacity", overfull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := m.Load(tc.data); !errors.Is(err, ErrCorruptSave) {
				t.Fatalf("expected ErrCorruptSave, got %v", err)
			}
		})
	}
}

func TestLoadDiscardsSpentGoldenGun(t *testing.T) {
	m := NewManager(zerolog.Nop())
	w := newWorld(t, 13)
	gun := itemization.GoldenGun(w.Dice.UUID(), "Cosmos Ender")
	gun.UsesRemaining = 0
	w.Player.Weapon = &gun
	spare := itemization.GoldenGun(w.Dice.UUID(), "Reality Ripper")
	_ = w.Player.AddWeapon(spare)

	data, _ := m.Save(w)
	got, err := m.Load(data)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if got.Player.Weapon != nil {
		t.Fatal("spent golden gun should crumble on load")
	}
	if len(got.Player.Weapons) != 1 || got.Player.Weapons[0].UsesRemaining != item.GoldenGunUses {
		t.Fatalf("charged golden gun should survive: %+v", got.Player.Weapons)
	}
}

func TestPeek(t *testing.T) {
	m := NewManager(zerolog.Nop())
	w := newWorld(t, 14)
	w.Player.Level = 6
	data, _ := m.Save(w)
	sum, err := m.Peek(data)
	if err != nil {
		t.Fatalf("Peek err: %v", err)
	}
	if sum.PlayerName != "Vesna" || sum.PlayerLevel != 6 || sum.Class != "rogue" || sum.Floor != 1 || sum.SchemaVersion != SchemaVersion {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestSaveRequiresRNG(t *testing.T) {
	m := NewManager(zerolog.Nop())
	w := newWorld(t, 15)
	w.Dice = nil
	if _, err := m.Save(w); err == nil {
		t.Fatal("expected error saving a world without rng")
	}
	w.Dice = dice.New(1)
	if _, err := m.Save(w); err != nil {
		t.Fatalf("Save err: %v", err)
	}
}
