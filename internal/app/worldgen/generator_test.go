package worldgen

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"dungeon-server/internal/app/itemization"
	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
)

func newGenerator() *Generator {
	return NewGenerator(itemization.New(), zerolog.Nop())
}

func TestGeneratedFloorsAreWellFormed(t *testing.T) {
	g := newGenerator()
	for seed := uint64(1); seed <= 40; seed++ {
		for floor := 1; floor <= world.MaxFloors; floor++ {
			f := g.GenerateFloor(floor, character.ClassWarrior, FloorSeed(seed, floor))
			checkFloor(t, f)
		}
	}
}

func checkFloor(t *testing.T, f *world.Floor) {
	t.Helper()
	n := len(f.Rooms)
	if n < world.MinFloorSize || n > world.MaxFloorSize {
		t.Fatalf("floor %d has %d rooms", f.Index, n)
	}
	if reach := f.Reachable(); len(reach) != n {
		t.Fatalf("floor %d: %d of %d rooms reachable", f.Index, len(reach), n)
	}

	bosses, secrets, armories, enemies := 0, 0, 0, 0
	puzzles := map[string]int{}
	for _, r := range f.Rooms {
		switch {
		case r.Type == world.RoomBossChamber:
			bosses++
		case r.Type.Secret():
			secrets++
			if !r.Sealed || r.Requires == "" {
				t.Fatalf("floor %d secret room %d not sealed", f.Index, r.Index)
			}
			if degree(r) != 1 {
				t.Fatalf("floor %d secret room %d is not a dead end", f.Index, r.Index)
			}
		case r.Type == world.RoomArmory:
			armories++
		}
		if len(r.Enemies) > maxPerRoom {
			t.Fatalf("floor %d room %d has %d enemies", f.Index, r.Index, len(r.Enemies))
		}
		species := map[string]bool{}
		for _, e := range r.Enemies {
			if species[e.Species] {
				t.Fatalf("floor %d room %d repeats species %s", f.Index, r.Index, e.Species)
			}
			species[e.Species] = true
			if s, ok := world.LookupSpecies(e.Species); !ok || s.Tier != world.ThemeForFloor(f.Index).Tier {
				t.Fatalf("floor %d spawned off-theme species %s", f.Index, e.Species)
			}
		}
		if len(r.Enemies) > 0 && r.Type.Special() {
			t.Fatalf("floor %d special room %d has enemies", f.Index, r.Index)
		}
		enemies += len(r.Enemies)
		for _, it := range r.Items {
			if it.Kind == item.KindPuzzle {
				puzzles[it.Key]++
				if r.Sealed || r.Type == world.RoomBossChamber {
					t.Fatalf("floor %d puzzle item %s placed in room %d (%s)", f.Index, it.Key, r.Index, r.Type)
				}
			}
		}
		for _, d := range world.Planar {
			ex, ok := r.Exits[d]
			if !ok {
				continue
			}
			back, ok := f.Rooms[ex.To.Room].Exits[d.Opposite()]
			if !ok || back.To.Room != r.Index {
				t.Fatalf("floor %d exit %s from %d is one-way", f.Index, d, r.Index)
			}
		}
		if r.Cleared != (len(r.Enemies) == 0 && r.Type != world.RoomBossChamber) {
			t.Fatalf("floor %d room %d cleared=%v with %d enemies", f.Index, r.Index, r.Cleared, len(r.Enemies))
		}
	}
	if bosses != 1 || f.Rooms[f.BossRoom].Type != world.RoomBossChamber {
		t.Fatalf("floor %d has %d boss chambers", f.Index, bosses)
	}
	if degree(f.Rooms[f.BossRoom]) != 1 {
		t.Fatalf("floor %d boss chamber is not a leaf", f.Index)
	}
	if secrets > maxSecrets || armories < 1 {
		t.Fatalf("floor %d secrets=%d armories=%d", f.Index, secrets, armories)
	}
	if enemies < minEnemies || enemies > maxEnemies {
		t.Fatalf("floor %d has %d enemies", f.Index, enemies)
	}
	for _, key := range item.PuzzleKeys {
		if puzzles[key] != 1 {
			t.Fatalf("floor %d has %d x %s", f.Index, puzzles[key], key)
		}
	}

	entry, boss := f.Rooms[f.Entry], f.Rooms[f.BossRoom]
	_, hasUp := entry.Exits[world.Up]
	down, hasDown := boss.Exits[world.Down]
	if hasUp != (f.Index > 1) || hasDown != (f.Index < world.MaxFloors) {
		t.Fatalf("floor %d stairs up=%v down=%v", f.Index, hasUp, hasDown)
	}
	if hasDown && (!down.Locked || down.To.Floor != f.Index+1) {
		t.Fatalf("floor %d down stairs %+v", f.Index, down)
	}
	stairs := 0
	for _, r := range f.Rooms {
		for _, d := range []world.Direction{world.Up, world.Down} {
			if _, ok := r.Exits[d]; ok {
				stairs++
			}
		}
	}
	want := 2
	if f.Index == 1 || f.Index == world.MaxFloors {
		want = 1
	}
	if stairs != want {
		t.Fatalf("floor %d has %d stair exits, want %d", f.Index, stairs, want)
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	g := newGenerator()
	a, err := json.Marshal(g.GenerateFloor(4, character.ClassMage, 99))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, _ := json.Marshal(g.GenerateFloor(4, character.ClassMage, 99))
	if string(a) != string(b) {
		t.Fatal("same seed produced different floors")
	}
	c, _ := json.Marshal(g.GenerateFloor(4, character.ClassMage, 100))
	if string(a) == string(c) {
		t.Fatal("different seeds produced identical floors")
	}
}

func TestLinearFallbackStaysConnected(t *testing.T) {
	g := newGenerator()
	g.PlacementBudget = -1
	lay := linearLayout(12)
	if len(lay.cells) != 12 || len(lay.edges) != 11 {
		t.Fatalf("unexpected linear layout: %d cells %d edges", len(lay.cells), len(lay.edges))
	}
	f := g.GenerateFloor(3, character.ClassRogue, 7)
	checkFloor(t, f)
	for _, r := range f.Rooms {
		if r.Y != 0 {
			t.Fatalf("room %d off the chain at y=%d", r.Index, r.Y)
		}
	}
	if f.BossRoom != len(f.Rooms)-1 {
		t.Fatalf("boss room %d, want the end of the chain", f.BossRoom)
	}
}

func TestAdjacentTemplatesDiffer(t *testing.T) {
	g := newGenerator()
	for seed := uint64(1); seed <= 20; seed++ {
		f := g.GenerateFloor(2, character.ClassWarrior, seed)
		for _, r := range f.Rooms {
			if r.Type.Special() {
				continue
			}
			for _, d := range world.Planar {
				ex, ok := r.Exits[d]
				if !ok {
					continue
				}
				other := f.Rooms[ex.To.Room]
				if other.Type.Special() || other.Index < r.Index {
					continue
				}
				if other.Template == r.Template {
					t.Fatalf("seed %d rooms %d and %d share template %s", seed, r.Index, other.Index, r.Template)
				}
			}
		}
	}
}

func TestNewWorldPlacesPlayerAtEntry(t *testing.T) {
	g := newGenerator()
	p, _ := character.New("Ash", character.ClassWarrior, itemization.StartingWeapons()[0])
	w := g.NewWorld(42, p)
	if w.Location.Floor != 1 || w.Location.Room != w.Floors[0].Entry {
		t.Fatalf("player placed at %+v", w.Location)
	}
	if !w.CurrentRoom().Visited {
		t.Fatal("entry room should be visited")
	}
	if w.Floor(2) != nil {
		t.Fatal("floor 2 should be generated lazily")
	}
	q, _ := character.New("Ash", character.ClassWarrior, itemization.StartingWeapons()[0])
	again := g.NewWorld(42, q)
	if again.Player.ID != w.Player.ID || again.Player.Weapon.ID != w.Player.Weapon.ID {
		t.Fatal("player and weapon ids should follow the seed")
	}
	if w.Player.ID == w.Player.Weapon.ID {
		t.Fatal("player and weapon share an id")
	}
	f2 := g.EnsureFloor(w, 2)
	if f2 == nil || f2 != w.Floor(2) || f2.Seed != FloorSeed(42, 2) {
		t.Fatal("EnsureFloor did not generate floor 2 from the derived seed")
	}
}
