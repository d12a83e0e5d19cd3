package game

import (
	"github.com/google/uuid"

	"dungeon-server/internal/app/encounter"
	"dungeon-server/internal/app/progression"
	"dungeon-server/internal/app/savegame"
	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
)

type WeaponView struct {
	item.Weapon
	Damage int `json:"damage"`
}

type ExitView struct {
	Direction world.Direction `json:"direction"`
	Locked    bool            `json:"locked,omitempty"`
	Sealed    bool            `json:"sealed,omitempty"`
	Requires  string          `json:"requires,omitempty"`
	Floor     int             `json:"floor"`
}

type EnemyView struct {
	ID        uuid.UUID `json:"id"`
	Species   string    `json:"species"`
	Name      string    `json:"name"`
	Health    int       `json:"health"`
	MaxHealth int       `json:"max_health"`
}

type BossView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MinLevel int    `json:"min_level"`
	Defeated bool   `json:"defeated"`
}

type RoomView struct {
	Floor      int            `json:"floor"`
	Index      int            `json:"index"`
	Theme      string         `json:"theme"`
	Name       string         `json:"name"`
	Physical   string         `json:"physical"`
	Atmosphere string         `json:"atmosphere"`
	Type       world.RoomType `json:"type"`
	Exits      []ExitView     `json:"exits"`
	Enemies    []EnemyView    `json:"enemies"`
	Boss       *BossView      `json:"boss,omitempty"`
	Items      []item.Item    `json:"items"`
	Weapons    []WeaponView   `json:"weapons"`
	Gold       int            `json:"gold"`
	Cleared    bool           `json:"cleared"`
}

type PlayerView struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Class            character.Class `json:"class"`
	Title            string          `json:"title"`
	Tier             int             `json:"tier"`
	Level            int             `json:"level"`
	Experience       int             `json:"experience"`
	NextLevel        int             `json:"next_level"`
	Health           int             `json:"health"`
	MaxHealth        int             `json:"max_health"`
	Mana             int             `json:"mana"`
	MaxMana          int             `json:"max_mana"`
	Stats            character.Stats `json:"stats"`
	EffectiveStats   character.Stats `json:"effective_stats"`
	Gold             int             `json:"gold"`
	RareBias         int             `json:"rare_bias"`
	Weapon           *WeaponView     `json:"weapon,omitempty"`
	Items            []item.Item     `json:"items"`
	Weapons          []WeaponView    `json:"weapons"`
	Wearables        []item.Item     `json:"wearables"`
	Capacity         int             `json:"capacity"`
	InventoryCount   int             `json:"inventory_count"`
	UpgradeAvailable bool            `json:"upgrade_available"`
}

type MapRoom struct {
	Index   int               `json:"index"`
	X       int               `json:"x"`
	Y       int               `json:"y"`
	Name    string            `json:"name"`
	Type    world.RoomType    `json:"type"`
	Visited bool              `json:"visited"`
	Cleared bool              `json:"cleared"`
	Current bool              `json:"current"`
	Exits   []world.Direction `json:"exits"`
}

type MapView struct {
	Floor  int       `json:"floor"`
	Theme  string    `json:"theme"`
	Mapped bool      `json:"mapped"`
	Rooms  []MapRoom `json:"rooms"`
}

type EncounterView struct {
	ID      uuid.UUID            `json:"id"`
	State   world.EncounterState `json:"state"`
	Turn    int                  `json:"turn"`
	Boss    bool                 `json:"boss"`
	Foe     world.Foe            `json:"foe"`
	Effects []world.StatusEffect `json:"effects"`
}

// Result is everything a client needs to render the outcome of one intent.
type Result struct {
	Session      uuid.UUID                `json:"session"`
	Verb         Verb                     `json:"verb"`
	Room         *RoomView                `json:"room,omitempty"`
	Player       *PlayerView              `json:"player,omitempty"`
	Encounter    *EncounterView           `json:"encounter,omitempty"`
	Turn         *encounter.TurnOutcome   `json:"turn,omitempty"`
	Map          *MapView                 `json:"map,omitempty"`
	Taken        []string                 `json:"taken,omitempty"`
	Left         []string                 `json:"left,omitempty"`
	Gold         int                      `json:"gold,omitempty"`
	Discarded    string                   `json:"discarded,omitempty"`
	Equipped     *WeaponView              `json:"equipped,omitempty"`
	Consumed     string                   `json:"consumed,omitempty"`
	Restored     int                      `json:"restored,omitempty"`
	LevelUps     []progression.LevelUp    `json:"level_ups,omitempty"`
	Upgrade      *progression.TierUpgrade `json:"upgrade,omitempty"`
	Unlocked     string                   `json:"unlocked,omitempty"`
	FloorEntered int                      `json:"floor_entered,omitempty"`
	Slot         *savegame.Slot           `json:"slot,omitempty"`
	GameOver     bool                     `json:"game_over"`
	Completed    bool                     `json:"completed"`
	Turns        int                      `json:"turns"`
}

func weaponView(w item.Weapon, level int) WeaponView {
	return WeaponView{Weapon: w, Damage: w.EffectiveDamage(level)}
}

func roomView(w *world.World) *RoomView {
	f := w.CurrentFloor()
	r := w.CurrentRoom()
	v := &RoomView{
		Floor:      f.Index,
		Index:      r.Index,
		Theme:      f.Theme,
		Name:       r.Name,
		Physical:   r.Physical,
		Atmosphere: r.Atmosphere,
		Type:       r.Type,
		Exits:      []ExitView{},
		Enemies:    []EnemyView{},
		Items:      append([]item.Item{}, r.Items...),
		Weapons:    []WeaponView{},
		Gold:       r.Gold,
		Cleared:    r.Cleared,
	}
	for _, d := range world.Directions {
		ex, ok := r.Exits[d]
		if !ok {
			continue
		}
		ev := ExitView{Direction: d, Locked: ex.Locked, Floor: ex.To.Floor}
		if ex.To.Floor == f.Index {
			if dest := f.Room(ex.To.Room); dest != nil && dest.Sealed {
				ev.Sealed, ev.Requires = true, dest.Requires
			}
		}
		v.Exits = append(v.Exits, ev)
	}
	for _, e := range r.Enemies {
		v.Enemies = append(v.Enemies, EnemyView{ID: e.ID, Species: e.Species, Name: e.Name, Health: e.Health, MaxHealth: e.MaxHealth})
	}
	if r.Type == world.RoomBossChamber {
		if spec, ok := world.LookupBoss(f.Boss.ID); ok {
			v.Boss = &BossView{ID: spec.ID, Name: spec.Name, MinLevel: spec.MinLevel(), Defeated: f.Boss.Defeated}
		}
	}
	for _, wp := range r.Weapons {
		v.Weapons = append(v.Weapons, weaponView(wp, w.Player.Level))
	}
	return v
}

func playerView(p *character.Player) *PlayerView {
	v := &PlayerView{
		ID:               p.ID,
		Name:             p.Name,
		Class:            p.Class,
		Title:            p.Title(),
		Tier:             p.Tier,
		Level:            p.Level,
		Experience:       p.Experience,
		NextLevel:        progression.RequiredXP(p.Level),
		Health:           p.Health,
		MaxHealth:        p.MaxHealth,
		Mana:             p.Mana,
		MaxMana:          p.MaxMana,
		Stats:            p.Stats,
		EffectiveStats:   p.EffectiveStats(),
		Gold:             p.Gold,
		RareBias:         p.RareBias,
		Items:            append([]item.Item{}, p.Items...),
		Weapons:          make([]WeaponView, 0, len(p.Weapons)),
		Wearables:        append([]item.Item{}, p.Wearables...),
		Capacity:         p.Capacity(),
		InventoryCount:   p.InventoryCount(),
		UpgradeAvailable: progression.UpgradeEligible(p),
	}
	if p.Weapon != nil {
		wv := weaponView(*p.Weapon, p.Level)
		v.Weapon = &wv
	}
	for _, wp := range p.Weapons {
		v.Weapons = append(v.Weapons, weaponView(wp, p.Level))
	}
	return v
}

// mapView shows every room once the floor's map has been found, otherwise
// only the rooms already visited.
func mapView(w *world.World) *MapView {
	f := w.CurrentFloor()
	v := &MapView{Floor: f.Index, Theme: f.Theme, Mapped: f.Mapped, Rooms: []MapRoom{}}
	for _, r := range f.Rooms {
		if !f.Mapped && !r.Visited {
			continue
		}
		mr := MapRoom{
			Index: r.Index, X: r.X, Y: r.Y, Name: r.Name, Type: r.Type,
			Visited: r.Visited, Cleared: r.Cleared, Current: r.Index == w.Location.Room,
			Exits: []world.Direction{},
		}
		for _, d := range world.Directions {
			if _, ok := r.Exits[d]; ok {
				mr.Exits = append(mr.Exits, d)
			}
		}
		v.Rooms = append(v.Rooms, mr)
	}
	return v
}

func encounterView(enc *world.Encounter) *EncounterView {
	if enc == nil {
		return nil
	}
	return &EncounterView{
		ID:      enc.ID,
		State:   enc.State,
		Turn:    enc.Turn,
		Boss:    enc.IsBoss(),
		Foe:     enc.Foe,
		Effects: append([]world.StatusEffect{}, enc.Effects...),
	}
}
