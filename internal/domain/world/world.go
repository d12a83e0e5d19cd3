package world

import (
	"strings"

	"github.com/google/uuid"

	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/platform/dice"
)

const (
	MaxFloors    = 10
	MinFloorSize = 10
	MaxFloorSize = 15
)

type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Planar are the directions used inside a floor.
var Planar = []Direction{North, South, East, West}

// Directions adds the stairways to Planar, in display order.
var Directions = []Direction{North, South, East, West, Up, Down}

func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	}
	return ""
}

// Offset is the grid step for a planar direction.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	return 0, 0
}

func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, true
	case "s", "south":
		return South, true
	case "e", "east":
		return East, true
	case "w", "west":
		return West, true
	case "u", "up", "upstairs":
		return Up, true
	case "d", "down", "downstairs":
		return Down, true
	}
	return "", false
}

type RoomType string

const (
	RoomOrdinary     RoomType = "ordinary"
	RoomTreasure     RoomType = "treasure"
	RoomHiddenAlcove RoomType = "hidden-alcove"
	RoomLockedVault  RoomType = "locked-vault"
	RoomSacredShrine RoomType = "sacred-shrine"
	RoomArmory       RoomType = "armory"
	RoomBossChamber  RoomType = "boss-chamber"
)

// Secret reports whether the room type is sealed behind a puzzle item.
func (t RoomType) Secret() bool {
	return t == RoomHiddenAlcove || t == RoomLockedVault || t == RoomSacredShrine
}

// Special rooms never receive regular enemies.
func (t RoomType) Special() bool {
	return t.Secret() || t == RoomArmory || t == RoomBossChamber
}

// RoomRef addresses a room across floors. Floor is 1-based.
type RoomRef struct {
	Floor int `json:"floor"`
	Room  int `json:"room"`
}

// StairsLanding as a RoomRef.Room means the stairway room of the target floor.
const StairsLanding = -1

type Exit struct {
	To     RoomRef `json:"to"`
	Locked bool    `json:"locked,omitempty"`
}

type Enemy struct {
	ID        uuid.UUID `json:"id"`
	Species   string    `json:"species"`
	Name      string    `json:"name"`
	Health    int       `json:"health"`
	MaxHealth int       `json:"max_health"`
	Damage    int       `json:"damage"`
	XP        int       `json:"xp"`
	Gold      int       `json:"gold"`
}

type Room struct {
	Index      int                `json:"index"`
	Floor      int                `json:"floor"`
	X          int                `json:"x"`
	Y          int                `json:"y"`
	Template   string             `json:"template"`
	Name       string             `json:"name"`
	Physical   string             `json:"physical"`
	Atmosphere string             `json:"atmosphere"`
	Type       RoomType           `json:"type"`
	Exits      map[Direction]Exit `json:"exits"`
	Enemies    []Enemy            `json:"enemies"`
	Items      []item.Item        `json:"items"`
	Weapons    []item.Weapon      `json:"weapons"`
	Gold       int                `json:"gold"`
	Visited    bool               `json:"visited"`
	Cleared    bool               `json:"cleared"`
	Sealed     bool               `json:"sealed,omitempty"`
	Requires   string             `json:"requires,omitempty"`
}

func (r *Room) Connect(d Direction, to RoomRef) {
	if r.Exits == nil {
		r.Exits = make(map[Direction]Exit)
	}
	r.Exits[d] = Exit{To: to}
}

func (r *Room) HasLoot() bool {
	return len(r.Items) > 0 || len(r.Weapons) > 0 || r.Gold > 0
}

func (r *Room) EnemyIndex(id uuid.UUID) int {
	for i, e := range r.Enemies {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// FindEnemy matches an enemy by id string, species id or case-insensitive name.
func (r *Room) FindEnemy(ref string) (Enemy, bool) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	for _, e := range r.Enemies {
		if ref == "" || e.ID.String() == ref || e.Species == ref || strings.ToLower(e.Name) == ref {
			return e, true
		}
	}
	return Enemy{}, false
}

func (r *Room) RemoveEnemy(id uuid.UUID) {
	if idx := r.EnemyIndex(id); idx >= 0 {
		r.Enemies = append(r.Enemies[:idx], r.Enemies[idx+1:]...)
	}
	if len(r.Enemies) == 0 && r.Type != RoomBossChamber {
		r.Cleared = true
	}
}

type BossState struct {
	ID       string `json:"id"`
	Defeated bool   `json:"defeated"`
}

type Floor struct {
	Index    int       `json:"index"`
	Theme    string    `json:"theme"`
	Seed     uint64    `json:"seed"`
	Rooms    []*Room   `json:"rooms"`
	Entry    int       `json:"entry"`
	BossRoom int       `json:"boss_room"`
	Boss     BossState `json:"boss"`
	Mapped   bool      `json:"mapped"`
}

func (f *Floor) Room(i int) *Room {
	if f == nil || i < 0 || i >= len(f.Rooms) {
		return nil
	}
	return f.Rooms[i]
}

// Reachable returns every room index reachable from the entry via planar exits.
func (f *Floor) Reachable() map[int]bool {
	seen := map[int]bool{f.Entry: true}
	queue := []int{f.Entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Planar {
			ex, ok := f.Rooms[cur].Exits[d]
			if !ok || ex.To.Floor != f.Index || seen[ex.To.Room] {
				continue
			}
			seen[ex.To.Room] = true
			queue = append(queue, ex.To.Room)
		}
	}
	return seen
}

// World is the single mutable object a session owns.
type World struct {
	Seed      uint64            `json:"seed"`
	Dice      *dice.Roller      `json:"-"`
	Player    *character.Player `json:"player"`
	Floors    [MaxFloors]*Floor `json:"floors"`
	Location  RoomRef           `json:"location"`
	Encounter *Encounter        `json:"encounter,omitempty"`
	GameOver  bool              `json:"game_over"`
	Completed bool              `json:"completed"`
	Turns     int               `json:"turns"`
}

// Floor returns the generated floor with 1-based index, or nil.
func (w *World) Floor(index int) *Floor {
	if index < 1 || index > MaxFloors {
		return nil
	}
	return w.Floors[index-1]
}

func (w *World) CurrentFloor() *Floor {
	return w.Floor(w.Location.Floor)
}

func (w *World) CurrentRoom() *Room {
	return w.Floor(w.Location.Floor).Room(w.Location.Room)
}

func (w *World) InCombat() bool {
	return w.Encounter != nil && !w.Encounter.Over()
}
