package worldgen

import (
	"sort"

	"github.com/rs/zerolog"

	"dungeon-server/internal/app/itemization"
	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
	"dungeon-server/internal/platform/dice"
)

const (
	minEnemies      = 15
	maxEnemies      = 25
	maxPerRoom      = 3
	maxLoops        = 3
	maxSecrets      = 2
	placementBudget = 64
	vaultBias       = 10
)

type cell struct{ x, y int }

type edge struct {
	from, to int
	dir      world.Direction
}

type layout struct {
	cells []cell
	edges []edge
}

type Generator struct {
	items  *itemization.System
	logger zerolog.Logger
	// PlacementBudget bounds failed attach attempts before the linear fallback.
	PlacementBudget int
}

func NewGenerator(items *itemization.System, logger zerolog.Logger) *Generator {
	return &Generator{items: items, logger: logger, PlacementBudget: placementBudget}
}

// FloorSeed derives a floor's seed from the session seed so floors generated
// lazily come out the same regardless of visit order.
func FloorSeed(worldSeed uint64, floor int) uint64 {
	z := worldSeed + uint64(floor)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// NewWorld creates a session world with floor 1 generated and the player at
// its entry.
func (g *Generator) NewWorld(seed uint64, p *character.Player) *world.World {
	w := &world.World{Seed: seed, Dice: dice.New(seed), Player: p}
	// Ids come from their own stream so the session roller starts untouched.
	ids := dice.New(FloorSeed(seed, 0))
	p.ID = ids.UUID()
	if p.Weapon != nil {
		p.Weapon.ID = ids.UUID()
	}
	f := g.GenerateFloor(1, p.Class, FloorSeed(seed, 1))
	w.Floors[0] = f
	w.Location = world.RoomRef{Floor: 1, Room: f.Entry}
	f.Rooms[f.Entry].Visited = true
	return w
}

// EnsureFloor generates floor index on first visit.
func (g *Generator) EnsureFloor(w *world.World, index int) *world.Floor {
	if f := w.Floor(index); f != nil {
		return f
	}
	f := g.GenerateFloor(index, w.Player.Class, FloorSeed(w.Seed, index))
	w.Floors[index-1] = f
	return f
}

// GenerateFloor builds one connected floor of 10 to 15 rooms.
func (g *Generator) GenerateFloor(index int, class character.Class, seed uint64) *world.Floor {
	rng := dice.New(seed)
	theme := world.ThemeForFloor(index)
	n := rng.Between(world.MinFloorSize, world.MaxFloorSize)

	lay, ok := g.spanningTree(rng, n)
	if !ok {
		g.logger.Debug().Int("floor", index).Int("rooms", n).Msg("room placement exhausted, using linear layout")
		lay = linearLayout(n)
	}

	f := &world.Floor{Index: index, Theme: theme.ID, Seed: seed, Entry: 0}
	for i, c := range lay.cells {
		f.Rooms = append(f.Rooms, &world.Room{
			Index:   i,
			Floor:   index,
			X:       c.x,
			Y:       c.y,
			Type:    world.RoomOrdinary,
			Exits:   map[world.Direction]world.Exit{},
			Enemies: []world.Enemy{},
			Items:   []item.Item{},
			Weapons: []item.Weapon{},
		})
	}
	for _, e := range lay.edges {
		link(f, e.from, e.to, e.dir)
	}

	f.BossRoom = farthestLeaf(f)
	g.addLoops(rng, f, lay)

	boss, _ := world.BossForFloor(index)
	bossRoom := f.Rooms[f.BossRoom]
	bossRoom.Type = world.RoomBossChamber
	bossRoom.Template = "boss-" + boss.ID
	bossRoom.Name = boss.Name + "'s Chamber"
	bossRoom.Physical = boss.Intro
	bossRoom.Atmosphere = "The way forward lies beyond whatever waits here."
	f.Boss = world.BossState{ID: boss.ID}

	g.designateSpecials(rng, f)
	assignTemplates(rng, f, theme)

	req := itemization.DropRequest{Class: class, Level: expectedLevel(index), Floor: index}
	g.populateEnemies(rng, f, theme)
	g.populateLoot(rng, f, req)
	placePuzzleItems(rng, f)
	attachStairs(f)

	for _, r := range f.Rooms {
		r.Cleared = len(r.Enemies) == 0 && r.Type != world.RoomBossChamber
	}
	return f
}

// expectedLevel approximates the player's level on a floor for loot rolled at
// generation time.
func expectedLevel(floor int) int {
	return max(1, 2*floor-1)
}

func (g *Generator) spanningTree(rng *dice.Roller, n int) (layout, bool) {
	lay := layout{cells: []cell{{0, 0}}}
	occupied := map[cell]int{{0, 0}: 0}
	failures := 0
	for len(lay.cells) < n {
		if failures > g.PlacementBudget {
			return layout{}, false
		}
		parent := rng.IntN(len(lay.cells))
		free := make([]world.Direction, 0, 4)
		for _, d := range world.Planar {
			dx, dy := d.Offset()
			next := cell{lay.cells[parent].x + dx, lay.cells[parent].y + dy}
			if _, taken := occupied[next]; !taken {
				free = append(free, d)
			}
		}
		if len(free) == 0 {
			failures++
			continue
		}
		d := free[rng.IntN(len(free))]
		dx, dy := d.Offset()
		c := cell{lay.cells[parent].x + dx, lay.cells[parent].y + dy}
		idx := len(lay.cells)
		lay.cells = append(lay.cells, c)
		occupied[c] = idx
		lay.edges = append(lay.edges, edge{from: parent, to: idx, dir: d})
	}
	return lay, true
}

func linearLayout(n int) layout {
	lay := layout{}
	for i := 0; i < n; i++ {
		lay.cells = append(lay.cells, cell{i, 0})
		if i > 0 {
			lay.edges = append(lay.edges, edge{from: i - 1, to: i, dir: world.East})
		}
	}
	return lay
}

func link(f *world.Floor, from, to int, d world.Direction) {
	f.Rooms[from].Connect(d, world.RoomRef{Floor: f.Index, Room: to})
	f.Rooms[to].Connect(d.Opposite(), world.RoomRef{Floor: f.Index, Room: from})
}

func degree(r *world.Room) int {
	n := 0
	for _, d := range world.Planar {
		if _, ok := r.Exits[d]; ok {
			n++
		}
	}
	return n
}

func distances(f *world.Floor) []int {
	dist := make([]int, len(f.Rooms))
	for i := range dist {
		dist[i] = -1
	}
	dist[f.Entry] = 0
	queue := []int{f.Entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range world.Planar {
			ex, ok := f.Rooms[cur].Exits[d]
			if !ok || dist[ex.To.Room] >= 0 {
				continue
			}
			dist[ex.To.Room] = dist[cur] + 1
			queue = append(queue, ex.To.Room)
		}
	}
	return dist
}

// farthestLeaf picks the dead end with the greatest graph distance from the
// entry; ties go to the lowest index.
func farthestLeaf(f *world.Floor) int {
	dist := distances(f)
	best, bestDist := -1, -1
	for i, r := range f.Rooms {
		if i == f.Entry || degree(r) != 1 {
			continue
		}
		if dist[i] > bestDist {
			best, bestDist = i, dist[i]
		}
	}
	if best < 0 {
		return len(f.Rooms) - 1
	}
	return best
}

// addLoops joins grid neighbours that the tree left apart. The boss chamber
// stays a dead end.
func (g *Generator) addLoops(rng *dice.Roller, f *world.Floor, lay layout) {
	at := make(map[cell]int, len(lay.cells))
	for i, c := range lay.cells {
		at[c] = i
	}
	var candidates []edge
	for i, c := range lay.cells {
		if i == f.BossRoom {
			continue
		}
		for _, d := range []world.Direction{world.East, world.South} {
			dx, dy := d.Offset()
			j, ok := at[cell{c.x + dx, c.y + dy}]
			if !ok || j == f.BossRoom {
				continue
			}
			if _, linked := f.Rooms[i].Exits[d]; linked {
				continue
			}
			candidates = append(candidates, edge{from: i, to: j, dir: d})
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	loops := min(rng.IntN(maxLoops+1), len(candidates))
	for _, e := range candidates[:loops] {
		link(f, e.from, e.to, e.dir)
	}
}

// designateSpecials seals 0-2 secret rooms on dead ends and marks armories.
func (g *Generator) designateSpecials(rng *dice.Roller, f *world.Floor) {
	var leaves, others []int
	for i, r := range f.Rooms {
		if i == f.Entry || i == f.BossRoom {
			continue
		}
		if degree(r) == 1 {
			leaves = append(leaves, i)
		} else {
			others = append(others, i)
		}
	}
	rng.Shuffle(len(leaves), func(i, j int) { leaves[i], leaves[j] = leaves[j], leaves[i] })

	secretTypes := []world.RoomType{world.RoomHiddenAlcove, world.RoomLockedVault, world.RoomSacredShrine}
	rng.Shuffle(len(secretTypes), func(i, j int) { secretTypes[i], secretTypes[j] = secretTypes[j], secretTypes[i] })
	secrets := min(rng.IntN(maxSecrets+1), len(leaves))
	for k := 0; k < secrets; k++ {
		r := f.Rooms[leaves[k]]
		r.Type = secretTypes[k]
		r.Sealed = true
		r.Requires = sealKey(r.Type)
	}

	pool := append(append([]int(nil), leaves[secrets:]...), others...)
	sort.Ints(pool)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	armories := 1
	if len(f.Rooms) >= 14 && rng.Chance(0.5) {
		armories = 2
	}
	for k := 0; k < armories && k < len(pool); k++ {
		f.Rooms[pool[k]].Type = world.RoomArmory
	}
}

func sealKey(t world.RoomType) string {
	switch t {
	case world.RoomHiddenAlcove:
		return item.KeyTorch
	case world.RoomLockedVault:
		return item.KeyVaultKey
	case world.RoomSacredShrine:
		return item.KeyMedallion
	}
	return ""
}

// assignTemplates avoids giving a room the same template as an already
// assigned neighbour when the theme has an alternative.
func assignTemplates(rng *dice.Roller, f *world.Floor, theme world.Theme) {
	for _, r := range f.Rooms {
		if r.Type == world.RoomBossChamber {
			continue
		}
		if tpl, ok := world.SpecialTemplate(r.Type); ok {
			applyTemplate(r, tpl)
			continue
		}
		taken := map[string]bool{}
		for _, d := range world.Planar {
			if ex, ok := r.Exits[d]; ok {
				taken[f.Rooms[ex.To.Room].Template] = true
			}
		}
		var options []world.RoomTemplate
		for _, tpl := range theme.Templates {
			if !taken[tpl.ID] {
				options = append(options, tpl)
			}
		}
		if len(options) == 0 {
			options = theme.Templates
		}
		applyTemplate(r, options[rng.IntN(len(options))])
	}
}

func applyTemplate(r *world.Room, tpl world.RoomTemplate) {
	r.Template = tpl.ID
	r.Name = tpl.Name
	r.Physical = tpl.Physical
	r.Atmosphere = tpl.Atmosphere
}

// populateEnemies spreads 15-25 enemies over ordinary rooms, never two of the
// same species in one room.
func (g *Generator) populateEnemies(rng *dice.Roller, f *world.Floor, theme world.Theme) {
	var eligible []int
	for i, r := range f.Rooms {
		if i != f.Entry && !r.Type.Special() {
			eligible = append(eligible, i)
		}
	}
	pool := world.SpeciesForTier(theme.Tier)
	perRoom := min(maxPerRoom, len(pool))
	if len(eligible) == 0 || perRoom == 0 {
		return
	}
	target := min(rng.Between(minEnemies, maxEnemies), perRoom*len(eligible))

	counts := make(map[int]int, len(eligible))
	open := append([]int(nil), eligible...)
	for placed := 0; placed < target && len(open) > 0; placed++ {
		k := rng.IntN(len(open))
		counts[open[k]]++
		if counts[open[k]] == perRoom {
			open = append(open[:k], open[k+1:]...)
		}
	}

	for _, idx := range eligible {
		n := counts[idx]
		if n == 0 {
			continue
		}
		order := rng.Perm(len(pool))
		for _, s := range order[:n] {
			f.Rooms[idx].Enemies = append(f.Rooms[idx].Enemies, g.spawn(rng, pool[s]))
		}
	}
}

func (g *Generator) spawn(rng *dice.Roller, s world.Species) world.Enemy {
	gold, _ := g.items.RollGold(rng)
	return world.Enemy{
		ID:        rng.UUID(),
		Species:   s.ID,
		Name:      s.Name,
		Health:    s.Health,
		MaxHealth: s.Health,
		Damage:    s.Damage,
		XP:        s.XP,
		Gold:      gold,
	}
}

func (g *Generator) populateLoot(rng *dice.Roller, f *world.Floor, req itemization.DropRequest) {
	for i, r := range f.Rooms {
		switch r.Type {
		case world.RoomArmory:
			caches := rng.Between(2, 3)
			for c := 0; c < caches; c++ {
				if w, ok := g.items.RollWeaponDrop(rng, req); ok {
					r.Weapons = append(r.Weapons, w)
				}
			}
		case world.RoomLockedVault:
			vaultReq := req
			vaultReq.RareBias += vaultBias
			for c := rng.Between(1, 2); c > 0; c-- {
				r.Weapons = append(r.Weapons, g.items.RollCache(rng, vaultReq))
			}
			r.Gold = rng.Between(10, 25)
		case world.RoomHiddenAlcove:
			for c := 0; c < 2; c++ {
				if it, ok := g.items.RollConsumable(rng); ok {
					r.Items = append(r.Items, it)
				}
			}
			r.Items = append(r.Items, g.items.RollTrinket(rng))
		case world.RoomSacredShrine:
			r.Items = append(r.Items, item.MustLookup(item.WearableKeys[rng.IntN(len(item.WearableKeys))]))
			r.Items = append(r.Items, item.MustLookup("ultimate health potion"))
		case world.RoomOrdinary:
			if i == f.Entry || !rng.Chance(itemization.RoomCacheChance(f.Index)) {
				continue
			}
			r.Type = world.RoomTreasure
			if rng.Chance(0.5) {
				r.Weapons = append(r.Weapons, g.items.RollCache(rng, req))
			} else if it, ok := g.items.RollConsumable(rng); ok {
				r.Items = append(r.Items, it)
			} else {
				r.Items = append(r.Items, g.items.RollTrinket(rng))
			}
		}
	}
}

// placePuzzleItems seeds each puzzle item exactly once, outside the boss
// chamber and outside any sealed room.
func placePuzzleItems(rng *dice.Roller, f *world.Floor) {
	var hosts []int
	for i, r := range f.Rooms {
		if r.Type != world.RoomBossChamber && !r.Sealed {
			hosts = append(hosts, i)
		}
	}
	for _, key := range item.PuzzleKeys {
		r := f.Rooms[hosts[rng.IntN(len(hosts))]]
		r.Items = append(r.Items, item.MustLookup(key))
	}
}

func attachStairs(f *world.Floor) {
	if f.Index > 1 {
		f.Rooms[f.Entry].Exits[world.Up] = world.Exit{To: world.RoomRef{Floor: f.Index - 1, Room: world.StairsLanding}}
	}
	if f.Index < world.MaxFloors {
		f.Rooms[f.BossRoom].Exits[world.Down] = world.Exit{To: world.RoomRef{Floor: f.Index + 1, Room: 0}, Locked: true}
	}
}
