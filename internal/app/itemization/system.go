package itemization

import (
	"math"

	"github.com/google/uuid"

	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/platform/dice"
)

const (
	GoldenGunChance    = 0.0002
	BaseDropChance     = 0.35
	DropChancePerFloor = 0.02
	MaxDropChance      = 0.60
	GoldChance         = 0.60
	MinGold            = 2
	MaxGold            = 10
	ConsumableChance   = 0.30
	// MinCommonWeight is the floor the rare bias cannot push common below.
	MinCommonWeight = 5
)

// rarityWeights holds one row per floor over item.Rarities; each row sums to 100.
var rarityWeights = [10][6]int{
	{60, 25, 10, 4, 1, 0},
	{55, 27, 12, 5, 1, 0},
	{50, 28, 14, 6, 2, 0},
	{45, 28, 16, 8, 3, 0},
	{40, 28, 18, 9, 4, 1},
	{35, 27, 20, 11, 5, 2},
	{30, 26, 22, 13, 6, 3},
	{25, 25, 23, 15, 8, 4},
	{20, 24, 24, 17, 10, 5},
	{15, 22, 25, 19, 12, 7},
}

type damagePool struct{ lo, hi int }

var basePools = map[item.WeaponType]damagePool{
	item.WeaponMelee:   {10, 16},
	item.WeaponMagic:   {8, 14},
	item.WeaponStealth: {9, 15},
}

var typeNouns = map[item.WeaponType][]string{
	item.WeaponMelee:   {"Sword", "Axe", "Hammer", "Spear", "Blade"},
	item.WeaponMagic:   {"Staff", "Wand", "Orb", "Tome", "Crystal"},
	item.WeaponStealth: {"Dagger", "Bow", "Claws", "Shiv", "Needle"},
}

var materials = map[item.Rarity][]string{
	item.RarityCommon:    {"Iron", "Steel", "Bronze", "Copper", "Stone"},
	item.RarityUncommon:  {"Silver", "Tempered", "Reinforced", "Polished", "Sharpened"},
	item.RarityRare:      {"Enchanted", "Mystic", "Runic", "Blessed", "Crystal"},
	item.RarityEpic:      {"Dragon", "Phoenix", "Shadow", "Storm", "Frost"},
	item.RarityLegendary: {"Celestial", "Infernal", "Divine", "Ancient", "Eternal"},
	item.RarityMythic:    {"Cosmos", "Reality", "Infinity", "Quantum", "Supreme"},
}

var goldenGunNames = []string{
	"Excalibur's Vengeance",
	"Dragonslayer Supreme",
	"Godkiller Mk.VII",
	"The Infinity Decimator",
	"Cosmos Ender",
	"Reality Ripper",
}

// DropRequest is the context a weapon roll is made in.
type DropRequest struct {
	Class character.Class
	Level int
	Floor int
	// RareBias is in percentage points.
	RareBias int
}

// System holds the drop policy. It keeps no random state; callers pass the
// session's roller into every roll.
type System struct {
	GoldenGunChance float64
}

func New() *System {
	return &System{GoldenGunChance: GoldenGunChance}
}

// DropChance is the probability a regular roll yields a weapon at all.
func DropChance(floor int) float64 {
	if floor < 1 {
		floor = 1
	}
	return math.Min(BaseDropChance+DropChancePerFloor*float64(floor-1), MaxDropChance)
}

// RoomCacheChance is the probability an ordinary room holds a loot cache.
func RoomCacheChance(floor int) float64 {
	if floor < 1 {
		floor = 1
	}
	return 0.35 + 0.005*float64(floor-1)
}

// RollWeaponDrop checks the Golden Gun first, then the drop chance, then the
// floor's rarity table.
func (s *System) RollWeaponDrop(rng *dice.Roller, req DropRequest) (item.Weapon, bool) {
	if gun, ok := s.rollGoldenGun(rng); ok {
		return gun, true
	}
	if !rng.Chance(DropChance(req.Floor)) {
		return item.Weapon{}, false
	}
	return s.forge(rng, req), true
}

// RollCache is the drop used for weapon caches: no drop check, same override.
func (s *System) RollCache(rng *dice.Roller, req DropRequest) item.Weapon {
	if gun, ok := s.rollGoldenGun(rng); ok {
		return gun
	}
	return s.forge(rng, req)
}

func (s *System) rollGoldenGun(rng *dice.Roller) (item.Weapon, bool) {
	if !rng.Chance(s.GoldenGunChance) {
		return item.Weapon{}, false
	}
	return GoldenGun(rng.UUID(), goldenGunNames[rng.IntN(len(goldenGunNames))]), true
}

// GoldenGun builds a Golden Gun with a full set of uses.
func GoldenGun(id uuid.UUID, name string) item.Weapon {
	return item.Weapon{
		ID:            id,
		Name:          name,
		Type:          item.WeaponDivine,
		Rarity:        item.RarityDivine,
		BaseDamage:    999,
		UsesRemaining: item.GoldenGunUses,
	}
}

// AncientChest rolls the hidden chest the first boss of a run unseals: a
// legendary or mythic weapon of the class affinity and a restock of potions.
func (s *System) AncientChest(rng *dice.Roller, class character.Class) (item.Weapon, []item.Item) {
	rarity := item.RarityLegendary
	if rng.Chance(0.5) {
		rarity = item.RarityMythic
	}
	items := make([]item.Item, 0, len(ancientChestKeys))
	for _, k := range ancientChestKeys {
		items = append(items, item.MustLookup(k))
	}
	return s.forgeRarity(rng, class, rarity), items
}

var ancientChestKeys = []string{"ultimate health potion", "ultimate health potion", "magic scroll", "ice crystal"}

func (s *System) forge(rng *dice.Roller, req DropRequest) item.Weapon {
	rarity := item.Rarities[rng.Weighted(RarityWeights(req.Floor, req.RareBias))]
	return s.forgeRarity(rng, req.Class, rarity)
}

func (s *System) forgeRarity(rng *dice.Roller, class character.Class, rarity item.Rarity) item.Weapon {
	spec, ok := class.Spec()
	wt := spec.Affinity
	if !ok {
		wt = item.WeaponMelee
	}
	pool := basePools[wt]
	nouns := typeNouns[wt]
	mats := materials[rarity]
	return item.Weapon{
		ID:         rng.UUID(),
		Name:       mats[rng.IntN(len(mats))] + " " + nouns[rng.IntN(len(nouns))],
		Type:       wt,
		Rarity:     rarity,
		BaseDamage: rng.Between(pool.lo, pool.hi),
	}
}

// RarityWeights returns the floor's table with bias percentage points moved
// from common to rare, epic and legendary.
func RarityWeights(floor, bias int) []int {
	if floor < 1 {
		floor = 1
	}
	if floor > len(rarityWeights) {
		floor = len(rarityWeights)
	}
	row := rarityWeights[floor-1]
	out := append([]int(nil), row[:]...)
	if bias <= 0 {
		return out
	}
	moved := min(bias, max(0, out[0]-MinCommonWeight))
	out[0] -= moved
	share := moved / 3
	out[2] += share + moved%3
	out[3] += share
	out[4] += share
	return out
}

// RollGold is independent of weapon drops.
func (s *System) RollGold(rng *dice.Roller) (int, bool) {
	if !rng.Chance(GoldChance) {
		return 0, false
	}
	return rng.Between(MinGold, MaxGold), true
}

// RollConsumable is the non-weapon drop after a regular victory.
func (s *System) RollConsumable(rng *dice.Roller) (item.Item, bool) {
	if !rng.Chance(ConsumableChance) {
		return item.Item{}, false
	}
	return item.MustLookup(item.ConsumableKeys[rng.IntN(len(item.ConsumableKeys))]), true
}

// RollTrinket picks an experience item or wearable for secret rooms and caches.
func (s *System) RollTrinket(rng *dice.Roller) item.Item {
	keys := item.ExperienceKeys
	if rng.Chance(0.5) {
		keys = item.WearableKeys
	}
	return item.MustLookup(keys[rng.IntN(len(keys))])
}

// StartingWeapons are the three offered at character creation.
func StartingWeapons() []item.Weapon {
	return []item.Weapon{
		{ID: uuid.New(), Name: "Iron Sword", Type: item.WeaponMelee, Rarity: item.RarityCommon, BaseDamage: 15},
		{ID: uuid.New(), Name: "Wooden Staff", Type: item.WeaponMagic, Rarity: item.RarityCommon, BaseDamage: 10},
		{ID: uuid.New(), Name: "Steel Dagger", Type: item.WeaponStealth, Rarity: item.RarityCommon, BaseDamage: 12},
	}
}

// BossReward returns the boss's reward slot for class, with a fresh id.
func BossReward(rng *dice.Roller, rewards map[character.Class]item.Weapon, class character.Class) (item.Weapon, bool) {
	w, ok := rewards[class]
	if !ok {
		return item.Weapon{}, false
	}
	w.ID = rng.UUID()
	return w, true
}
