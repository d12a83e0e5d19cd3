package item

import (
	"math"

	"github.com/google/uuid"
)

type WeaponType string

const (
	WeaponMelee   WeaponType = "melee"
	WeaponMagic   WeaponType = "magic"
	WeaponStealth WeaponType = "stealth"
	WeaponDivine  WeaponType = "divine"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
	RarityDivine    Rarity = "divine"
)

// Rarities lists the droppable tiers in ascending order. Divine is only ever
// produced by the Golden Gun roll.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary, RarityMythic}

var rarityMultipliers = map[Rarity]float64{
	RarityCommon:    1.0,
	RarityUncommon:  1.3,
	RarityRare:      1.6,
	RarityEpic:      2.0,
	RarityLegendary: 2.5,
	RarityMythic:    3.0,
	RarityDivine:    999.0,
}

func (r Rarity) Multiplier() float64 {
	if m, ok := rarityMultipliers[r]; ok {
		return m
	}
	return 1.0
}

func (r Rarity) Valid() bool {
	_, ok := rarityMultipliers[r]
	return ok
}

const (
	// LevelScaling is the per-level damage bonus applied on top of rarity.
	LevelScaling  = 0.05
	GoldenGunUses = 6
)

type Weapon struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Type          WeaponType `json:"type"`
	Rarity        Rarity     `json:"rarity"`
	BaseDamage    int        `json:"base_damage"`
	UsesRemaining int        `json:"uses_remaining,omitempty"`
}

func (w Weapon) IsGoldenGun() bool {
	return w.Rarity == RarityDivine
}

// EffectiveDamage is recomputed from the wielder's current level on every call.
func (w Weapon) EffectiveDamage(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Round(float64(w.BaseDamage) * w.Rarity.Multiplier() * (1 + LevelScaling*float64(level))))
}
