package world

import (
	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
)

// BossSpec is the fixed identity of a floor's boss.
type BossSpec struct {
	ID            string
	Name          string
	Floor         int
	BaseHealth    int
	HealthScaling int
	Damage        int
	XP            int
	StatBonus     int
	Intro         string
	Special       SpecialAttack
	Rewards       map[character.Class]item.Weapon
}

// MinLevel is the player level required to start the fight.
func (b BossSpec) MinLevel() int {
	return 2 * b.Floor
}

// HealthAt scales the boss to the challenger's level.
func (b BossSpec) HealthAt(level int) int {
	return b.BaseHealth + level*b.HealthScaling
}

func rewards(rarity item.Rarity, floor int, melee, magic, stealth string) map[character.Class]item.Weapon {
	return map[character.Class]item.Weapon{
		character.ClassWarrior: {Name: melee, Type: item.WeaponMelee, Rarity: rarity, BaseDamage: 14 + 2*floor},
		character.ClassMage:    {Name: magic, Type: item.WeaponMagic, Rarity: rarity, BaseDamage: 12 + 2*floor},
		character.ClassRogue:   {Name: stealth, Type: item.WeaponStealth, Rarity: rarity, BaseDamage: 13 + 2*floor},
	}
}

var bosses = [MaxFloors]BossSpec{
	{
		ID: "goblin-king", Name: "Goblin King", Floor: 1,
		BaseHealth: 90, HealthScaling: 5, Damage: 14, XP: 120, StatBonus: 1,
		Intro:   "The Goblin King rises from a throne of stolen shields.",
		Special: SpecialAttack{Name: "Rallying Cry", Kind: EffectExtraDamage, Multiplier: 1.5, Trigger: Trigger{Kind: TriggerCadence, Every: 3}},
		Rewards: rewards(item.RarityLegendary, 1, "Kingsplitter Axe", "Hexbone Wand", "Cutpurse's Fang"),
	},
	{
		ID: "bone-lord", Name: "Bone Lord", Floor: 2,
		BaseHealth: 110, HealthScaling: 6, Damage: 17, XP: 150, StatBonus: 2,
		Intro:   "A towering skeleton assembles itself from the ossuary walls.",
		Special: SpecialAttack{Name: "Marrow Drain", Kind: EffectHealDenial, Duration: 2, Trigger: Trigger{Kind: TriggerThreshold, Threshold: 0.5}},
		Rewards: rewards(item.RarityLegendary, 2, "Ossuary Cleaver", "Lich-Finger Staff", "Marrow Needle"),
	},
	{
		ID: "drowned-matriarch", Name: "Drowned Matriarch", Floor: 3,
		BaseHealth: 120, HealthScaling: 7, Damage: 19, XP: 170, StatBonus: 2,
		Intro:   "The water parts around a crowned corpse trailing kelp.",
		Special: SpecialAttack{Name: "Undertow", Kind: EffectDebuff, Stat: item.StatAgility, Magnitude: 4, Duration: 2, Trigger: Trigger{Kind: TriggerCadence, Every: 3}},
		Rewards: rewards(item.RarityLegendary, 3, "Tidebreaker", "Coral Scepter", "Riptide Shiv"),
	},
	{
		ID: "sporemother", Name: "Sporemother", Floor: 4,
		BaseHealth: 130, HealthScaling: 7, Damage: 21, XP: 190, StatBonus: 2,
		Intro:   "A cathedral of fungus shudders and opens a hundred gills.",
		Special: SpecialAttack{Name: "Choking Spores", Kind: EffectHealDenial, Duration: 3, Trigger: Trigger{Kind: TriggerCadenceBelow, Every: 3, Threshold: 0.5}},
		Rewards: rewards(item.RarityLegendary, 4, "Rotwood Maul", "Mycelium Orb", "Sporecap Claws"),
	},
	{
		ID: "arena-champion", Name: "Arena Champion", Floor: 5,
		BaseHealth: 120, HealthScaling: 8, Damage: 22, XP: 200, StatBonus: 2,
		Intro:   "The Arena Champion raises a scarred shield to a crowd long dead.",
		Special: SpecialAttack{Name: "Champion's Fury", Kind: EffectExtraDamage, Multiplier: 1.55, Trigger: Trigger{Kind: TriggerCadenceBelow, Every: 3, Threshold: 0.5}},
		Rewards: rewards(item.RarityLegendary, 5, "Gladius of Victory", "Champion's Scepter", "Twin Blades of Honor"),
	},
	{
		ID: "gilded-colossus", Name: "Gilded Colossus", Floor: 6,
		BaseHealth: 160, HealthScaling: 9, Damage: 24, XP: 230, StatBonus: 3,
		Intro:   "A colossus of coin and bullion lurches off its plinth.",
		Special: SpecialAttack{Name: "Golden Crush", Kind: EffectExtraDamage, Multiplier: 1.8, Trigger: Trigger{Kind: TriggerThreshold, Threshold: 0.4}},
		Rewards: rewards(item.RarityLegendary, 6, "Aurum Warhammer", "Gilded Tome", "Gilded Stiletto"),
	},
	{
		ID: "dark-lord", Name: "Dark Lord", Floor: 7,
		BaseHealth: 150, HealthScaling: 10, Damage: 27, XP: 260, StatBonus: 3,
		Intro:   "The Dark Lord steps from the shadow, and the torches gutter.",
		Special: SpecialAttack{Name: "Dark Energy", Kind: EffectExtraDamage, Multiplier: 1.6, Trigger: Trigger{Kind: TriggerCadenceBelow, Every: 3, Threshold: 0.5}},
		Rewards: rewards(item.RarityLegendary, 7, "Excalibur", "Staff of Arcane Power", "Shadow Fang"),
	},
	{
		ID: "frost-titan", Name: "Frost Titan", Floor: 8,
		BaseHealth: 180, HealthScaling: 12, Damage: 30, XP: 290, StatBonus: 3,
		Intro:   "Ice cracks like thunder as the Frost Titan stands.",
		Special: SpecialAttack{Name: "Glacial Storm", Kind: EffectDebuff, Stat: item.StatStrength, Magnitude: 6, Duration: 3, Trigger: Trigger{Kind: TriggerCadenceBelow, Every: 3, Threshold: 0.5}},
		Rewards: rewards(item.RarityLegendary, 8, "Frostbane Greatsword", "Staff of Eternal Winter", "Icicle Piercer"),
	},
	{
		ID: "forge-tyrant", Name: "Forge Tyrant", Floor: 9,
		BaseHealth: 200, HealthScaling: 13, Damage: 32, XP: 330, StatBonus: 3,
		Intro:   "The Forge Tyrant drags a glowing anvil on a chain.",
		Special: SpecialAttack{Name: "Molten Brand", Kind: EffectHealDenial, Duration: 3, Trigger: Trigger{Kind: TriggerCadence, Every: 4}},
		Rewards: rewards(item.RarityLegendary, 9, "Anvilheart", "Emberglass Crystal", "Cinder Needle"),
	},
	{
		ID: "abyssal-sovereign", Name: "Abyssal Sovereign", Floor: 10,
		BaseHealth: 240, HealthScaling: 15, Damage: 36, XP: 400, StatBonus: 4,
		Intro:   "The Abyssal Sovereign opens eyes that were never meant to open.",
		Special: SpecialAttack{Name: "Unmaking", Kind: EffectDebuff, Stat: item.StatIntelligence, Magnitude: 8, Duration: 3, Trigger: Trigger{Kind: TriggerCadence, Every: 3}},
		Rewards: rewards(item.RarityLegendary, 10, "Worldsunder", "Voidheart Orb", "Nullshade Blade"),
	},
}

// BossForFloor returns the boss guarding the 1-based floor index.
func BossForFloor(floor int) (BossSpec, bool) {
	if floor < 1 || floor > MaxFloors {
		return BossSpec{}, false
	}
	return bosses[floor-1], true
}

func LookupBoss(id string) (BossSpec, bool) {
	for _, b := range bosses {
		if b.ID == id {
			return b, true
		}
	}
	return BossSpec{}, false
}
