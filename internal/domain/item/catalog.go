package item

import "strings"

type Kind string

const (
	KindHealing    Kind = "healing"
	KindMana       Kind = "mana"
	KindExperience Kind = "experience"
	KindWearable   Kind = "wearable"
	KindPuzzle     Kind = "puzzle"
)

// FullRestore as an Amount restores the resource to its maximum.
const FullRestore = -1

// Stat names used by wearables and debuffs.
const (
	StatStrength     = "strength"
	StatIntelligence = "intelligence"
	StatAgility      = "agility"
)

// Puzzle item keys. Each is placed exactly once per floor.
const (
	KeyTorch     = "torch"
	KeyVaultKey  = "vault key"
	KeyMedallion = "medallion"
	KeyMap       = "dungeon map"
)

type Item struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Amount int    `json:"amount,omitempty"`
	Stat   string `json:"stat,omitempty"`
}

// Consumable reports whether the item can be used as a potion in or out of combat.
func (i Item) Consumable() bool {
	return i.Kind == KindHealing || i.Kind == KindMana
}

var catalog = map[string]Item{
	"health potion":          {Key: "health potion", Name: "Health Potion", Kind: KindHealing, Amount: 30},
	"ultimate health potion": {Key: "ultimate health potion", Name: "Ultimate Health Potion", Kind: KindHealing, Amount: FullRestore},
	"magic scroll":           {Key: "magic scroll", Name: "Magic Scroll", Kind: KindMana, Amount: 25},
	"ice crystal":            {Key: "ice crystal", Name: "Ice Crystal", Kind: KindMana, Amount: 50},

	"experience gem": {Key: "experience gem", Name: "Experience Gem", Kind: KindExperience, Amount: 50},
	"victory scroll": {Key: "victory scroll", Name: "Victory Scroll", Kind: KindExperience, Amount: 75},
	"wisdom gem":     {Key: "wisdom gem", Name: "Wisdom Gem", Kind: KindExperience, Amount: 100},

	"armor piece":       {Key: "armor piece", Name: "Armor Piece", Kind: KindWearable, Amount: 5, Stat: StatStrength},
	"cursed amulet":     {Key: "cursed amulet", Name: "Cursed Amulet", Kind: KindWearable, Amount: 3, Stat: StatIntelligence},
	"nature's blessing": {Key: "nature's blessing", Name: "Nature's Blessing", Kind: KindWearable, Amount: 4, Stat: StatAgility},
	"mana flower":       {Key: "mana flower", Name: "Mana Flower", Kind: KindWearable, Amount: 4, Stat: StatIntelligence},

	KeyTorch:     {Key: KeyTorch, Name: "Torch", Kind: KindPuzzle},
	KeyVaultKey:  {Key: KeyVaultKey, Name: "Vault Key", Kind: KindPuzzle},
	KeyMedallion: {Key: KeyMedallion, Name: "Medallion", Kind: KindPuzzle},
	KeyMap:       {Key: KeyMap, Name: "Dungeon Map", Kind: KindPuzzle},
}

// Lookup returns the catalog entry for key, matched case-insensitively.
func Lookup(key string) (Item, bool) {
	it, ok := catalog[strings.ToLower(strings.TrimSpace(key))]
	return it, ok
}

// MustLookup is for static tables only.
func MustLookup(key string) Item {
	it, ok := Lookup(key)
	if !ok {
		panic("item: unknown catalog key " + key)
	}
	return it
}

// Keys of each kind, in a stable order for seeded rolls.
var (
	ConsumableKeys = []string{"health potion", "magic scroll", "health potion", "ice crystal", "ultimate health potion"}
	ExperienceKeys = []string{"experience gem", "victory scroll", "wisdom gem"}
	WearableKeys   = []string{"armor piece", "cursed amulet", "nature's blessing", "mana flower"}
	PuzzleKeys     = []string{KeyTorch, KeyVaultKey, KeyMedallion, KeyMap}
)
