package character

import (
	"strings"

	"github.com/google/uuid"

	"dungeon-server/internal/domain/item"
	apperrors "dungeon-server/internal/platform/errors"
)

type Class string

const (
	ClassWarrior Class = "warrior"
	ClassMage    Class = "mage"
	ClassRogue   Class = "rogue"
)

const MaxTier = 3

var (
	ErrInventoryFull  = apperrors.New(apperrors.CodeInventoryFull, "inventory full")
	ErrItemNotFound   = apperrors.New(apperrors.CodeItemNotFound, "item not found")
	ErrEmptyInventory = apperrors.New(apperrors.CodeEmptyInventory, "no usable items")
	ErrInvalidClass   = apperrors.New(apperrors.CodeInvalidClass, "unknown class")
)

type Stats struct {
	Strength     int `json:"strength"`
	Intelligence int `json:"intelligence"`
	Agility      int `json:"agility"`
}

func (s Stats) Add(o Stats) Stats {
	return Stats{Strength: s.Strength + o.Strength, Intelligence: s.Intelligence + o.Intelligence, Agility: s.Agility + o.Agility}
}

// Get returns the named stat, or 0 for an unknown name.
func (s Stats) Get(name string) int {
	switch name {
	case item.StatStrength:
		return s.Strength
	case item.StatIntelligence:
		return s.Intelligence
	case item.StatAgility:
		return s.Agility
	}
	return 0
}

func (s *Stats) Bump(name string, delta int) {
	switch name {
	case item.StatStrength:
		s.Strength += delta
	case item.StatIntelligence:
		s.Intelligence += delta
	case item.StatAgility:
		s.Agility += delta
	}
}

type ClassSpec struct {
	Health         int
	Mana           int
	Stats          Stats
	HealthPerLevel int
	ManaPerLevel   int
	Growth         Stats
	InventorySlots int
	Affinity       item.WeaponType
	Titles         [MaxTier]string
}

var specs = map[Class]ClassSpec{
	ClassWarrior: {
		Health: 120, Mana: 50,
		Stats:          Stats{Strength: 15, Intelligence: 8, Agility: 10},
		HealthPerLevel: 15, ManaPerLevel: 10,
		Growth:         Stats{Strength: 3, Intelligence: 1, Agility: 1},
		InventorySlots: 8,
		Affinity:       item.WeaponMelee,
		Titles:         [MaxTier]string{"Warrior", "Berserker", "Paladin"},
	},
	ClassMage: {
		Health: 80, Mana: 150,
		Stats:          Stats{Strength: 8, Intelligence: 15, Agility: 10},
		HealthPerLevel: 8, ManaPerLevel: 10,
		Growth:         Stats{Strength: 1, Intelligence: 3, Agility: 1},
		InventorySlots: 6,
		Affinity:       item.WeaponMagic,
		Titles:         [MaxTier]string{"Mage", "Sorcerer", "Archmage"},
	},
	ClassRogue: {
		Health: 100, Mana: 75,
		Stats:          Stats{Strength: 10, Intelligence: 10, Agility: 15},
		HealthPerLevel: 12, ManaPerLevel: 10,
		Growth:         Stats{Strength: 1, Intelligence: 1, Agility: 3},
		InventorySlots: 10,
		Affinity:       item.WeaponStealth,
		Titles:         [MaxTier]string{"Rogue", "Assassin", "Shadow Master"},
	},
}

// Classes lists the base classes in menu order.
var Classes = []Class{ClassWarrior, ClassMage, ClassRogue}

func ParseClass(s string) (Class, error) {
	c := Class(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := specs[c]; !ok {
		return "", ErrInvalidClass
	}
	return c, nil
}

func (c Class) Spec() (ClassSpec, bool) {
	s, ok := specs[c]
	return s, ok
}

type Player struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Class      Class     `json:"class"`
	Tier       int       `json:"tier"`
	Level      int       `json:"level"`
	Experience int       `json:"experience"`
	Health     int       `json:"health"`
	MaxHealth  int       `json:"max_health"`
	Mana       int       `json:"mana"`
	MaxMana    int       `json:"max_mana"`
	Stats      Stats     `json:"stats"`
	Gold       int       `json:"gold"`
	// RareBias is in percentage points, raised by class tier upgrades.
	RareBias int `json:"rare_bias"`
	// UpgradedAt is the last level a tier upgrade was taken at.
	UpgradedAt int `json:"upgraded_at"`
	// ChestUnsealed is set by the first boss victory of the run.
	ChestUnsealed bool `json:"chest_unsealed,omitempty"`

	Weapon    *item.Weapon  `json:"weapon,omitempty"`
	Items     []item.Item   `json:"items"`
	Weapons   []item.Weapon `json:"weapons"`
	Wearables []item.Item   `json:"wearables"`
}

func New(name string, class Class, weapon item.Weapon) (*Player, error) {
	spec, ok := specs[class]
	if !ok {
		return nil, ErrInvalidClass
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = spec.Titles[0]
	}
	w := weapon
	return &Player{
		ID:        uuid.New(),
		Name:      name,
		Class:     class,
		Tier:      1,
		Level:     1,
		Health:    spec.Health,
		MaxHealth: spec.Health,
		Mana:      spec.Mana,
		MaxMana:   spec.Mana,
		Stats:     spec.Stats,
		Weapon:    &w,
		Items:     []item.Item{},
		Weapons:   []item.Weapon{},
		Wearables: []item.Item{},
	}, nil
}

func (p *Player) Title() string {
	spec := specs[p.Class]
	t := p.Tier
	if t < 1 {
		t = 1
	}
	if t > MaxTier {
		t = MaxTier
	}
	return spec.Titles[t-1]
}

// Capacity grows by one slot every two levels and two slots per tier.
func (p *Player) Capacity() int {
	return Capacity(p.Class, p.Level, p.Tier)
}

func Capacity(class Class, level, tier int) int {
	return specs[class].InventorySlots + (level-1)/2 + (tier-1)*2
}

func (p *Player) InventoryCount() int {
	return len(p.Items) + len(p.Weapons)
}

// EffectiveStats adds worn item bonuses to the base stats.
func (p *Player) EffectiveStats() Stats {
	s := p.Stats
	for _, w := range p.Wearables {
		s.Bump(w.Stat, w.Amount)
	}
	return s
}

func (p *Player) Alive() bool {
	return p.Health > 0
}

func (p *Player) AddItem(it item.Item) error {
	if p.InventoryCount() >= p.Capacity() {
		return ErrInventoryFull
	}
	p.Items = append(p.Items, it)
	return nil
}

func (p *Player) AddWeapon(w item.Weapon) error {
	if p.InventoryCount() >= p.Capacity() {
		return ErrInventoryFull
	}
	p.Weapons = append(p.Weapons, w)
	return nil
}

// Wear equips a wearable without using an inventory slot.
func (p *Player) Wear(it item.Item) {
	p.Wearables = append(p.Wearables, it)
}

// HasItem reports whether an item with key is carried.
func (p *Player) HasItem(key string) bool {
	return p.itemIndex(key) >= 0
}

func (p *Player) RemoveItem(key string) (item.Item, error) {
	idx := p.itemIndex(key)
	if idx < 0 {
		return item.Item{}, ErrItemNotFound
	}
	it := p.Items[idx]
	p.Items = append(p.Items[:idx], p.Items[idx+1:]...)
	return it, nil
}

func (p *Player) itemIndex(key string) int {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, it := range p.Items {
		if it.Key == key || strings.ToLower(it.Name) == key {
			return i
		}
	}
	return -1
}

func (p *Player) FindItem(key string) (item.Item, bool) {
	idx := p.itemIndex(key)
	if idx < 0 {
		return item.Item{}, false
	}
	return p.Items[idx], true
}

// Consume uses a healing or mana item and returns it with the amount restored.
func (p *Player) Consume(key string) (item.Item, int, error) {
	if _, ok := p.FirstConsumable(); !ok {
		return item.Item{}, 0, ErrEmptyInventory
	}
	it, ok := p.FindItem(key)
	if !ok || !it.Consumable() {
		return item.Item{}, 0, ErrItemNotFound
	}
	if _, err := p.RemoveItem(it.Key); err != nil {
		return item.Item{}, 0, err
	}
	if it.Kind == item.KindHealing {
		return it, p.Heal(it.Amount), nil
	}
	return it, p.RestoreMana(it.Amount), nil
}

// FirstConsumable returns the key of the first potion-like item carried.
func (p *Player) FirstConsumable() (string, bool) {
	for _, it := range p.Items {
		if it.Consumable() {
			return it.Key, true
		}
	}
	return "", false
}

// FindWeapon matches by id string or case-insensitive name.
func (p *Player) FindWeapon(ref string) (int, bool) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	for i, w := range p.Weapons {
		if w.ID.String() == ref || strings.ToLower(w.Name) == ref {
			return i, true
		}
	}
	return -1, false
}

func (p *Player) RemoveWeapon(idx int) item.Weapon {
	w := p.Weapons[idx]
	p.Weapons = append(p.Weapons[:idx], p.Weapons[idx+1:]...)
	return w
}

// Equip swaps the weapon at idx with the equipped one.
func (p *Player) Equip(idx int) item.Weapon {
	next := p.Weapons[idx]
	if p.Weapon != nil {
		p.Weapons[idx] = *p.Weapon
	} else {
		p.Weapons = append(p.Weapons[:idx], p.Weapons[idx+1:]...)
	}
	p.Weapon = &next
	return next
}

// DestroyWeapon unequips and removes every copy of the weapon with id.
func (p *Player) DestroyWeapon(id uuid.UUID) {
	if p.Weapon != nil && p.Weapon.ID == id {
		p.Weapon = nil
	}
	kept := p.Weapons[:0]
	for _, w := range p.Weapons {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	p.Weapons = kept
}

// Heal returns the amount actually restored.
func (p *Player) Heal(amount int) int {
	before := p.Health
	if amount == item.FullRestore {
		p.Health = p.MaxHealth
	} else {
		p.Health = min(p.MaxHealth, p.Health+amount)
	}
	return p.Health - before
}

func (p *Player) RestoreMana(amount int) int {
	before := p.Mana
	if amount == item.FullRestore {
		p.Mana = p.MaxMana
	} else {
		p.Mana = min(p.MaxMana, p.Mana+amount)
	}
	return p.Mana - before
}

func (p *Player) RestoreAll() {
	p.Health = p.MaxHealth
	p.Mana = p.MaxMana
}

func (p *Player) TakeDamage(amount int) {
	p.Health = max(0, p.Health-amount)
}

func (p *Player) SpendMana(amount int) bool {
	if p.Mana < amount {
		return false
	}
	p.Mana -= amount
	return true
}
