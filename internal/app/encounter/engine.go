package encounter

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"dungeon-server/internal/app/itemization"
	"dungeon-server/internal/app/progression"
	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
	"dungeon-server/internal/platform/dice"
	apperrors "dungeon-server/internal/platform/errors"
)

const (
	MagicCost      = 15
	MagicMin       = 10
	MagicMax       = 25
	MinEnemyDamage = 1
	MinBossDamage  = 5
	VarianceLow    = 0.9
	VarianceHigh   = 1.1
	UnarmedMin     = 1
	UnarmedMax     = 5
)

var (
	ErrInsufficientMana  = apperrors.New(apperrors.CodeInsufficientMana, "not enough mana")
	ErrHealingDenied     = apperrors.New(apperrors.CodeHealingDenied, "healing is blocked")
	ErrBelowMinimumLevel = apperrors.New(apperrors.CodeBelowMinimumLevel, "level too low to challenge this boss")
	ErrEnemyNotFound     = apperrors.New(apperrors.CodeEnemyNotFound, "no such enemy here")
	ErrEncounterOver     = apperrors.New(apperrors.CodeEncounterOver, "encounter already finished")
	ErrInvalidAction     = apperrors.New(apperrors.CodeInvalidIntent, "unknown combat action")
)

type ActionKind string

const (
	ActionAttack ActionKind = "attack"
	ActionMagic  ActionKind = "magic"
	ActionDefend ActionKind = "defend"
	ActionPotion ActionKind = "potion"
)

type Action struct {
	Kind ActionKind
	// Item names the potion for ActionPotion; empty picks the first usable one.
	Item string
}

type Rewards struct {
	XP              int                   `json:"xp"`
	Gold            int                   `json:"gold"`
	LevelUps        []progression.LevelUp `json:"level_ups,omitempty"`
	Weapon          *item.Weapon          `json:"weapon,omitempty"`
	Item            *item.Item            `json:"item,omitempty"`
	Legendary       *item.Weapon          `json:"legendary,omitempty"`
	LegendaryStored bool                  `json:"legendary_stored,omitempty"`
	StatBonus       int                   `json:"stat_bonus,omitempty"`
	StairsUnlocked  bool                  `json:"stairs_unlocked,omitempty"`
	HiddenChest     *HiddenChest          `json:"hidden_chest,omitempty"`
}

// HiddenChest is unsealed once per run by the first boss victory. Room is
// filled in by Settle.
type HiddenChest struct {
	Room   int         `json:"room"`
	Weapon item.Weapon `json:"weapon"`
	Items  []item.Item `json:"items"`
}

type TurnOutcome struct {
	Action             ActionKind           `json:"action"`
	DamageDealt        int                  `json:"damage_dealt"`
	DamageTaken        int                  `json:"damage_taken"`
	Restored           int                  `json:"restored,omitempty"`
	Consumed           string               `json:"consumed,omitempty"`
	Special            string               `json:"special,omitempty"`
	StatusEffects      []world.StatusEffect `json:"status_effects"`
	State              world.EncounterState `json:"state"`
	FoeHealth          int                  `json:"foe_health"`
	GoldenGunUses      int                  `json:"golden_gun_uses,omitempty"`
	GoldenGunDestroyed bool                 `json:"golden_gun_destroyed,omitempty"`
	Rewards            *Rewards             `json:"rewards,omitempty"`
}

type Options struct {
	// FixedRolls disables damage variance and mitigation for exact tests.
	FixedRolls bool
}

type Engine struct {
	items  *itemization.System
	ledger *progression.Ledger
	logger zerolog.Logger
	opts   Options
}

func NewEngine(items *itemization.System, ledger *progression.Ledger, logger zerolog.Logger, opts Options) *Engine {
	return &Engine{items: items, ledger: ledger, logger: logger, opts: opts}
}

var transitions = map[world.EncounterState][]world.EncounterState{
	world.StateIdle:            {world.StatePlayerTurn},
	world.StatePlayerTurn:      {world.StateResolvingAction},
	world.StateResolvingAction: {world.StateEnemyTurn, world.StateVictory, world.StatePlayerTurn},
	world.StateEnemyTurn:       {world.StateResolvingEnemy},
	world.StateResolvingEnemy:  {world.StatePlayerTurn, world.StateDefeat},
}

func advance(enc *world.Encounter, next world.EncounterState) error {
	for _, s := range transitions[enc.State] {
		if s == next {
			enc.State = next
			return nil
		}
	}
	return apperrors.New(apperrors.CodeInvalidIntent, fmt.Sprintf("cannot move encounter from %s to %s", enc.State, next))
}

// StartEnemy opens a fight with one of the room's enemies. An empty ref picks
// the first.
func (e *Engine) StartEnemy(rng *dice.Roller, room *world.Room, ref string) (*world.Encounter, error) {
	enemy, ok := room.FindEnemy(ref)
	if !ok {
		return nil, ErrEnemyNotFound
	}
	enc := &world.Encounter{
		ID:    rng.UUID(),
		Room:  world.RoomRef{Floor: room.Floor, Room: room.Index},
		State: world.StateIdle,
		Foe: world.Foe{
			EnemyID:   enemy.ID,
			Species:   enemy.Species,
			Name:      enemy.Name,
			Health:    enemy.Health,
			MaxHealth: enemy.MaxHealth,
			Damage:    enemy.Damage,
			XP:        enemy.XP,
			Gold:      enemy.Gold,
		},
		Effects: []world.StatusEffect{},
	}
	return enc, advance(enc, world.StatePlayerTurn)
}

// StartBoss opens the floor's boss fight, gated on the boss's minimum level.
func (e *Engine) StartBoss(rng *dice.Roller, p *character.Player, floor *world.Floor, room *world.Room) (*world.Encounter, error) {
	if room.Type != world.RoomBossChamber || floor.Boss.Defeated {
		return nil, ErrEnemyNotFound
	}
	spec, ok := world.LookupBoss(floor.Boss.ID)
	if !ok {
		return nil, ErrEnemyNotFound
	}
	if p.Level < spec.MinLevel() {
		return nil, apperrors.WithMetadata(apperrors.CodeBelowMinimumLevel,
			fmt.Sprintf("%s requires level %d", spec.Name, spec.MinLevel()),
			map[string]string{"boss": spec.ID, "min_level": fmt.Sprint(spec.MinLevel())})
	}
	hp := spec.HealthAt(p.Level)
	enc := &world.Encounter{
		ID:    rng.UUID(),
		Room:  world.RoomRef{Floor: room.Floor, Room: room.Index},
		State: world.StateIdle,
		Foe: world.Foe{
			BossID:    spec.ID,
			Name:      spec.Name,
			Health:    hp,
			MaxHealth: hp,
			Damage:    spec.Damage,
			XP:        spec.XP,
		},
		Effects: []world.StatusEffect{},
	}
	return enc, advance(enc, world.StatePlayerTurn)
}

// ResolveTurn runs the player's action and, if the foe survives, its reply.
// A rejected action leaves the encounter waiting on the player.
func (e *Engine) ResolveTurn(rng *dice.Roller, p *character.Player, enc *world.Encounter, action Action) (TurnOutcome, error) {
	if enc.Over() {
		return TurnOutcome{State: enc.State}, ErrEncounterOver
	}
	if err := advance(enc, world.StateResolvingAction); err != nil {
		return TurnOutcome{State: enc.State}, err
	}
	out := TurnOutcome{Action: action.Kind}
	var err error
	switch action.Kind {
	case ActionAttack:
		e.attack(rng, p, enc, &out)
	case ActionMagic:
		err = e.magic(rng, p, enc, &out)
	case ActionDefend:
		enc.Defending = true
	case ActionPotion:
		err = e.potion(p, enc, action.Item, &out)
	default:
		err = ErrInvalidAction
	}
	if err != nil {
		enc.State = world.StatePlayerTurn
		out.State = enc.State
		out.FoeHealth = enc.Foe.Health
		out.StatusEffects = append([]world.StatusEffect(nil), enc.Effects...)
		return out, err
	}
	enc.Turn++

	if enc.Foe.Health <= 0 {
		_ = advance(enc, world.StateVictory)
		out.Rewards = e.victory(rng, p, enc)
	} else {
		_ = advance(enc, world.StateEnemyTurn)
		_ = advance(enc, world.StateResolvingEnemy)
		e.enemyTurn(rng, p, enc, &out)
		if p.Alive() {
			_ = advance(enc, world.StatePlayerTurn)
		} else {
			_ = advance(enc, world.StateDefeat)
		}
	}
	out.State = enc.State
	out.FoeHealth = enc.Foe.Health
	out.StatusEffects = append([]world.StatusEffect(nil), enc.Effects...)
	return out, nil
}

func (e *Engine) attack(rng *dice.Roller, p *character.Player, enc *world.Encounter, out *TurnOutcome) {
	w := p.Weapon
	var dmg int
	switch {
	case w == nil:
		dmg = (UnarmedMin + UnarmedMax) / 2
		if !e.opts.FixedRolls {
			dmg = rng.Between(UnarmedMin, UnarmedMax)
		}
	case w.IsGoldenGun():
		dmg = enc.Foe.Health
		w.UsesRemaining--
		out.GoldenGunUses = w.UsesRemaining
		if w.UsesRemaining <= 0 {
			p.DestroyWeapon(w.ID)
			out.GoldenGunDestroyed = true
		}
		e.applyDamage(enc, dmg, out)
		return
	default:
		factor := 1.0
		if !e.opts.FixedRolls {
			factor = VarianceLow + rng.Float64()*(VarianceHigh-VarianceLow)
		}
		dmg = int(math.Round(float64(w.EffectiveDamage(p.Level)) * factor))
	}
	dmg = max(1, dmg-enc.StatPenalty(item.StatStrength))
	e.applyDamage(enc, dmg, out)
}

func (e *Engine) magic(rng *dice.Roller, p *character.Player, enc *world.Encounter, out *TurnOutcome) error {
	if !p.SpendMana(MagicCost) {
		return ErrInsufficientMana
	}
	roll := (MagicMin + MagicMax) / 2
	if !e.opts.FixedRolls {
		roll = rng.Between(MagicMin, MagicMax)
	}
	intel := max(0, p.EffectiveStats().Intelligence-enc.StatPenalty(item.StatIntelligence))
	e.applyDamage(enc, roll+intel, out)
	return nil
}

func (e *Engine) potion(p *character.Player, enc *world.Encounter, key string, out *TurnOutcome) error {
	denied := enc.HasEffect(world.EffectHealDenial)
	if key == "" {
		first, err := untargetedConsumable(p, denied)
		if err != nil {
			return err
		}
		key = first
	}
	if it, ok := p.FindItem(key); ok && it.Kind == item.KindHealing && denied {
		return ErrHealingDenied
	}
	it, restored, err := p.Consume(key)
	if err != nil {
		return err
	}
	out.Consumed = it.Key
	out.Restored = restored
	return nil
}

// untargetedConsumable picks the first usable consumable, skipping healing
// items while healing is denied.
func untargetedConsumable(p *character.Player, denied bool) (string, error) {
	first, ok := p.FirstConsumable()
	if !ok {
		return "", character.ErrEmptyInventory
	}
	if !denied {
		return first, nil
	}
	for _, it := range p.Items {
		if it.Consumable() && it.Kind != item.KindHealing {
			return it.Key, nil
		}
	}
	return "", ErrHealingDenied
}

func (e *Engine) applyDamage(enc *world.Encounter, dmg int, out *TurnOutcome) {
	dealt := min(dmg, enc.Foe.Health)
	enc.Foe.Health -= dealt
	out.DamageDealt = dealt
}

func (e *Engine) enemyTurn(rng *dice.Roller, p *character.Player, enc *world.Encounter, out *TurnOutcome) {
	base := enc.Foe.Damage
	floor := MinEnemyDamage
	var special *world.SpecialAttack
	if enc.IsBoss() {
		floor = MinBossDamage
		if spec, ok := world.LookupBoss(enc.Foe.BossID); ok && triggered(spec.Special, enc) {
			special = &spec.Special
			out.Special = special.Name
			if special.Kind == world.EffectExtraDamage {
				base = int(math.Round(float64(base) * special.Multiplier))
			}
			e.logger.Debug().Str("boss", spec.ID).Str("special", special.Name).Int("turn", enc.Turn).Msg("boss special")
		}
	}

	mitigation := 0
	agility := max(0, p.EffectiveStats().Agility-enc.StatPenalty(item.StatAgility))
	if !e.opts.FixedRolls && agility/3 >= 1 {
		mitigation = rng.Between(1, agility/3)
	}
	dmg := max(floor, base-mitigation)
	if enc.Defending {
		dmg = max(1, dmg/2)
	}
	p.TakeDamage(dmg)
	out.DamageTaken = dmg
	enc.Defending = false

	tickEffects(enc)
	if special != nil && special.Kind != world.EffectExtraDamage {
		enc.Effects = append(enc.Effects, world.StatusEffect{
			Source:    special.Name,
			Kind:      special.Kind,
			Stat:      special.Stat,
			Magnitude: special.Magnitude,
			TurnsLeft: special.Duration,
		})
	}
}

func triggered(sp world.SpecialAttack, enc *world.Encounter) bool {
	below := float64(enc.Foe.Health) < sp.Trigger.Threshold*float64(enc.Foe.MaxHealth)
	onBeat := sp.Trigger.Every > 0 && enc.Turn%sp.Trigger.Every == 0
	switch sp.Trigger.Kind {
	case world.TriggerCadence:
		return onBeat
	case world.TriggerCadenceBelow:
		return onBeat && below
	case world.TriggerThreshold:
		if below && !enc.ThresholdFired {
			enc.ThresholdFired = true
			return true
		}
	}
	return false
}

func tickEffects(enc *world.Encounter) {
	kept := enc.Effects[:0]
	for _, fx := range enc.Effects {
		fx.TurnsLeft--
		if fx.TurnsLeft > 0 {
			kept = append(kept, fx)
		}
	}
	enc.Effects = kept
}

func (e *Engine) victory(rng *dice.Roller, p *character.Player, enc *world.Encounter) *Rewards {
	r := &Rewards{XP: enc.Foe.XP, Gold: enc.Foe.Gold}
	if enc.IsBoss() {
		if g, ok := e.items.RollGold(rng); ok {
			r.Gold += g
		}
	}
	p.Gold += r.Gold
	r.LevelUps = e.ledger.GrantXP(p, r.XP)

	req := itemization.DropRequest{Class: p.Class, Level: p.Level, Floor: enc.Room.Floor, RareBias: p.RareBias}
	if w, ok := e.items.RollWeaponDrop(rng, req); ok {
		r.Weapon = &w
	} else if it, ok := e.items.RollConsumable(rng); ok {
		r.Item = &it
	}

	if !enc.IsBoss() {
		return r
	}
	spec, ok := world.LookupBoss(enc.Foe.BossID)
	if !ok {
		return r
	}
	r.StatBonus = spec.StatBonus
	p.Stats = p.Stats.Add(character.Stats{Strength: spec.StatBonus, Intelligence: spec.StatBonus, Agility: spec.StatBonus})
	p.RestoreAll()
	if w, ok := itemization.BossReward(rng, spec.Rewards, p.Class); ok {
		r.Legendary = &w
		r.LegendaryStored = p.AddWeapon(w) == nil
	}
	if !p.ChestUnsealed {
		p.ChestUnsealed = true
		w, items := e.items.AncientChest(rng, p.Class)
		r.HiddenChest = &HiddenChest{Room: enc.Room.Room, Weapon: w, Items: items}
	}
	return r
}

// Settle applies a finished encounter to the world: the enemy leaves the room,
// a fallen boss unlocks the way down, and loot lands on the floor.
func (e *Engine) Settle(floor *world.Floor, room *world.Room, enc *world.Encounter, out *TurnOutcome) {
	if enc.State != world.StateVictory || out.Rewards == nil {
		return
	}
	r := out.Rewards
	if enc.IsBoss() {
		floor.Boss.Defeated = true
		room.Cleared = true
		if ex, ok := room.Exits[world.Down]; ok && ex.Locked {
			ex.Locked = false
			room.Exits[world.Down] = ex
			r.StairsUnlocked = true
		}
		if r.Legendary != nil && !r.LegendaryStored {
			room.Weapons = append(room.Weapons, *r.Legendary)
		}
		if c := r.HiddenChest; c != nil {
			at := chestRoom(floor, room)
			c.Room = at.Index
			at.Weapons = append(at.Weapons, c.Weapon)
			at.Items = append(at.Items, c.Items...)
		}
	} else {
		room.RemoveEnemy(enc.Foe.EnemyID)
	}
	if r.Weapon != nil {
		room.Weapons = append(room.Weapons, *r.Weapon)
	}
	if r.Item != nil {
		room.Items = append(room.Items, *r.Item)
	}
}

// chestRoom is the floor's first armory, or the boss chamber when it has none.
func chestRoom(floor *world.Floor, boss *world.Room) *world.Room {
	for _, r := range floor.Rooms {
		if r != nil && r.Type == world.RoomArmory {
			return r
		}
	}
	return boss
}
