package world

import "github.com/google/uuid"

type EncounterState string

const (
	StateIdle            EncounterState = "idle"
	StatePlayerTurn      EncounterState = "player_turn"
	StateResolvingAction EncounterState = "resolving_action"
	StateEnemyTurn       EncounterState = "enemy_turn"
	StateResolvingEnemy  EncounterState = "resolving_enemy"
	StateVictory         EncounterState = "victory"
	StateDefeat          EncounterState = "defeat"
)

func (s EncounterState) Terminal() bool {
	return s == StateVictory || s == StateDefeat
}

type EffectKind string

const (
	EffectExtraDamage EffectKind = "extra_damage"
	EffectDebuff      EffectKind = "debuff"
	EffectHealDenial  EffectKind = "heal_denial"
)

type TriggerKind string

const (
	// TriggerCadence fires every Every turns.
	TriggerCadence TriggerKind = "cadence"
	// TriggerThreshold fires once, the first enemy turn the boss is below Threshold of max health.
	TriggerThreshold TriggerKind = "threshold"
	// TriggerCadenceBelow fires every Every turns while below Threshold.
	TriggerCadenceBelow TriggerKind = "cadence_below"
)

type Trigger struct {
	Kind      TriggerKind `json:"kind"`
	Every     int         `json:"every,omitempty"`
	Threshold float64     `json:"threshold,omitempty"`
}

// SpecialAttack is boss data consumed generically by the encounter engine.
type SpecialAttack struct {
	Name       string     `json:"name"`
	Kind       EffectKind `json:"kind"`
	Multiplier float64    `json:"multiplier,omitempty"`
	Stat       string     `json:"stat,omitempty"`
	Magnitude  int        `json:"magnitude,omitempty"`
	Duration   int        `json:"duration,omitempty"`
	Trigger    Trigger    `json:"trigger"`
}

type StatusEffect struct {
	Source    string     `json:"source"`
	Kind      EffectKind `json:"kind"`
	Stat      string     `json:"stat,omitempty"`
	Magnitude int        `json:"magnitude,omitempty"`
	TurnsLeft int        `json:"turns_left"`
}

// Foe is the combat copy of an enemy or boss; it is authoritative while the
// encounter runs.
type Foe struct {
	EnemyID   uuid.UUID `json:"enemy_id,omitempty"`
	BossID    string    `json:"boss_id,omitempty"`
	Species   string    `json:"species,omitempty"`
	Name      string    `json:"name"`
	Health    int       `json:"health"`
	MaxHealth int       `json:"max_health"`
	Damage    int       `json:"damage"`
	XP        int       `json:"xp"`
	Gold      int       `json:"gold"`
}

type Encounter struct {
	ID             uuid.UUID      `json:"id"`
	Room           RoomRef        `json:"room"`
	Foe            Foe            `json:"foe"`
	State          EncounterState `json:"state"`
	Turn           int            `json:"turn"`
	Defending      bool           `json:"defending"`
	Effects        []StatusEffect `json:"effects"`
	ThresholdFired bool           `json:"threshold_fired,omitempty"`
}

func (e *Encounter) IsBoss() bool {
	return e.Foe.BossID != ""
}

func (e *Encounter) Over() bool {
	return e.State.Terminal()
}

// HasEffect reports whether a status effect of kind is active.
func (e *Encounter) HasEffect(kind EffectKind) bool {
	for _, fx := range e.Effects {
		if fx.Kind == kind && fx.TurnsLeft > 0 {
			return true
		}
	}
	return false
}

// StatPenalty sums active debuffs against stat.
func (e *Encounter) StatPenalty(stat string) int {
	total := 0
	for _, fx := range e.Effects {
		if fx.Kind == EffectDebuff && fx.Stat == stat && fx.TurnsLeft > 0 {
			total += fx.Magnitude
		}
	}
	return total
}
