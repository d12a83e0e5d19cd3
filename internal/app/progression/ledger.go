package progression

import (
	"math"

	"github.com/rs/zerolog"

	"dungeon-server/internal/domain/character"
	apperrors "dungeon-server/internal/platform/errors"
)

const (
	BaseXP    = 100
	XPGrowth  = 1.4
	TierStats = 5
	TierHP    = 30
	TierMana  = 25
	TierBias  = 5
)

// UpgradeLevels are the only levels a class tier upgrade may be taken at.
var UpgradeLevels = []int{5, 10, 15}

var ErrTierNotEligible = apperrors.New(apperrors.CodeTierNotEligible, "class tier upgrade not available")

type LevelUp struct {
	Level            int             `json:"level"`
	HealthGain       int             `json:"health_gain"`
	ManaGain         int             `json:"mana_gain"`
	StatGain         character.Stats `json:"stat_gain"`
	Capacity         int             `json:"capacity"`
	UpgradeAvailable bool            `json:"upgrade_available"`
}

type TierUpgrade struct {
	FromTier  int             `json:"from_tier"`
	ToTier    int             `json:"to_tier"`
	Title     string          `json:"title"`
	Stats     character.Stats `json:"stats"`
	MaxHealth int             `json:"max_health"`
	MaxMana   int             `json:"max_mana"`
	RareBias  int             `json:"rare_bias"`
	Capacity  int             `json:"capacity"`
}

type Ledger struct {
	logger zerolog.Logger
}

func NewLedger(logger zerolog.Logger) *Ledger {
	return &Ledger{logger: logger}
}

// RequiredXP is the experience needed to advance from level, rounded half away
// from zero.
func RequiredXP(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Round(BaseXP * math.Pow(XPGrowth, float64(level-1))))
}

// GrantXP adds experience and applies every level-up it pays for, in order.
func (l *Ledger) GrantXP(p *character.Player, amount int) []LevelUp {
	if amount <= 0 {
		return nil
	}
	p.Experience += amount
	var ups []LevelUp
	for p.Experience >= RequiredXP(p.Level) {
		p.Experience -= RequiredXP(p.Level)
		ups = append(ups, l.levelUp(p))
	}
	return ups
}

func (l *Ledger) levelUp(p *character.Player) LevelUp {
	spec, _ := p.Class.Spec()
	p.Level++
	p.MaxHealth += spec.HealthPerLevel
	p.MaxMana += spec.ManaPerLevel
	p.Stats = p.Stats.Add(spec.Growth)
	p.RestoreAll()
	up := LevelUp{
		Level:            p.Level,
		HealthGain:       spec.HealthPerLevel,
		ManaGain:         spec.ManaPerLevel,
		StatGain:         spec.Growth,
		Capacity:         p.Capacity(),
		UpgradeAvailable: UpgradeEligible(p),
	}
	l.logger.Debug().Str("player_id", p.ID.String()).Int("level", p.Level).Msg("level up")
	return up
}

// UpgradeEligible reports whether ClassTierUpgrade would succeed.
func UpgradeEligible(p *character.Player) bool {
	if p.Tier >= character.MaxTier || p.UpgradedAt == p.Level {
		return false
	}
	for _, lvl := range UpgradeLevels {
		if p.Level == lvl {
			return true
		}
	}
	return false
}

// ClassTierUpgrade advances the player one class tier.
func (l *Ledger) ClassTierUpgrade(p *character.Player) (TierUpgrade, error) {
	if !UpgradeEligible(p) {
		return TierUpgrade{}, ErrTierNotEligible
	}
	from := p.Tier
	p.Tier++
	p.UpgradedAt = p.Level
	p.Stats = p.Stats.Add(character.Stats{Strength: TierStats, Intelligence: TierStats, Agility: TierStats})
	p.MaxHealth += TierHP
	p.MaxMana += TierMana
	p.RareBias += TierBias
	p.RestoreAll()
	l.logger.Debug().Str("player_id", p.ID.String()).Int("tier", p.Tier).Msg("class tier upgrade")
	return TierUpgrade{
		FromTier:  from,
		ToTier:    p.Tier,
		Title:     p.Title(),
		Stats:     p.Stats,
		MaxHealth: p.MaxHealth,
		MaxMana:   p.MaxMana,
		RareBias:  p.RareBias,
		Capacity:  p.Capacity(),
	}, nil
}
