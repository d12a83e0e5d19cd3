package progression

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
)

func newPlayer(t *testing.T, class character.Class) *character.Player {
	t.Helper()
	p, err := character.New("Test", class, item.Weapon{ID: uuid.New(), Name: "Iron Sword", Type: item.WeaponMelee, Rarity: item.RarityCommon, BaseDamage: 15})
	if err != nil {
		t.Fatalf("character.New err: %v", err)
	}
	return p
}

func TestRequiredXPCurve(t *testing.T) {
	cases := map[int]int{1: 100, 2: 140, 3: 196, 4: 274, 5: 384}
	for level, want := range cases {
		if got := RequiredXP(level); got != want {
			t.Fatalf("RequiredXP(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestGrantXPSingleLevel(t *testing.T) {
	l := NewLedger(zerolog.Nop())
	p := newPlayer(t, character.ClassWarrior)
	ups := l.GrantXP(p, 100)
	if p.Level != 2 || p.Experience != 0 || len(ups) != 1 {
		t.Fatalf("after 100 XP: level=%d xp=%d ups=%d", p.Level, p.Experience, len(ups))
	}
	if p.MaxHealth != 135 || p.Health != p.MaxHealth || p.Stats.Strength != 18 {
		t.Fatalf("unexpected warrior growth: %+v", p)
	}
}

func TestGrantXPSequentialLevels(t *testing.T) {
	l := NewLedger(zerolog.Nop())
	p := newPlayer(t, character.ClassMage)
	ups := l.GrantXP(p, 100+140)
	if p.Level != 3 || p.Experience != 0 || len(ups) != 2 {
		t.Fatalf("after 240 XP: level=%d xp=%d ups=%d", p.Level, p.Experience, len(ups))
	}
	if ups[0].Level != 2 || ups[1].Level != 3 {
		t.Fatalf("level-ups out of order: %+v", ups)
	}
	l.GrantXP(p, 50)
	if p.Level != 3 || p.Experience != 50 {
		t.Fatalf("partial XP: level=%d xp=%d", p.Level, p.Experience)
	}
}

func TestTierUpgradeRules(t *testing.T) {
	l := NewLedger(zerolog.Nop())
	p := newPlayer(t, character.ClassRogue)
	p.Level = 7
	if _, err := l.ClassTierUpgrade(p); !errors.Is(err, ErrTierNotEligible) {
		t.Fatalf("level 7 upgrade: expected ErrTierNotEligible, got %v", err)
	}

	prev := *p
	for i, lvl := range UpgradeLevels {
		p.Level = lvl
		res, err := l.ClassTierUpgrade(p)
		if err != nil {
			if i == len(UpgradeLevels)-1 && errors.Is(err, ErrTierNotEligible) {
				break
			}
			t.Fatalf("upgrade at level %d err: %v", lvl, err)
		}
		if res.ToTier != prev.Tier+1 {
			t.Fatalf("tier %d -> %d", prev.Tier, res.ToTier)
		}
		if p.Stats.Strength < prev.Stats.Strength || p.Stats.Intelligence < prev.Stats.Intelligence ||
			p.Stats.Agility < prev.Stats.Agility || p.MaxHealth < prev.MaxHealth || p.MaxMana < prev.MaxMana {
			t.Fatalf("stats decreased across upgrade: %+v -> %+v", prev, *p)
		}
		if _, err := l.ClassTierUpgrade(p); !errors.Is(err, ErrTierNotEligible) {
			t.Fatalf("second upgrade at level %d should fail, got %v", lvl, err)
		}
		prev = *p
	}
	if p.Tier != character.MaxTier || p.Title() != "Shadow Master" {
		t.Fatalf("final tier %d title %q", p.Tier, p.Title())
	}
	if p.RareBias != 2*TierBias {
		t.Fatalf("rare bias = %d", p.RareBias)
	}
	p.Level = 15
	p.UpgradedAt = 10
	if _, err := l.ClassTierUpgrade(p); !errors.Is(err, ErrTierNotEligible) {
		t.Fatalf("tier 3 upgrade: expected ErrTierNotEligible, got %v", err)
	}
}

func TestLevelUpFlagsUpgrade(t *testing.T) {
	l := NewLedger(zerolog.Nop())
	p := newPlayer(t, character.ClassWarrior)
	total := 0
	for lvl := 1; lvl < 5; lvl++ {
		total += RequiredXP(lvl)
	}
	ups := l.GrantXP(p, total)
	if p.Level != 5 || !ups[len(ups)-1].UpgradeAvailable {
		t.Fatalf("expected upgrade flag on reaching level 5, level=%d ups=%+v", p.Level, ups)
	}
}
