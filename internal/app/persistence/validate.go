package persistence

import (
	"fmt"

	"github.com/google/uuid"

	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
	apperrors "dungeon-server/internal/platform/errors"
)

func corrupt(format string, args ...any) error {
	return apperrors.New(apperrors.CodeCorruptSave, fmt.Sprintf(format, args...))
}

// validate rejects documents that decode cleanly but cannot describe a world
// the game could have produced.
func validate(s *SaveState) error {
	if err := validatePlayer(s.Player); err != nil {
		return err
	}
	if s.Floors[0] == nil {
		return corrupt("floor 1 missing")
	}
	for i, f := range s.Floors {
		if f == nil {
			continue
		}
		if err := validateFloor(i+1, f); err != nil {
			return err
		}
	}

	loc := s.Session.Location
	f := floorAt(s, loc.Floor)
	if f == nil || f.Room(loc.Room) == nil {
		return corrupt("location %d/%d does not exist", loc.Floor, loc.Room)
	}
	if enc := s.Session.Encounter; enc != nil {
		if enc.State != world.StatePlayerTurn {
			return corrupt("encounter saved in state %q", enc.State)
		}
		if enc.Room != loc {
			return corrupt("encounter is not in the current room")
		}
		if enc.Foe.MaxHealth <= 0 || enc.Foe.Health < 0 || enc.Foe.Health > enc.Foe.MaxHealth {
			return corrupt("encounter foe health out of range")
		}
		if !enc.IsBoss() && enc.Foe.EnemyID == uuid.Nil {
			return corrupt("encounter has no foe")
		}
	}
	if len(s.Session.RNG) == 0 {
		return corrupt("rng state missing")
	}
	if s.Session.Turns < 0 {
		return corrupt("negative turn count")
	}
	return nil
}

func floorAt(s *SaveState, index int) *world.Floor {
	if index < 1 || index > world.MaxFloors {
		return nil
	}
	return s.Floors[index-1]
}

func validatePlayer(p *character.Player) error {
	if p == nil {
		return corrupt("player missing")
	}
	if _, ok := p.Class.Spec(); !ok {
		return corrupt("unknown class %q", p.Class)
	}
	switch {
	case p.Level < 1:
		return corrupt("player level %d", p.Level)
	case p.Tier < 1 || p.Tier > character.MaxTier:
		return corrupt("player tier %d", p.Tier)
	case p.MaxHealth <= 0 || p.Health < 0 || p.Health > p.MaxHealth:
		return corrupt("player health %d/%d", p.Health, p.MaxHealth)
	case p.MaxMana < 0 || p.Mana < 0 || p.Mana > p.MaxMana:
		return corrupt("player mana %d/%d", p.Mana, p.MaxMana)
	case p.Experience < 0 || p.Gold < 0:
		return corrupt("negative experience or gold")
	case p.InventoryCount() > p.Capacity():
		return corrupt("inventory holds %d of %d slots", p.InventoryCount(), p.Capacity())
	}
	for _, it := range p.Items {
		if _, ok := item.Lookup(it.Key); !ok {
			return corrupt("unknown item %q", it.Key)
		}
	}
	if p.Weapon != nil {
		if err := validateWeapon(*p.Weapon); err != nil {
			return err
		}
	}
	for _, w := range p.Weapons {
		if err := validateWeapon(w); err != nil {
			return err
		}
	}
	return nil
}

func validateWeapon(w item.Weapon) error {
	if !w.Rarity.Valid() {
		return corrupt("weapon %q has unknown rarity %q", w.Name, w.Rarity)
	}
	if w.BaseDamage < 0 || w.UsesRemaining < 0 {
		return corrupt("weapon %q has negative stats", w.Name)
	}
	return nil
}

func validateFloor(index int, f *world.Floor) error {
	if f.Index != index {
		return corrupt("floor slot %d holds floor %d", index, f.Index)
	}
	n := len(f.Rooms)
	if n < world.MinFloorSize || n > world.MaxFloorSize {
		return corrupt("floor %d has %d rooms", index, n)
	}
	if f.Room(f.Entry) == nil || f.Room(f.BossRoom) == nil {
		return corrupt("floor %d entry or boss room out of range", index)
	}
	if _, ok := world.LookupBoss(f.Boss.ID); !ok {
		return corrupt("floor %d has unknown boss %q", index, f.Boss.ID)
	}
	for i, r := range f.Rooms {
		if r == nil || r.Index != i || r.Floor != index {
			return corrupt("floor %d room %d is misplaced", index, i)
		}
		for d, ex := range r.Exits {
			if _, ok := world.ParseDirection(string(d)); !ok {
				return corrupt("floor %d room %d has exit %q", index, i, d)
			}
			if ex.To.Floor == index && f.Room(ex.To.Room) == nil {
				return corrupt("floor %d room %d exit %s leads nowhere", index, i, d)
			}
			if ex.To.Floor < 1 || ex.To.Floor > world.MaxFloors {
				return corrupt("floor %d room %d exit %s leaves the dungeon", index, i, d)
			}
		}
		for _, e := range r.Enemies {
			if e.MaxHealth <= 0 || e.Health <= 0 || e.Health > e.MaxHealth {
				return corrupt("floor %d room %d enemy %q health out of range", index, i, e.Name)
			}
		}
		for _, it := range r.Items {
			if _, ok := item.Lookup(it.Key); !ok {
				return corrupt("floor %d room %d has unknown item %q", index, i, it.Key)
			}
		}
		for _, w := range r.Weapons {
			if err := validateWeapon(w); err != nil {
				return err
			}
		}
	}
	if len(f.Reachable()) != n {
		return corrupt("floor %d is not connected", index)
	}
	return nil
}
