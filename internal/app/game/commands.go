package game

import (
	"context"
	"errors"

	"dungeon-server/internal/app/encounter"
	"dungeon-server/internal/app/progression"
	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
	apperrors "dungeon-server/internal/platform/errors"
	"dungeon-server/internal/platform/mq"
)

type event struct {
	subject string
	payload map[string]any
}

// command carries one intent through resolution. Events are collected and
// published after the session lock is released.
type command struct {
	svc    *Service
	sess   *session
	w      *world.World
	res    *Result
	events []event
}

func (c *command) emit(subject string, payload map[string]any) {
	payload["session_id"] = c.sess.id
	c.events = append(c.events, event{subject: subject, payload: payload})
}

func (c *command) run(ctx context.Context, in Intent) error {
	if c.w.GameOver && !in.Verb.allowedAfterGameOver() {
		return ErrGameOver
	}
	if in.Verb.combat() && !c.w.InCombat() {
		return ErrNoEncounter
	}
	switch in.Verb {
	case VerbLook, VerbStats:
		return nil
	case VerbMap:
		c.res.Map = mapView(c.w)
		return nil
	case VerbGo:
		dir := in.Direction
		if dir == "" {
			dir = in.Target
		}
		return c.move(ctx, dir)
	case VerbTake:
		return c.take(in.Target)
	case VerbTakeAll:
		return c.takeAll()
	case VerbDiscard:
		return c.discard(in.Target)
	case VerbEquip:
		return c.equip(in.Target)
	case VerbConsume:
		if c.w.InCombat() {
			return c.turn(encounter.Action{Kind: encounter.ActionPotion, Item: fold(in.Target)})
		}
		return c.consume(in.Target)
	case VerbFight:
		return c.fight(in.Target)
	case VerbAttack:
		return c.turn(encounter.Action{Kind: encounter.ActionAttack})
	case VerbMagic:
		return c.turn(encounter.Action{Kind: encounter.ActionMagic})
	case VerbDefend:
		return c.turn(encounter.Action{Kind: encounter.ActionDefend})
	case VerbPotion:
		return c.turn(encounter.Action{Kind: encounter.ActionPotion, Item: fold(in.Target)})
	case VerbUpgrade:
		return c.upgrade()
	case VerbSave:
		return c.save(ctx, in.Target)
	case VerbLoad:
		return c.load(ctx, in.Target)
	}
	return ErrInvalidIntent
}

func (c *command) move(ctx context.Context, dir string) error {
	if c.w.InCombat() {
		return ErrEncounterActive
	}
	d, ok := world.ParseDirection(dir)
	if !ok {
		return ErrMissingTarget
	}
	room := c.w.CurrentRoom()
	ex, ok := room.Exits[d]
	if !ok {
		return ErrNoExit
	}
	if ex.Locked {
		return apperrors.WithMetadata(apperrors.CodeExitLocked, "the stairway is barred until the boss falls",
			map[string]string{"boss": c.w.CurrentFloor().Boss.ID})
	}

	f := c.svc.gen.EnsureFloor(c.w, ex.To.Floor)
	idx := ex.To.Room
	if idx == world.StairsLanding {
		idx = f.BossRoom
	}
	dest := f.Room(idx)
	if dest == nil {
		return ErrNoExit
	}
	p := c.w.Player
	if dest.Sealed {
		if !p.HasItem(dest.Requires) {
			return apperrors.WithMetadata(apperrors.CodeRoomSealed, "the way is sealed",
				map[string]string{"requires": dest.Requires})
		}
		if dest.Requires != item.KeyTorch {
			_, _ = p.RemoveItem(dest.Requires)
		}
		dest.Sealed = false
		c.res.Unlocked = dest.Requires
	}
	if dest.Type == world.RoomBossChamber && !f.Boss.Defeated {
		enc, err := c.svc.engine.StartBoss(c.w.Dice, p, f, dest)
		if err != nil {
			return err
		}
		c.w.Encounter = enc
	}

	from := c.w.Location.Floor
	c.w.Location = world.RoomRef{Floor: f.Index, Room: dest.Index}
	dest.Visited = true
	c.w.Turns++
	if f.Index != from {
		c.res.FloorEntered = f.Index
		c.emit(mq.SubjectFloorEntered, map[string]any{"floor": f.Index, "player": p.Name, "level": p.Level})
	}
	return nil
}

func (c *command) take(target string) error {
	room, err := c.lootableRoom()
	if err != nil {
		return err
	}
	want := fold(target)
	if want == "" {
		return ErrMissingTarget
	}
	if want == "gold" {
		if room.Gold == 0 {
			return character.ErrItemNotFound
		}
		c.takeGold(room)
		return nil
	}
	for i, it := range room.Items {
		if fold(it.Key) == want || fold(it.Name) == want {
			return c.takeItem(room, i)
		}
	}
	for i, wp := range room.Weapons {
		if fold(wp.Name) == want || wp.ID.String() == want {
			return c.takeWeapon(room, i)
		}
	}
	return character.ErrItemNotFound
}

// takeAll picks up everything it can; what does not fit stays behind.
func (c *command) takeAll() error {
	room, err := c.lootableRoom()
	if err != nil {
		return err
	}
	if !room.HasLoot() {
		return character.ErrItemNotFound
	}
	if room.Gold > 0 {
		c.takeGold(room)
	}
	for i := 0; i < len(room.Items); {
		name := room.Items[i].Name
		if err := c.takeItem(room, i); err != nil {
			if !errors.Is(err, character.ErrInventoryFull) {
				return err
			}
			c.res.Left = append(c.res.Left, name)
			i++
		}
	}
	for i := 0; i < len(room.Weapons); {
		name := room.Weapons[i].Name
		if err := c.takeWeapon(room, i); err != nil {
			if !errors.Is(err, character.ErrInventoryFull) {
				return err
			}
			c.res.Left = append(c.res.Left, name)
			i++
		}
	}
	return nil
}

func (c *command) lootableRoom() (*world.Room, error) {
	if c.w.InCombat() {
		return nil, ErrEncounterActive
	}
	room := c.w.CurrentRoom()
	if !room.Cleared {
		return nil, ErrRoomNotCleared
	}
	return room, nil
}

func (c *command) takeGold(room *world.Room) {
	c.w.Player.Gold += room.Gold
	c.res.Gold += room.Gold
	room.Gold = 0
}

// takeItem applies experience items and the floor map on pickup and wears
// wearables without using a slot. Everything else goes into the inventory.
func (c *command) takeItem(room *world.Room, i int) error {
	it := room.Items[i]
	p := c.w.Player
	switch {
	case it.Kind == item.KindExperience:
		c.grantXP(it.Amount)
	case it.Kind == item.KindWearable:
		p.Wear(it)
	case it.Key == item.KeyMap:
		c.w.CurrentFloor().Mapped = true
		c.res.Map = mapView(c.w)
	default:
		if err := p.AddItem(it); err != nil {
			return err
		}
	}
	room.Items = append(room.Items[:i], room.Items[i+1:]...)
	c.res.Taken = append(c.res.Taken, it.Name)
	return nil
}

func (c *command) takeWeapon(room *world.Room, i int) error {
	wp := room.Weapons[i]
	if err := c.w.Player.AddWeapon(wp); err != nil {
		return err
	}
	room.Weapons = append(room.Weapons[:i], room.Weapons[i+1:]...)
	c.res.Taken = append(c.res.Taken, wp.Name)
	if wp.IsGoldenGun() {
		c.emit(mq.SubjectGoldenGun, map[string]any{"weapon": wp.Name, "uses": wp.UsesRemaining, "floor": room.Floor})
	}
	return nil
}

func (c *command) discard(target string) error {
	if c.w.InCombat() {
		return ErrEncounterActive
	}
	want := fold(target)
	if want == "" {
		return ErrMissingTarget
	}
	p := c.w.Player
	room := c.w.CurrentRoom()
	for _, it := range p.Items {
		if fold(it.Key) == want || fold(it.Name) == want {
			dropped, err := p.RemoveItem(it.Key)
			if err != nil {
				return err
			}
			room.Items = append(room.Items, dropped)
			c.res.Discarded = dropped.Name
			return nil
		}
	}
	if idx, ok := p.FindWeapon(want); ok {
		wp := p.RemoveWeapon(idx)
		room.Weapons = append(room.Weapons, wp)
		c.res.Discarded = wp.Name
		return nil
	}
	if p.Weapon != nil && fold(p.Weapon.Name) == want {
		room.Weapons = append(room.Weapons, *p.Weapon)
		c.res.Discarded = p.Weapon.Name
		p.Weapon = nil
		return nil
	}
	return character.ErrItemNotFound
}

func (c *command) equip(target string) error {
	if c.w.InCombat() {
		return ErrEncounterActive
	}
	if fold(target) == "" {
		return ErrMissingTarget
	}
	p := c.w.Player
	idx, ok := p.FindWeapon(fold(target))
	if !ok {
		return character.ErrItemNotFound
	}
	wp := p.Equip(idx)
	v := weaponView(wp, p.Level)
	c.res.Equipped = &v
	return nil
}

func (c *command) consume(target string) error {
	p := c.w.Player
	key := fold(target)
	if key == "" {
		first, ok := p.FirstConsumable()
		if !ok {
			return character.ErrEmptyInventory
		}
		key = first
	} else if it, ok := findCarried(p, key); ok {
		key = it.Key
	}
	it, restored, err := p.Consume(key)
	if err != nil {
		return err
	}
	c.res.Consumed = it.Name
	c.res.Restored = restored
	return nil
}

func findCarried(p *character.Player, want string) (item.Item, bool) {
	for _, it := range p.Items {
		if fold(it.Key) == want || fold(it.Name) == want {
			return it, true
		}
	}
	return item.Item{}, false
}

func (c *command) fight(target string) error {
	if c.w.InCombat() {
		return ErrEncounterActive
	}
	f := c.w.CurrentFloor()
	room := c.w.CurrentRoom()
	var (
		enc *world.Encounter
		err error
	)
	if room.Type == world.RoomBossChamber && !f.Boss.Defeated {
		enc, err = c.svc.engine.StartBoss(c.w.Dice, c.w.Player, f, room)
	} else {
		enc, err = c.svc.engine.StartEnemy(c.w.Dice, room, fold(target))
	}
	if err != nil {
		return err
	}
	c.w.Encounter = enc
	return nil
}

func (c *command) turn(action encounter.Action) error {
	enc := c.w.Encounter
	p := c.w.Player
	out, err := c.svc.engine.ResolveTurn(c.w.Dice, p, enc, action)
	if err != nil {
		return err
	}
	c.w.Turns++
	if out.GoldenGunDestroyed {
		c.svc.logger.Debug().Str("session_id", c.sess.id.String()).Msg("golden gun spent")
	}

	switch out.State {
	case world.StateVictory:
		f := c.w.Floor(enc.Room.Floor)
		room := f.Room(enc.Room.Room)
		c.svc.engine.Settle(f, room, enc, &out)
		c.w.Encounter = nil
		c.levelUps(out.Rewards.LevelUps)
		if enc.IsBoss() {
			c.emit(mq.SubjectBossDefeated, map[string]any{"boss": enc.Foe.BossID, "floor": f.Index, "level": p.Level})
			if f.Index == world.MaxFloors {
				c.w.Completed = true
				c.emit(mq.SubjectGameCompleted, map[string]any{"player": p.Name, "level": p.Level, "turns": c.w.Turns})
			}
		}
	case world.StateDefeat:
		c.w.Encounter = nil
		c.w.GameOver = true
		c.emit(mq.SubjectPlayerDefeated, map[string]any{"player": p.Name, "floor": enc.Room.Floor, "foe": enc.Foe.Name})
	}
	c.res.Turn = &out
	return nil
}

func (c *command) grantXP(amount int) {
	c.levelUps(c.svc.ledger.GrantXP(c.w.Player, amount))
}

func (c *command) levelUps(ups []progression.LevelUp) {
	for _, up := range ups {
		c.res.LevelUps = append(c.res.LevelUps, up)
		c.emit(mq.SubjectLevelUp, map[string]any{"player": c.w.Player.Name, "level": up.Level})
	}
}

func (c *command) upgrade() error {
	if c.w.InCombat() {
		return ErrEncounterActive
	}
	up, err := c.svc.ledger.ClassTierUpgrade(c.w.Player)
	if err != nil {
		return err
	}
	c.res.Upgrade = &up
	c.emit(mq.SubjectTierUpgrade, map[string]any{"player": c.w.Player.Name, "tier": up.ToTier, "title": up.Title})
	return nil
}

func (c *command) save(ctx context.Context, slot string) error {
	if c.svc.saves == nil {
		return ErrSavesDisabled
	}
	sl, err := c.svc.saves.Save(ctx, c.sess.accountID, slot, c.w)
	if err != nil {
		return err
	}
	c.res.Slot = &sl
	return nil
}

// load swaps in the saved world only after it decoded and validated in full.
func (c *command) load(ctx context.Context, slot string) error {
	if c.svc.saves == nil {
		return ErrSavesDisabled
	}
	w, sl, err := c.svc.saves.Load(ctx, c.sess.accountID, slot)
	if err != nil {
		return err
	}
	c.sess.world = w
	c.w = w
	c.res.Slot = &sl
	c.emit(mq.SubjectGameLoaded, map[string]any{"slot": sl.Name, "player": w.Player.Name, "floor": w.Location.Floor})
	return nil
}
