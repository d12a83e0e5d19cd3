package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dungeon-server/internal/app/encounter"
	"dungeon-server/internal/app/itemization"
	"dungeon-server/internal/app/persistence"
	"dungeon-server/internal/app/progression"
	"dungeon-server/internal/app/savegame"
	"dungeon-server/internal/app/worldgen"
	"dungeon-server/internal/domain/character"
	"dungeon-server/internal/domain/item"
	"dungeon-server/internal/domain/world"
	"dungeon-server/internal/platform/mq"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) saw(subject string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T, opts Options) (*Service, *recordingPublisher) {
	t.Helper()
	items := itemization.New()
	ledger := progression.NewLedger(zerolog.Nop())
	store, err := savegame.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore err: %v", err)
	}
	pub := &recordingPublisher{}
	saves := savegame.NewService(store, persistence.NewManager(zerolog.Nop()), nil, 0, pub, zerolog.Nop())
	svc := NewService(
		worldgen.NewGenerator(items, zerolog.Nop()),
		encounter.NewEngine(items, ledger, zerolog.Nop(), encounter.Options{FixedRolls: true}),
		ledger, saves, pub, zerolog.Nop(), opts,
	)
	return svc, pub
}

func startGame(t *testing.T, svc *Service, acct uuid.UUID) (uuid.UUID, *world.World) {
	t.Helper()
	res, err := svc.NewGame(context.Background(), acct, NewGameRequest{Name: "Oren", Class: "Warrior", Seed: 4242})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	return res.Session, svc.sessions[res.Session].world
}

func exec(t *testing.T, svc *Service, acct, id uuid.UUID, in Intent) (Result, error) {
	t.Helper()
	return svc.Execute(context.Background(), acct, id, in)
}

// stepToward returns the planar direction leading from room to dest.
func stepToward(room *world.Room, dest int) (world.Direction, bool) {
	for _, d := range world.Planar {
		if ex, ok := room.Exits[d]; ok && ex.To.Room == dest {
			return d, true
		}
	}
	return "", false
}

func TestNewGame(t *testing.T) {
	svc, pub := newTestService(t, Options{})
	acct := uuid.New()
	res, err := svc.NewGame(context.Background(), acct, NewGameRequest{Name: "Oren", Class: "warrior", Seed: 1})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	w := svc.sessions[res.Session].world
	if res.Room.Floor != 1 || res.Room.Index != w.Floor(1).Entry || !w.CurrentRoom().Visited {
		t.Fatalf("player should start at the floor 1 entry, got %+v", res.Room)
	}
	if res.Player.Weapon == nil || res.Player.Weapon.Name != "Iron Sword" {
		t.Fatalf("warrior should default to the melee starter, got %+v", res.Player.Weapon)
	}
	if !pub.saw(mq.SubjectFloorEntered) {
		t.Fatal("expected floor entered event")
	}

	res, err = svc.NewGame(context.Background(), acct, NewGameRequest{Class: "mage", Weapon: "steel dagger", Seed: 1})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	if res.Player.Weapon.Name != "Steel Dagger" || res.Player.Name != "Mage" {
		t.Fatalf("unexpected player %+v", res.Player)
	}

	if _, err := svc.NewGame(context.Background(), acct, NewGameRequest{Class: "bard"}); !errors.Is(err, character.ErrInvalidClass) {
		t.Fatalf("expected ErrInvalidClass, got %v", err)
	}
	if _, err := svc.NewGame(context.Background(), acct, NewGameRequest{Class: "rogue", Weapon: "spoon"}); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}
}

func TestSameSeedSameDungeon(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	_, a := startGame(t, svc, uuid.New())
	_, b := startGame(t, svc, uuid.New())
	if a.Player.ID != b.Player.ID || a.Player.Weapon.ID != b.Player.Weapon.ID {
		t.Fatal("same seed should give the same player and weapon ids")
	}
	fa, fb := a.Floor(1), b.Floor(1)
	if len(fa.Rooms) != len(fb.Rooms) || fa.BossRoom != fb.BossRoom {
		t.Fatal("same seed should generate the same floor")
	}
	for i := range fa.Rooms {
		if fa.Rooms[i].Template != fb.Rooms[i].Template || len(fa.Rooms[i].Enemies) != len(fb.Rooms[i].Enemies) {
			t.Fatalf("room %d differs", i)
		}
	}
}

func TestExecuteSessionChecks(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	acct := uuid.New()
	id, _ := startGame(t, svc, acct)

	if _, err := exec(t, svc, acct, uuid.New(), Intent{Verb: VerbLook}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := exec(t, svc, uuid.New(), id, Intent{Verb: VerbLook}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: "dance"}); !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: "LOOK"}); err != nil {
		t.Fatalf("verbs should be case-insensitive, got %v", err)
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbAttack}); !errors.Is(err, ErrNoEncounter) {
		t.Fatalf("expected ErrNoEncounter, got %v", err)
	}
}

func TestMoveBetweenRooms(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)
	entry := w.CurrentRoom()

	var dir world.Direction
	for _, d := range world.Planar {
		if _, ok := entry.Exits[d]; ok {
			dir = d
			break
		}
	}
	dest := w.CurrentFloor().Room(entry.Exits[dir].To.Room)
	dest.Sealed = false
	dest.Type = world.RoomOrdinary

	res, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: string(dir)})
	if err != nil {
		t.Fatalf("go err: %v", err)
	}
	if res.Room.Index != dest.Index || !dest.Visited || res.Turns != 1 {
		t.Fatalf("unexpected room after move %+v", res.Room)
	}
	back := dir.Opposite()
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Target: string(back)}); err != nil {
		t.Fatalf("go back err: %v", err)
	}
	for _, d := range world.Directions {
		if _, ok := w.CurrentRoom().Exits[d]; !ok {
			if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: string(d)}); !errors.Is(err, ErrNoExit) {
				t.Fatalf("expected ErrNoExit going %s, got %v", d, err)
			}
			break
		}
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: "sideways"}); !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("expected ErrMissingTarget, got %v", err)
	}
}

func TestSealedRoomNeedsKey(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)
	entry := w.CurrentRoom()
	var dir world.Direction
	for _, d := range world.Planar {
		if _, ok := entry.Exits[d]; ok {
			dir = d
			break
		}
	}
	dest := w.CurrentFloor().Room(entry.Exits[dir].To.Room)
	dest.Type = world.RoomLockedVault
	dest.Sealed, dest.Requires = true, item.KeyVaultKey

	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: string(dir)}); !errors.Is(err, ErrRoomSealed) {
		t.Fatalf("expected ErrRoomSealed, got %v", err)
	}
	if w.Location.Room != entry.Index {
		t.Fatal("player should not move into a sealed room")
	}
	_ = w.Player.AddItem(item.MustLookup(item.KeyVaultKey))
	res, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: string(dir)})
	if err != nil {
		t.Fatalf("go err: %v", err)
	}
	if res.Unlocked != item.KeyVaultKey || dest.Sealed || w.Player.HasItem(item.KeyVaultKey) {
		t.Fatal("vault key should be used up unsealing the room")
	}

	_, _ = exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: string(dir.Opposite())})
	dest.Type, dest.Sealed, dest.Requires = world.RoomHiddenAlcove, true, item.KeyTorch
	_ = w.Player.AddItem(item.MustLookup(item.KeyTorch))
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: string(dir)}); err != nil {
		t.Fatalf("go err: %v", err)
	}
	if !w.Player.HasItem(item.KeyTorch) {
		t.Fatal("the torch is kept after lighting the way")
	}
}

func TestFightLootAndPickupRules(t *testing.T) {
	svc, pub := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)
	room := w.CurrentRoom()
	room.Enemies = []world.Enemy{{ID: uuid.New(), Species: "cave-rat", Name: "Cave Rat", Health: 5, MaxHealth: 5, Damage: 3, XP: 90, Gold: 2}}
	room.Cleared = false

	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbTake, Target: "health potion"}); !errors.Is(err, ErrRoomNotCleared) {
		t.Fatalf("expected ErrRoomNotCleared, got %v", err)
	}
	res, err := exec(t, svc, acct, id, Intent{Verb: VerbFight})
	if err != nil {
		t.Fatalf("fight err: %v", err)
	}
	if res.Encounter == nil || res.Encounter.State != world.StatePlayerTurn {
		t.Fatalf("expected open encounter, got %+v", res.Encounter)
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: "north"}); !errors.Is(err, ErrEncounterActive) {
		t.Fatalf("expected ErrEncounterActive, got %v", err)
	}
	res, err = exec(t, svc, acct, id, Intent{Verb: VerbAttack})
	if err != nil {
		t.Fatalf("attack err: %v", err)
	}
	if res.Turn == nil || res.Turn.State != world.StateVictory || res.Encounter != nil || !room.Cleared {
		t.Fatalf("expected victory and a cleared room, got %+v", res.Turn)
	}

	room.Gold = 7
	room.Weapons = []item.Weapon{}
	room.Items = []item.Item{item.MustLookup("health potion"), item.MustLookup("experience gem"), item.MustLookup("armor piece")}

	gold := w.Player.Gold
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbTake, Target: "Gold"}); err != nil {
		t.Fatalf("take gold err: %v", err)
	}
	if w.Player.Gold != gold+7 || room.Gold != 0 {
		t.Fatalf("gold = %d", w.Player.Gold)
	}

	res, err = exec(t, svc, acct, id, Intent{Verb: VerbTakeAll})
	if err != nil {
		t.Fatalf("takeall err: %v", err)
	}
	if len(res.Taken) != 3 || len(res.Left) != 0 {
		t.Fatalf("taken=%v left=%v", res.Taken, res.Left)
	}
	if w.Player.InventoryCount() != 1 || !w.Player.HasItem("health potion") {
		t.Fatalf("only the potion should use a slot, count=%d", w.Player.InventoryCount())
	}
	if w.Player.Level != 2 || !pub.saw(mq.SubjectLevelUp) {
		t.Fatalf("experience gem should level the player, level=%d", w.Player.Level)
	}
	if len(w.Player.Wearables) != 1 || w.Player.EffectiveStats().Strength != w.Player.Stats.Strength+5 {
		t.Fatal("armor piece should be worn on pickup")
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbTake, Target: "health potion"}); !errors.Is(err, character.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestDiscardEquipAndConsume(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)
	p := w.Player
	_ = p.AddItem(item.MustLookup("health potion"))
	spare := itemization.StartingWeapons()[1]
	_ = p.AddWeapon(spare)

	res, err := exec(t, svc, acct, id, Intent{Verb: VerbEquip, Target: "WOODEN STAFF"})
	if err != nil {
		t.Fatalf("equip err: %v", err)
	}
	if res.Equipped == nil || p.Weapon.Name != "Wooden Staff" || p.Weapons[0].Name != "Iron Sword" {
		t.Fatal("equip should swap the weapons")
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbDiscard, Target: "iron sword"}); err != nil {
		t.Fatalf("discard err: %v", err)
	}
	if len(p.Weapons) != 0 || len(w.CurrentRoom().Weapons) == 0 {
		t.Fatal("discarded weapon should land in the room")
	}

	p.Health = 40
	res, err = exec(t, svc, acct, id, Intent{Verb: VerbConsume})
	if err != nil {
		t.Fatalf("consume err: %v", err)
	}
	if res.Consumed != "Health Potion" || res.Restored != 30 || p.Health != 70 {
		t.Fatalf("consume result %+v health=%d", res, p.Health)
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbConsume}); !errors.Is(err, character.ErrEmptyInventory) {
		t.Fatalf("expected ErrEmptyInventory, got %v", err)
	}
}

func TestBossGateOnEntry(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)
	f := w.CurrentFloor()
	boss := f.Room(f.BossRoom)
	var next world.RoomRef
	for _, d := range world.Planar {
		if ex, ok := boss.Exits[d]; ok {
			next = ex.To
			break
		}
	}
	dir, ok := stepToward(f.Room(next.Room), f.BossRoom)
	if !ok {
		t.Fatal("boss chamber neighbour has no way back")
	}
	w.Location = next

	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: string(dir)}); !errors.Is(err, encounter.ErrBelowMinimumLevel) {
		t.Fatalf("expected ErrBelowMinimumLevel, got %v", err)
	}
	if w.Location != next || w.InCombat() {
		t.Fatal("a refused boss fight must leave the player where they were")
	}

	w.Player.Level = 2
	res, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: string(dir)})
	if err != nil {
		t.Fatalf("go err: %v", err)
	}
	if res.Encounter == nil || !res.Encounter.Boss || res.Room.Boss == nil {
		t.Fatalf("entering the chamber should start the boss fight, got %+v", res.Encounter)
	}
}

func TestStairsAndFloorTransitions(t *testing.T) {
	svc, pub := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)
	f := w.CurrentFloor()
	w.Location = world.RoomRef{Floor: 1, Room: f.BossRoom}

	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: "down"}); !errors.Is(err, ErrExitLocked) {
		t.Fatalf("expected ErrExitLocked, got %v", err)
	}
	f.Boss.Defeated = true
	boss := f.Room(f.BossRoom)
	ex := boss.Exits[world.Down]
	ex.Locked = false
	boss.Exits[world.Down] = ex

	res, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: "down"})
	if err != nil {
		t.Fatalf("go down err: %v", err)
	}
	if res.FloorEntered != 2 || w.Floor(2) == nil || w.Location != (world.RoomRef{Floor: 2, Room: w.Floor(2).Entry}) {
		t.Fatalf("expected floor 2 entry, got %+v", w.Location)
	}
	if !pub.saw(mq.SubjectFloorEntered) {
		t.Fatal("expected floor entered event")
	}
	if w.Floor(3) != nil {
		t.Fatal("floors are generated only when reached")
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: "up"}); err != nil {
		t.Fatalf("go up err: %v", err)
	}
	if w.Location != (world.RoomRef{Floor: 1, Room: f.BossRoom}) {
		t.Fatalf("up stairs should land in the boss chamber, got %+v", w.Location)
	}
}

func TestFinalBossCompletesGame(t *testing.T) {
	svc, pub := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)
	f10 := svc.gen.EnsureFloor(w, world.MaxFloors)
	w.Location = world.RoomRef{Floor: world.MaxFloors, Room: f10.BossRoom}
	w.Player.Level = 20
	gun := itemization.GoldenGun(uuid.New(), "Cosmos Ender")
	w.Player.Weapon = &gun

	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbFight}); err != nil {
		t.Fatalf("fight err: %v", err)
	}
	res, err := exec(t, svc, acct, id, Intent{Verb: VerbAttack})
	if err != nil {
		t.Fatalf("attack err: %v", err)
	}
	if !res.Completed || !w.Completed || !f10.Boss.Defeated {
		t.Fatal("defeating the last boss completes the game")
	}
	if !pub.saw(mq.SubjectBossDefeated) || !pub.saw(mq.SubjectGameCompleted) {
		t.Fatal("expected boss defeated and game completed events")
	}
}

func TestDefeatEndsGame(t *testing.T) {
	svc, pub := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)
	room := w.CurrentRoom()
	room.Enemies = []world.Enemy{{ID: uuid.New(), Species: "ogre", Name: "Ogre", Health: 900, MaxHealth: 900, Damage: 500}}

	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbFight}); err != nil {
		t.Fatalf("fight err: %v", err)
	}
	res, err := exec(t, svc, acct, id, Intent{Verb: VerbDefend})
	if err != nil {
		t.Fatalf("defend err: %v", err)
	}
	if !res.GameOver || res.Turn.State != world.StateDefeat || !pub.saw(mq.SubjectPlayerDefeated) {
		t.Fatalf("expected defeat, got %+v", res.Turn)
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbGo, Direction: "north"}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbStats}); err != nil {
		t.Fatalf("stats should still work, got %v", err)
	}
}

func TestUpgradeAndMap(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)

	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbUpgrade}); !errors.Is(err, progression.ErrTierNotEligible) {
		t.Fatalf("expected ErrTierNotEligible, got %v", err)
	}
	w.Player.Level = 5
	res, err := exec(t, svc, acct, id, Intent{Verb: VerbUpgrade})
	if err != nil {
		t.Fatalf("upgrade err: %v", err)
	}
	if res.Upgrade == nil || res.Upgrade.Title != "Berserker" || res.Player.Tier != 2 {
		t.Fatalf("unexpected upgrade %+v", res.Upgrade)
	}

	res, _ = exec(t, svc, acct, id, Intent{Verb: VerbMap})
	if res.Map == nil || res.Map.Mapped || len(res.Map.Rooms) != 1 {
		t.Fatalf("unmapped floor should only show visited rooms, got %+v", res.Map)
	}
	room := w.CurrentRoom()
	room.Cleared = true
	room.Items = append(room.Items, item.MustLookup(item.KeyMap))
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbTake, Target: "Dungeon Map"}); err != nil {
		t.Fatalf("take map err: %v", err)
	}
	res, _ = exec(t, svc, acct, id, Intent{Verb: VerbMap})
	if !res.Map.Mapped || len(res.Map.Rooms) != len(w.CurrentFloor().Rooms) {
		t.Fatalf("mapped floor should show every room, got %d", len(res.Map.Rooms))
	}
}

func TestSaveAndLoadSwapWorld(t *testing.T) {
	svc, pub := newTestService(t, Options{})
	acct := uuid.New()
	id, w := startGame(t, svc, acct)
	w.Player.Gold = 12

	res, err := exec(t, svc, acct, id, Intent{Verb: VerbSave, Target: "camp"})
	if err != nil {
		t.Fatalf("save err: %v", err)
	}
	if res.Slot == nil || res.Slot.Name != "camp" {
		t.Fatalf("unexpected slot %+v", res.Slot)
	}
	w.Player.Gold = 999
	w.GameOver = true

	res, err = exec(t, svc, acct, id, Intent{Verb: VerbLoad, Target: "camp"})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	if res.Player.Gold != 12 || res.GameOver {
		t.Fatalf("load should restore the saved world, gold=%d", res.Player.Gold)
	}
	if !pub.saw(mq.SubjectGameSaved) || !pub.saw(mq.SubjectGameLoaded) {
		t.Fatal("expected save and load events")
	}

	live := svc.sessions[id].world
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbLoad, Target: "missing"}); !errors.Is(err, savegame.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if svc.sessions[id].world != live {
		t.Fatal("failed load must keep the live world")
	}
}

func TestReapEvictsIdleSessions(t *testing.T) {
	svc, _ := newTestService(t, Options{IdleTimeout: time.Minute})
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	acct := uuid.New()
	id, _ := startGame(t, svc, acct)
	busy, _ := startGame(t, svc, acct)

	now = now.Add(45 * time.Second)
	if _, err := exec(t, svc, acct, busy, Intent{Verb: VerbLook}); err != nil {
		t.Fatalf("look err: %v", err)
	}
	now = now.Add(30 * time.Second)
	if n := svc.Reap(context.Background()); n != 1 {
		t.Fatalf("reaped %d sessions, want 1", n)
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbLook}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if svc.Sessions() != 1 {
		t.Fatalf("sessions = %d", svc.Sessions())
	}
	slots, err := svc.saves.List(context.Background(), acct)
	if err != nil || len(slots) != 1 || slots[0].Name != savegame.AutosaveSlot {
		t.Fatalf("expected an autosave, got %v %v", slots, err)
	}
}

func TestClientsReceiveResults(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	acct := uuid.New()
	id, _ := startGame(t, svc, acct)
	c, err := svc.RegisterClient(nil, acct, id)
	if err != nil {
		t.Fatalf("RegisterClient err: %v", err)
	}
	if _, err := svc.RegisterClient(nil, uuid.New(), id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := exec(t, svc, acct, id, Intent{Verb: VerbStats}); err != nil {
		t.Fatalf("stats err: %v", err)
	}
	select {
	case msg := <-c.Send:
		if len(msg) == 0 {
			t.Fatal("empty push")
		}
	default:
		t.Fatal("expected a pushed result")
	}
	svc.UnregisterClient(c)
	if _, ok := <-c.Send; ok {
		t.Fatal("send channel should be closed")
	}
}
