package world

// Species is an immutable enemy descriptor bound to a theme tier.
type Species struct {
	ID     string
	Name   string
	Tier   int
	Health int
	Damage int
	XP     int
	Intro  string
}

var roster = []Species{
	{ID: "goblin", Name: "Goblin", Tier: 1, Health: 25, Damage: 8, XP: 25, Intro: "A goblin leaps from the shadows, rusty blade raised."},
	{ID: "cave-rat", Name: "Cave Rat", Tier: 1, Health: 18, Damage: 6, XP: 18, Intro: "A dog-sized rat bares yellow teeth."},
	{ID: "kobold-sneak", Name: "Kobold Sneak", Tier: 1, Health: 22, Damage: 7, XP: 22, Intro: "A kobold hisses and circles, looking for an opening."},

	{ID: "armored-skeleton", Name: "Armored Skeleton", Tier: 2, Health: 35, Damage: 12, XP: 40, Intro: "Bones rattle inside dented plate as a skeleton advances."},
	{ID: "ghoul", Name: "Ghoul", Tier: 2, Health: 38, Damage: 11, XP: 42, Intro: "A ghoul lifts its head from a gnawed femur."},
	{ID: "bone-archer", Name: "Bone Archer", Tier: 2, Health: 30, Damage: 13, XP: 38, Intro: "A skeletal archer nocks an arrow with clicking fingers."},

	{ID: "bog-lurker", Name: "Bog Lurker", Tier: 3, Health: 45, Damage: 14, XP: 50, Intro: "Something heavy rises out of the brackish water."},
	{ID: "drowned-sailor", Name: "Drowned Sailor", Tier: 3, Health: 42, Damage: 15, XP: 52, Intro: "A bloated sailor staggers forward, cutlass dripping."},
	{ID: "giant-leech", Name: "Giant Leech", Tier: 3, Health: 40, Damage: 13, XP: 48, Intro: "A leech as long as a man uncoils from the wall."},

	{ID: "sporeling", Name: "Sporeling", Tier: 4, Health: 50, Damage: 16, XP: 58, Intro: "A walking fungus puffs a cloud of spores."},
	{ID: "myconid-brute", Name: "Myconid Brute", Tier: 4, Health: 58, Damage: 17, XP: 62, Intro: "A hulking mushroom-man pounds its fists together."},
	{ID: "cave-spider", Name: "Cave Spider", Tier: 4, Health: 48, Damage: 18, XP: 60, Intro: "A spider drops from the ceiling on a silver thread."},

	{ID: "corrupted-mage", Name: "Corrupted Mage", Tier: 5, Health: 55, Damage: 20, XP: 70, Intro: "A mage wreathed in sickly light begins an incantation."},
	{ID: "animated-tome", Name: "Animated Tome", Tier: 5, Health: 60, Damage: 18, XP: 68, Intro: "A heavy book flaps open, pages edged like razors."},
	{ID: "ink-shade", Name: "Ink Shade", Tier: 5, Health: 52, Damage: 21, XP: 72, Intro: "Spilled ink pulls itself into a human shape."},

	{ID: "treasure-guardian", Name: "Treasure Guardian", Tier: 6, Health: 70, Damage: 22, XP: 80, Intro: "A guardian of stone and gold turns its gaze on you."},
	{ID: "mimic", Name: "Mimic", Tier: 6, Health: 65, Damage: 24, XP: 85, Intro: "The chest sprouts teeth."},
	{ID: "gilded-golem", Name: "Gilded Golem", Tier: 6, Health: 80, Damage: 21, XP: 82, Intro: "A golem plated in gold leaf grinds into motion."},

	{ID: "shadow-wraith", Name: "Shadow Wraith", Tier: 7, Health: 75, Damage: 26, XP: 95, Intro: "A wraith peels itself from the darkness."},
	{ID: "umbral-stalker", Name: "Umbral Stalker", Tier: 7, Health: 72, Damage: 27, XP: 98, Intro: "Two pale eyes open in the dark beside you."},
	{ID: "night-hag", Name: "Night Hag", Tier: 7, Health: 78, Damage: 25, XP: 96, Intro: "A hag cackles and rakes the air with black nails."},

	{ID: "frost-troll", Name: "Frost Troll", Tier: 8, Health: 95, Damage: 28, XP: 110, Intro: "A troll rimed with frost roars and charges."},
	{ID: "ice-wraith", Name: "Ice Wraith", Tier: 8, Health: 85, Damage: 30, XP: 112, Intro: "The air freezes as a wraith of ice drifts closer."},
	{ID: "snow-stalker", Name: "Snow Stalker", Tier: 8, Health: 88, Damage: 29, XP: 108, Intro: "A white-furred hunter pads out of the snowdrift."},

	{ID: "fire-imp", Name: "Fire Imp", Tier: 9, Health: 90, Damage: 32, XP: 125, Intro: "An imp giggles, juggling balls of flame."},
	{ID: "magma-hound", Name: "Magma Hound", Tier: 9, Health: 100, Damage: 33, XP: 130, Intro: "A hound of cooling rock bays, drooling fire."},
	{ID: "forge-fiend", Name: "Forge Fiend", Tier: 9, Health: 110, Damage: 31, XP: 128, Intro: "A fiend hefts a red-hot hammer from the coals."},

	{ID: "void-horror", Name: "Void Horror", Tier: 10, Health: 120, Damage: 36, XP: 150, Intro: "Reality tears, and something vast looks through."},
	{ID: "abyssal-knight", Name: "Abyssal Knight", Tier: 10, Health: 130, Damage: 35, XP: 155, Intro: "A knight in black plate salutes, then attacks."},
	{ID: "chaos-spawn", Name: "Chaos Spawn", Tier: 10, Health: 115, Damage: 38, XP: 152, Intro: "A writhing mass of limbs lurches toward you."},
}

var speciesByID = func() map[string]Species {
	m := make(map[string]Species, len(roster))
	for _, s := range roster {
		m[s.ID] = s
	}
	return m
}()

func LookupSpecies(id string) (Species, bool) {
	s, ok := speciesByID[id]
	return s, ok
}

// SpeciesForTier returns the tier's pool in table order.
func SpeciesForTier(tier int) []Species {
	out := make([]Species, 0, 3)
	for _, s := range roster {
		if s.Tier == tier {
			out = append(out, s)
		}
	}
	return out
}

func Roster() []Species {
	return append([]Species(nil), roster...)
}
