package world

type RoomTemplate struct {
	ID         string
	Name       string
	Physical   string
	Atmosphere string
}

type Theme struct {
	ID        string
	Name      string
	Tier      int
	Templates []RoomTemplate
}

var themes = [MaxFloors]Theme{
	{ID: "goblin-warrens", Name: "Goblin Warrens", Tier: 1, Templates: []RoomTemplate{
		{"gw-burrow", "Muddy Burrow", "A low tunnel dug through packed clay, roots hanging from the ceiling.", "The air smells of wet earth and old smoke."},
		{"gw-midden", "Refuse Midden", "Broken crates and gnawed bones are heaped against the walls.", "Flies drone in the dim light."},
		{"gw-firepit", "Cold Firepit", "A ring of blackened stones sits under a soot-stained chimney hole.", "Embers still tick faintly in the ash."},
		{"gw-larder", "Stolen Larder", "Sacks of grain and strings of onions hang from iron hooks.", "Something scurries away as you enter."},
		{"gw-lookout", "Crude Lookout", "A rickety platform overlooks a junction of tunnels.", "Distant goblin chatter echoes off the stone."},
	}},
	{ID: "bone-crypts", Name: "Bone Crypts", Tier: 2, Templates: []RoomTemplate{
		{"bc-ossuary", "Ossuary", "Skulls are stacked in neat rows from floor to vaulted ceiling.", "Empty sockets seem to follow you."},
		{"bc-tomb", "Sealed Tomb", "A stone sarcophagus rests beneath a cracked effigy.", "The silence here is heavy and patient."},
		{"bc-chapel", "Funeral Chapel", "Rotted pews face an altar draped in grey cloth.", "Candles that should have burned out long ago still flicker."},
		{"bc-niches", "Burial Niches", "Narrow shelves line the walls, each holding wrapped remains.", "Dust sifts down with every step."},
		{"bc-embalm", "Embalming Room", "Stained tables and copper basins crowd the chamber.", "A sweet chemical reek lingers."},
	}},
	{ID: "flooded-halls", Name: "Flooded Halls", Tier: 3, Templates: []RoomTemplate{
		{"fh-cistern", "Old Cistern", "Knee-deep water fills a pillared basin.", "Every drip echoes like a footstep."},
		{"fh-sluice", "Broken Sluice", "A rusted gate hangs askew over a rushing channel.", "Cold spray mists the air."},
		{"fh-drowned", "Drowned Gallery", "Tapestries float in the murk, their colors long bled away.", "Bubbles rise from somewhere below."},
		{"fh-pump", "Pump Room", "Great wooden gears sit frozen in green slime.", "The stone sweats with moisture."},
		{"fh-grotto", "Shell Grotto", "The walls are crusted with pale shells and barnacles.", "A faint tide seems to breathe in and out."},
	}},
	{ID: "fungal-caverns", Name: "Fungal Caverns", Tier: 4, Templates: []RoomTemplate{
		{"fc-glowcap", "Glowcap Grove", "Mushrooms taller than a man shed a soft blue light.", "Spores drift like slow snow."},
		{"fc-rot", "Rotting Hollow", "A collapsed cave is carpeted in spongy mold.", "The ground gives slightly underfoot."},
		{"fc-web", "Webbed Passage", "Silk strands stretch between the stalactites.", "Something large has passed here recently."},
		{"fc-pool", "Mineral Pool", "A still pool reflects the ceiling's glowing fungi.", "The water tastes of iron in the air."},
		{"fc-garden", "Myconid Garden", "Neat rows of cultivated fungus grow in raised beds.", "A low humming vibrates in your teeth."},
	}},
	{ID: "cursed-library", Name: "Cursed Library", Tier: 5, Templates: []RoomTemplate{
		{"cl-stacks", "Endless Stacks", "Shelves rise into darkness, crammed with rotting books.", "Pages rustle though there is no wind."},
		{"cl-reading", "Reading Room", "Long tables hold open tomes and guttered lamps.", "Whispers stop the moment you listen for them."},
		{"cl-scriptorium", "Scriptorium", "Ink-stained desks face a shattered lectern.", "Quills twitch in their pots."},
		{"cl-archive", "Sealed Archive", "Iron-bound chests and scroll racks line the walls.", "The air crackles faintly with old wards."},
		{"cl-observatory", "Star Chamber", "A brass orrery turns slowly beneath a painted sky.", "The painted stars are not where they should be."},
	}},
	{ID: "treasure-vaults", Name: "Treasure Vaults", Tier: 6, Templates: []RoomTemplate{
		{"tv-counting", "Counting House", "Ledgers and scales sit on a marble counter.", "Coins glint between the floor tiles."},
		{"tv-strongroom", "Strongroom", "Heavy iron doors stand open on emptied shelves.", "Scratch marks show where something was dragged."},
		{"tv-hall", "Hall of Tribute", "Statues of kneeling kings hold out empty bowls.", "Gold leaf flakes from the pillars."},
		{"tv-mint", "Old Mint", "Coin dies and a cold furnace crowd the room.", "The metallic tang of gold fills your mouth."},
		{"tv-gallery", "Jeweled Gallery", "Display cases line the hall, most shattered.", "Your torchlight scatters off loose gems."},
	}},
	{ID: "shadow-sanctum", Name: "Shadow Sanctum", Tier: 7, Templates: []RoomTemplate{
		{"ss-nave", "Lightless Nave", "Black pillars vanish into a ceiling you cannot see.", "Your light seems smaller here."},
		{"ss-cloister", "Silent Cloister", "A colonnade surrounds a courtyard of dead grass.", "No sound carries more than a few feet."},
		{"ss-mirror", "Hall of Mirrors", "Obsidian mirrors reflect a room slightly different from this one.", "Your reflection is late to move."},
		{"ss-cells", "Penitent Cells", "Rows of cramped cells with chains still bolted to the walls.", "Someone is breathing nearby."},
		{"ss-altar", "Shadow Altar", "A basin of black liquid sits on a plinth of bone.", "The darkness leans toward you."},
	}},
	{ID: "frozen-depths", Name: "Frozen Depths", Tier: 8, Templates: []RoomTemplate{
		{"fd-glacier", "Glacier Cut", "A passage carved straight through blue ice.", "Your breath hangs frozen in the air."},
		{"fd-icefall", "Icefall", "Jagged icicles hang like teeth from the ceiling.", "The ice groans and settles."},
		{"fd-hall", "Frost Hall", "Frozen warriors stand locked mid-stride in the walls.", "Frost creeps across your armor."},
		{"fd-lake", "Frozen Lake", "A smooth sheet of ice stretches across the cavern.", "Dark shapes drift beneath the surface."},
		{"fd-hearth", "Dead Hearth", "A great fireplace is choked with snow.", "Warmth is a memory here."},
	}},
	{ID: "infernal-forge", Name: "Infernal Forge", Tier: 9, Templates: []RoomTemplate{
		{"if-foundry", "Foundry", "Channels of molten metal flow between iron walkways.", "Heat hammers at your face."},
		{"if-anvil", "Anvil Hall", "Anvils the size of wagons stand in rows.", "Phantom hammer-blows ring out."},
		{"if-slag", "Slag Pits", "Cooling slag crusts over bubbling pools.", "Sulfur stings your eyes."},
		{"if-bellows", "Bellows Chamber", "Leather bellows wheeze beside a roaring furnace.", "Sparks spiral up like fireflies."},
		{"if-quench", "Quenching Vats", "Steam boils from vats of black oil.", "Everything here hisses."},
	}},
	{ID: "abyssal-throne", Name: "Abyssal Throne", Tier: 10, Templates: []RoomTemplate{
		{"at-rift", "Rift Walk", "A narrow bridge spans a void without a bottom.", "The void hums a note you feel in your bones."},
		{"at-court", "Hollow Court", "Empty thrones circle a mosaic of a devouring eye.", "You have the sense of being judged."},
		{"at-garden", "Garden of Ash", "Petrified trees bear fruit of black glass.", "Ash falls upward."},
		{"at-stair", "Impossible Stair", "Steps spiral in directions that should not exist.", "Distances refuse to stay fixed."},
		{"at-well", "Well of Echoes", "A dry well descends into starlight.", "Your own voice answers from below."},
	}},
}

var specialTemplates = map[RoomType]RoomTemplate{
	RoomArmory:       {"armory", "Armory", "Weapon racks and sealed caches line the walls.", "The smell of oil and steel is strong."},
	RoomHiddenAlcove: {"hidden-alcove", "Hidden Alcove", "A narrow recess concealed behind loose stones.", "It has not seen light in a very long time."},
	RoomLockedVault:  {"locked-vault", "Locked Vault", "A squat vault door guards a room of iron chests.", "Dust lies undisturbed on every surface."},
	RoomSacredShrine: {"sacred-shrine", "Sacred Shrine", "A small shrine glows with soft golden light.", "You feel strangely at peace."},
}

// ThemeForFloor returns the theme for the 1-based floor index.
func ThemeForFloor(floor int) Theme {
	if floor < 1 {
		floor = 1
	}
	if floor > MaxFloors {
		floor = MaxFloors
	}
	return themes[floor-1]
}

func SpecialTemplate(t RoomType) (RoomTemplate, bool) {
	tpl, ok := specialTemplates[t]
	return tpl, ok
}
