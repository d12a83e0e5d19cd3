package game

import (
	"strings"

	"golang.org/x/text/cases"

	apperrors "dungeon-server/internal/platform/errors"
)

type Verb string

const (
	VerbLook    Verb = "look"
	VerbGo      Verb = "go"
	VerbTake    Verb = "take"
	VerbTakeAll Verb = "takeall"
	VerbDiscard Verb = "discard"
	VerbEquip   Verb = "equip"
	VerbConsume Verb = "consume"
	VerbFight   Verb = "fight"
	VerbAttack  Verb = "attack"
	VerbMagic   Verb = "magic"
	VerbDefend  Verb = "defend"
	VerbPotion  Verb = "potion"
	VerbUpgrade Verb = "upgrade"
	VerbMap     Verb = "map"
	VerbStats   Verb = "stats"
	VerbSave    Verb = "save"
	VerbLoad    Verb = "load"
)

// Verbs lists every verb Execute accepts.
var Verbs = []Verb{
	VerbLook, VerbGo, VerbTake, VerbTakeAll, VerbDiscard, VerbEquip, VerbConsume,
	VerbFight, VerbAttack, VerbMagic, VerbDefend, VerbPotion,
	VerbUpgrade, VerbMap, VerbStats, VerbSave, VerbLoad,
}

// Intent is an already-parsed player command.
type Intent struct {
	Verb      Verb   `json:"verb"`
	Target    string `json:"target,omitempty"`
	Direction string `json:"direction,omitempty"`
}

var (
	ErrInvalidIntent   = apperrors.New(apperrors.CodeInvalidIntent, "unknown command")
	ErrMissingTarget   = apperrors.New(apperrors.CodeInvalidIntent, "command needs a target")
	ErrEncounterActive = apperrors.New(apperrors.CodeEncounterActive, "finish the fight first")
	ErrNoEncounter     = apperrors.New(apperrors.CodeNoEncounter, "there is nothing to fight")
	ErrNoExit          = apperrors.New(apperrors.CodeNoExit, "no exit that way")
	ErrExitLocked      = apperrors.New(apperrors.CodeExitLocked, "the way is barred")
	ErrRoomSealed      = apperrors.New(apperrors.CodeRoomSealed, "the room is sealed")
	ErrRoomNotCleared  = apperrors.New(apperrors.CodeRoomNotCleared, "enemies still guard this room")
	ErrGameOver        = apperrors.New(apperrors.CodeGameOver, "the game is over")
	ErrSessionNotFound = apperrors.New(apperrors.CodeSessionNotFound, "game session not found")
	ErrForbidden       = apperrors.New(apperrors.CodeForbidden, "session belongs to another account")
	ErrInvalidChoice   = apperrors.New(apperrors.CodeInvalidChoice, "not one of the offered choices")
	ErrSavesDisabled   = apperrors.New(apperrors.CodeInvalidIntent, "saving is not configured")
)

func ParseVerb(s string) (Verb, bool) {
	v := Verb(fold(s))
	for _, known := range Verbs {
		if v == known {
			return v, true
		}
	}
	return "", false
}

func (v Verb) combat() bool {
	return v == VerbAttack || v == VerbMagic || v == VerbDefend || v == VerbPotion
}

// allowedAfterGameOver are the verbs that still work once the player has died.
func (v Verb) allowedAfterGameOver() bool {
	return v == VerbLook || v == VerbStats || v == VerbMap || v == VerbLoad
}

// fold case-folds a target for comparison. Casers keep state, so each call
// gets its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
