package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Combat and inventory
	CodeInsufficientMana  Code = "INSUFFICIENT_MANA"
	CodeEmptyInventory    Code = "EMPTY_INVENTORY"
	CodeItemNotFound      Code = "ITEM_NOT_FOUND"
	CodeInventoryFull     Code = "INVENTORY_FULL"
	CodeHealingDenied     Code = "HEALING_DENIED"
	CodeBelowMinimumLevel Code = "BELOW_MINIMUM_LEVEL"
	CodeEnemyNotFound     Code = "ENEMY_NOT_FOUND"
	CodeEncounterActive   Code = "ENCOUNTER_ACTIVE"
	CodeNoEncounter       Code = "NO_ENCOUNTER"
	CodeEncounterOver     Code = "ENCOUNTER_OVER"

	// Progression
	CodeTierNotEligible Code = "TIER_NOT_ELIGIBLE"

	// Navigation
	CodeRoomNotCleared Code = "ROOM_NOT_CLEARED"
	CodeNoExit         Code = "NO_EXIT"
	CodeExitLocked     Code = "EXIT_LOCKED"
	CodeRoomSealed     Code = "ROOM_SEALED"

	// Persistence
	CodeVersionMismatch Code = "VERSION_MISMATCH"
	CodeCorruptSave     Code = "CORRUPT_SAVE"
	CodeSaveNotFound    Code = "SAVE_NOT_FOUND"

	// Session and requests
	CodeGameOver           Code = "GAME_OVER"
	CodeInvalidClass       Code = "INVALID_CLASS"
	CodeInvalidChoice      Code = "INVALID_CHOICE"
	CodeInvalidIntent      Code = "INVALID_INTENT"
	CodeSessionNotFound    Code = "SESSION_NOT_FOUND"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidEmail       Code = "INVALID_EMAIL"
	CodeWeakPassword       Code = "WEAK_PASSWORD"
	CodeEmailInUse         Code = "EMAIL_IN_USE"
	CodeForbidden          Code = "FORBIDDEN"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidRequest     Code = "INVALID_REQUEST"
	CodeUnavailable        Code = "UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeSessionNotFound, CodeSaveNotFound, CodeEnemyNotFound:
		return http.StatusNotFound
	case CodeInvalidCredentials, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeEmailInUse, CodeEncounterActive, CodeGameOver, CodeVersionMismatch:
		return http.StatusConflict
	case CodeCorruptSave:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
