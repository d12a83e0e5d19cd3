package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeInventoryFull, "inventory full")
	other := New(CodeInventoryFull, "no room for torch")
	wrapped := fmt.Errorf("take torch: %w", other)
	if !stderrors.Is(wrapped, sentinel) {
		t.Fatal("expected wrapped error to match sentinel by code")
	}
	if stderrors.Is(wrapped, New(CodeItemNotFound, "x")) {
		t.Fatal("expected different code not to match")
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("load: %w", Wrap(CodeCorruptSave, "decode save", stderrors.New("eof")))
	if got := CodeOf(err); got != CodeCorruptSave {
		t.Fatalf("CodeOf = %s, want %s", got, CodeCorruptSave)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf plain = %s, want %s", got, CodeUnknown)
	}
	if CodeSessionNotFound.HTTPStatus() != http.StatusNotFound {
		t.Fatal("expected session not found to map to 404")
	}
	if CodeInsufficientMana.HTTPStatus() != http.StatusBadRequest {
		t.Fatal("expected game rule errors to map to 400")
	}
}
