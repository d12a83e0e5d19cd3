package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dungeon-server/internal/app/game"
)

func (h *Handler) newGame(w http.ResponseWriter, r *http.Request) {
	var req game.NewGameRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	res, err := h.games.NewGame(r.Context(), accountIDFromCtx(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	id, ok := h.gameID(w, r)
	if !ok {
		return
	}
	res, err := h.games.Snapshot(accountIDFromCtx(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) postIntent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.gameID(w, r)
	if !ok {
		return
	}
	var in game.Intent
	if !h.decodeBody(w, r, &in) {
		return
	}
	res, err := h.games.Execute(r.Context(), accountIDFromCtx(r.Context()), id, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listSaves(w http.ResponseWriter, r *http.Request) {
	if h.saves == nil {
		h.writeError(w, game.ErrSavesDisabled)
		return
	}
	slots, err := h.saves.List(r.Context(), accountIDFromCtx(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": slots})
}

func (h *Handler) deleteSave(w http.ResponseWriter, r *http.Request) {
	if h.saves == nil {
		h.writeError(w, game.ErrSavesDisabled)
		return
	}
	if err := h.saves.Delete(r.Context(), accountIDFromCtx(r.Context()), chi.URLParam(r, "slot")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) gameID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		h.writeError(w, errInvalidGameID)
		return uuid.Nil, false
	}
	return id, true
}
