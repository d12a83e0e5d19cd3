package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"dungeon-server/internal/app/game"
	apperrors "dungeon-server/internal/platform/errors"
)

const (
	wsReadLimit    = 2048
	wsPongWait     = 60 * time.Second
	wsPingInterval = 20 * time.Second
	wsWriteWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// gameWS attaches a websocket to a session. Intents arrive as JSON messages;
// every result of the session, whichever transport issued it, is pushed back.
func (h *Handler) gameWS(w http.ResponseWriter, r *http.Request) {
	id, ok := h.gameID(w, r)
	if !ok {
		return
	}
	acct := accountIDFromCtx(r.Context())
	snap, err := h.games.Snapshot(acct, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client, err := h.games.RegisterClient(conn, acct, id)
	if err != nil {
		_ = conn.Close()
		return
	}
	h.send(client, map[string]any{"type": "result", "result": snap})
	go h.writePump(client)
	h.readPump(r.Context(), client)
}

func (h *Handler) readPump(ctx context.Context, client *game.Client) {
	defer h.games.UnregisterClient(client)
	client.Conn.SetReadLimit(wsReadLimit)
	_ = client.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.Conn.SetPongHandler(func(string) error {
		_ = client.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		var in game.Intent
		if err := client.Conn.ReadJSON(&in); err != nil {
			var syntax *json.SyntaxError
			if errors.As(err, &syntax) {
				h.sendError(client, errInvalidJSON)
				continue
			}
			return
		}
		if _, err := h.games.Execute(ctx, client.AccountID, client.SessionID, in); err != nil {
			h.sendError(client, err)
			if errors.Is(err, game.ErrSessionNotFound) {
				return
			}
		}
	}
}

func (h *Handler) writePump(client *game.Client) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = client.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) sendError(client *game.Client, err error) {
	msg := "internal error"
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		msg = coded.Message
	}
	h.send(client, map[string]any{"type": "error", "error": apperrors.CodeOf(err), "message": msg})
}

func (h *Handler) send(client *game.Client, payload any) {
	h.games.Send(client, payload)
}
