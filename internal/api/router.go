package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dungeon-server/internal/app/account"
	"dungeon-server/internal/app/game"
	"dungeon-server/internal/app/savegame"
	apperrors "dungeon-server/internal/platform/errors"
)

var (
	errAccountsDisabled = apperrors.New(apperrors.CodeUnavailable, "accounts are not configured")
	errMissingToken     = apperrors.New(apperrors.CodeUnauthorized, "missing bearer token")
	errInvalidToken     = apperrors.New(apperrors.CodeUnauthorized, "invalid token")
	errInvalidJSON      = apperrors.New(apperrors.CodeInvalidRequest, "invalid json")
	errInvalidGameID    = apperrors.New(apperrors.CodeInvalidRequest, "invalid game id")
)

// Handler serves the game over HTTP. With a nil account service every request
// plays as account.LocalID.
type Handler struct {
	logger      zerolog.Logger
	accounts    *account.Service
	games       *game.Service
	saves       *savegame.Service
	mcp         http.Handler
	corsOrigin  string
	maxBodySize int64
}

type contextKey string

const accountIDContextKey contextKey = "account_id"

type Options struct {
	CorsOrigin  string
	MaxBodySize int64
	MCP         bool
}

func NewHandler(logger zerolog.Logger, accounts *account.Service, games *game.Service, saves *savegame.Service, opts Options) *Handler {
	h := &Handler{
		logger:      logger,
		accounts:    accounts,
		games:       games,
		saves:       saves,
		corsOrigin:  opts.CorsOrigin,
		maxBodySize: opts.MaxBodySize,
	}
	if h.maxBodySize <= 0 {
		h.maxBodySize = 1 << 20
	}
	// MCP tools play as the local account, so they only exist without auth.
	switch {
	case opts.MCP && accounts == nil:
		h.mcp = newMCPHandler(games)
	case opts.MCP:
		logger.Warn().Msg("mcp tools disabled: accounts are enabled")
	}
	return h
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.cors)

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.ready)
	if h.mcp != nil {
		r.Handle("/mcp", h.mcp)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.With(middleware.Timeout(20*time.Second)).Post("/auth/register", h.register)
		v1.With(middleware.Timeout(20*time.Second)).Post("/auth/login", h.login)

		v1.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Get("/games/{gameID}/ws", h.gameWS)

			protected.Group(func(timed chi.Router) {
				timed.Use(middleware.Timeout(20 * time.Second))
				timed.Post("/games", h.newGame)
				timed.Get("/games/{gameID}", h.getGame)
				timed.Post("/games/{gameID}/intents", h.postIntent)
				timed.Get("/saves", h.listSaves)
				timed.Delete("/saves/{slot}", h.deleteSave)
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) ready(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "sessions": h.games.Sessions()})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		h.writeError(w, errAccountsDisabled)
		return
	}
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	res, err := h.accounts.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		h.writeError(w, errAccountsDisabled)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.accounts == nil {
			ctx := context.WithValue(r.Context(), accountIDContextKey, account.LocalID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if token == "" {
			// Browsers cannot set headers on a websocket handshake.
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			h.writeError(w, errMissingToken)
			return
		}
		uid, err := h.accounts.ParseToken(token)
		if err != nil {
			h.writeError(w, errInvalidToken)
			return
		}
		ctx := context.WithValue(r.Context(), accountIDContextKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accountIDFromCtx(ctx context.Context) uuid.UUID {
	uid, _ := ctx.Value(accountIDContextKey).(uuid.UUID)
	return uid
}

func (h *Handler) cors(next http.Handler) http.Handler {
	origin := h.corsOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.writeError(w, errInvalidJSON)
		return false
	}
	return true
}

// writeError renders err as {"error": code, "message": msg}. Errors without a
// code are logged and hidden behind a generic message.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	body := map[string]any{"error": code, "message": "internal error"}
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		body["message"] = coded.Message
		if len(coded.Metadata) > 0 {
			body["metadata"] = coded.Metadata
		}
	}
	if code == apperrors.CodeUnknown {
		h.logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, code.HTTPStatus(), body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
