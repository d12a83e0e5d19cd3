package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"dungeon-server/internal/app/account"
	"dungeon-server/internal/app/game"
	apperrors "dungeon-server/internal/platform/errors"
)

const (
	mcpServerName    = "dungeon-server"
	mcpServerVersion = "0.1.0"
)

// newMCPHandler exposes the game as MCP tools so an agent can play a session.
// Tool calls act as account.LocalID.
func newMCPHandler(games *game.Service) http.Handler {
	s := server.NewMCPServer(mcpServerName, mcpServerVersion, server.WithToolCapabilities(false))
	s.AddTool(newGameTool(), newGameToolHandler(games))
	s.AddTool(actTool(), actToolHandler(games))
	s.AddTool(lookTool(), lookToolHandler(games))
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath("/mcp"))
}

func newGameTool() mcp.Tool {
	return mcp.NewTool("new_game",
		mcp.WithDescription("Start a new dungeon run and return its session id and first room"),
		mcp.WithString("class",
			mcp.Required(),
			mcp.Description("warrior, mage or rogue"),
		),
		mcp.WithString("name",
			mcp.Description("Character name; defaults to the class title"),
		),
		mcp.WithString("weapon",
			mcp.Description("Iron Sword, Wooden Staff or Steel Dagger; defaults to the class weapon"),
		),
	)
}

func newGameToolHandler(games *game.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		class, ok := stringArg(args, "class")
		if !ok {
			return toolError(apperrors.New(apperrors.CodeInvalidRequest, "missing required parameter 'class'")), nil
		}
		name, _ := stringArg(args, "name")
		weapon, _ := stringArg(args, "weapon")
		res, err := games.NewGame(ctx, account.LocalID, game.NewGameRequest{Name: name, Class: class, Weapon: weapon})
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(res), nil
	}
}

func actTool() mcp.Tool {
	return mcp.NewTool("act",
		mcp.WithDescription("Issue one command to a running session: look, go, take, takeall, discard, equip, consume, fight, attack, magic, defend, potion, upgrade, map, stats, save or load"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id returned by new_game"),
		),
		mcp.WithString("verb",
			mcp.Required(),
			mcp.Description("The command verb"),
		),
		mcp.WithString("target",
			mcp.Description("Item, weapon, enemy or save slot the verb acts on"),
		),
		mcp.WithString("direction",
			mcp.Description("north, south, east, west, up or down for the go verb"),
		),
	)
}

func actToolHandler(games *game.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		id, err := sessionArg(args)
		if err != nil {
			return toolError(err), nil
		}
		verb, ok := stringArg(args, "verb")
		if !ok {
			return toolError(apperrors.New(apperrors.CodeInvalidRequest, "missing required parameter 'verb'")), nil
		}
		target, _ := stringArg(args, "target")
		dir, _ := stringArg(args, "direction")
		res, err := games.Execute(ctx, account.LocalID, id, game.Intent{Verb: game.Verb(verb), Target: target, Direction: dir})
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(res), nil
	}
}

func lookTool() mcp.Tool {
	return mcp.NewTool("look",
		mcp.WithDescription("Describe a session's current room, player and encounter without taking a turn"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id returned by new_game"),
		),
	)
}

func lookToolHandler(games *game.Service) server.ToolHandlerFunc {
	return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := sessionArg(request.GetArguments())
		if err != nil {
			return toolError(err), nil
		}
		res, err := games.Snapshot(account.LocalID, id)
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(res), nil
	}
}

func stringArg(args map[string]any, name string) (string, bool) {
	v, ok := args[name].(string)
	return v, ok && v != ""
}

func sessionArg(args map[string]any) (uuid.UUID, error) {
	raw, ok := stringArg(args, "session_id")
	if !ok {
		return uuid.Nil, apperrors.New(apperrors.CodeInvalidRequest, "missing required parameter 'session_id'")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidGameID
	}
	return id, nil
}

func toolJSON(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultText(`{"error": "failed to marshal response"}`)
	}
	return mcp.NewToolResultText(string(b))
}

func toolError(err error) *mcp.CallToolResult {
	msg := "internal error"
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		msg = coded.Message
	}
	b, _ := json.Marshal(map[string]any{"error": apperrors.CodeOf(err), "message": msg})
	return mcp.NewToolResultError(string(b))
}
