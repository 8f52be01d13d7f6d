// Package server exposes the pokedex over MCP and HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pokedex-mcp/internal/format"
	"pokedex-mcp/internal/pokedex"
	"pokedex-mcp/internal/pokemon"
	"pokedex-mcp/internal/validate"
)

const (
	ServerName    = "pokemon-mcp-server"
	ServerVersion = "1.0.0"
)

type GetPokemonArgs struct {
	Name string `json:"name" jsonschema:"The name of the Pokemon to retrieve (case-insensitive)"`
}

type ComparePokemonArgs struct {
	Pokemon1 string `json:"pokemon1" jsonschema:"Name of the first Pokemon to compare"`
	Pokemon2 string `json:"pokemon2" jsonschema:"Name of the second Pokemon to compare"`
}

type SearchPokemonArgs struct {
	Query string `json:"query" jsonschema:"Part of a Pokemon name, fuzzy matched"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results (default 10, max 50)"`
}

type TypeArgs struct {
	Type string `json:"type" jsonschema:"Type name, e.g. fire or water"`
}

type GenerationArgs struct {
	Generation int `json:"generation" jsonschema:"Generation number (1-9)"`
}

type FavoriteArgs struct {
	Name string `json:"name" jsonschema:"Name of the Pokemon"`
}

type CacheStatsArgs struct {
	Clear bool `json:"clear,omitempty" jsonschema:"Clear the cache after reporting"`
}

type NoArgs struct{}

// ToolInfo is the discovery record served on /tools.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FavoriteStore is the favorites list the tools read and write.
type FavoriteStore interface {
	List(ctx context.Context) ([]pokemon.Favorite, error)
	Add(ctx context.Context, id int, name string) (bool, error)
	Remove(ctx context.Context, id int) (bool, error)
}

// Tools dispatches tool calls. It never returns an error to the transport:
// every failure becomes a text result starting with "Error: ".
type Tools struct {
	svc       *pokedex.Service
	favorites FavoriteStore
	logger    *slog.Logger
	registry  []ToolInfo
}

func NewTools(svc *pokedex.Service, favs FavoriteStore, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tools{svc: svc, favorites: favs, logger: logger}
}

// NewMCPServer builds an MCP server with every tool registered.
func NewMCPServer(t *Tools) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	t.Register(server)
	return server
}

// Register adds every tool to server and rebuilds the discovery registry.
func (t *Tools) Register(server *mcp.Server) {
	t.registry = make([]ToolInfo, 0, 10)

	addTool(t, server, &mcp.Tool{
		Name:        "get_pokemon",
		Description: "Retrieve detailed information about a Pokemon by name from PokeAPI",
	}, func(ctx context.Context, args GetPokemonArgs) (string, error) {
		return t.getPokemon(ctx, args.Name)
	})

	addTool(t, server, &mcp.Tool{
		Name:        "compare_pokemon",
		Description: "Compare two Pokemon showing differences in stats, types, and abilities",
	}, func(ctx context.Context, args ComparePokemonArgs) (string, error) {
		return t.comparePokemon(ctx, args.Pokemon1, args.Pokemon2)
	})

	addTool(t, server, &mcp.Tool{
		Name:        "search_pokemon",
		Description: "Fuzzy search Pokemon names",
	}, func(ctx context.Context, args SearchPokemonArgs) (string, error) {
		res, err := t.svc.Search(ctx, args.Query, args.Limit)
		if err != nil {
			return "", err
		}
		return format.Listing(fmt.Sprintf("Search results for %q", validate.Sanitize(args.Query)), res), nil
	})

	addTool(t, server, &mcp.Tool{
		Name:        "pokemon_by_type",
		Description: "List every Pokemon of a given type",
	}, func(ctx context.Context, args TypeArgs) (string, error) {
		res, err := t.svc.ByType(ctx, args.Type)
		if err != nil {
			return "", err
		}
		return format.Listing("Type: "+validate.Sanitize(args.Type), res), nil
	})

	addTool(t, server, &mcp.Tool{
		Name:        "pokemon_by_generation",
		Description: "List the Pokemon species introduced in a generation",
	}, func(ctx context.Context, args GenerationArgs) (string, error) {
		res, err := t.svc.ByGeneration(ctx, args.Generation)
		if err != nil {
			return "", err
		}
		return format.Listing(fmt.Sprintf("Generation %d", args.Generation), res), nil
	})

	addTool(t, server, &mcp.Tool{
		Name:        "add_favorite",
		Description: "Add a Pokemon to the favorites list",
	}, func(ctx context.Context, args FavoriteArgs) (string, error) {
		return t.addFavorite(ctx, args.Name)
	})

	addTool(t, server, &mcp.Tool{
		Name:        "remove_favorite",
		Description: "Remove a Pokemon from the favorites list",
	}, func(ctx context.Context, args FavoriteArgs) (string, error) {
		return t.removeFavorite(ctx, args.Name)
	})

	addTool(t, server, &mcp.Tool{
		Name:        "list_favorites",
		Description: "List favorite Pokemon",
	}, func(ctx context.Context, _ NoArgs) (string, error) {
		favs, err := t.favorites.List(ctx)
		if err != nil {
			return "", err
		}
		return format.Favorites(favs), nil
	})

	addTool(t, server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Cache key count and hit/miss counters",
	}, func(ctx context.Context, args CacheStatsArgs) (string, error) {
		b, err := json.MarshalIndent(t.svc.CacheStats(), "", "  ")
		if err != nil {
			return "", err
		}
		if args.Clear {
			t.svc.ClearCache()
		}
		return string(b), nil
	})
}

// Registry lists the registered tools in registration order.
func (t *Tools) Registry() []ToolInfo {
	return append([]ToolInfo(nil), t.registry...)
}

// addTool registers fn under tool with an input schema inferred from T.
// Arguments are decoded here rather than by the SDK so that a missing or
// mistyped field comes back as an "Error: " text result.
func addTool[T any](t *Tools, server *mcp.Server, tool *mcp.Tool, fn func(context.Context, T) (string, error)) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("tool %s: input schema: %v", tool.Name, err))
	}
	tool.InputSchema = schema
	t.registry = append(t.registry, ToolInfo{Name: tool.Name, Description: tool.Description})
	server.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolText(t.Call(ctx, tool.Name, func(ctx context.Context) (string, error) {
			args, err := decodeArgs[T](req.Params.Arguments)
			if err != nil {
				return "", err
			}
			return fn(ctx, args)
		})), nil
	})
}

// decodeArgs unmarshals raw tool arguments. Absent arguments decode to the
// zero value; a wrongly typed field is reported as a ValidationError.
func decodeArgs[T any](raw json.RawMessage) (T, error) {
	var args T
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return args, &pokemon.ValidationError{
				Rule:    "arguments",
				Message: fmt.Sprintf("Invalid argument '%s': must be %s", typeErr.Field, jsonKind(typeErr.Type)),
			}
		}
		return args, &pokemon.ValidationError{Rule: "arguments", Message: "Tool arguments must be a JSON object"}
	}
	return args, nil
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	default:
		return "a " + t.Kind().String()
	}
}

// Call runs fn, logs the outcome, and returns either its text or the
// "Error: <message>" rendering of its error.
func (t *Tools) Call(ctx context.Context, tool string, fn func(context.Context) (string, error)) string {
	reqID := uuid.NewString()
	start := time.Now()
	text, err := fn(ctx)
	log := t.logger.With("request_id", reqID, "tool", tool, "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		log.Info("tool call failed", "error", err)
		return "Error: " + pokemon.Message(err)
	}
	log.Info("tool call")
	return text
}

// GetPokemon is the get_pokemon tool outside of MCP, for the CLI.
func (t *Tools) GetPokemon(ctx context.Context, name string) string {
	return t.Call(ctx, "get_pokemon", func(ctx context.Context) (string, error) {
		return t.getPokemon(ctx, name)
	})
}

// ComparePokemon is the compare_pokemon tool outside of MCP, for the CLI.
func (t *Tools) ComparePokemon(ctx context.Context, name1, name2 string) string {
	return t.Call(ctx, "compare_pokemon", func(ctx context.Context) (string, error) {
		return t.comparePokemon(ctx, name1, name2)
	})
}

func (t *Tools) getPokemon(ctx context.Context, name string) (string, error) {
	p, err := t.svc.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	return format.Single(p), nil
}

func (t *Tools) comparePokemon(ctx context.Context, name1, name2 string) (string, error) {
	a, b, err := t.svc.Compare(ctx, name1, name2)
	if err != nil {
		return "", err
	}
	return format.Comparison(a, b), nil
}

func (t *Tools) addFavorite(ctx context.Context, name string) (string, error) {
	p, err := t.svc.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	added, err := t.favorites.Add(ctx, p.ID, p.Name)
	if err != nil {
		return "", err
	}
	if !added {
		return fmt.Sprintf("%s is already a favorite.", p.Name), nil
	}
	return fmt.Sprintf("Added %s (#%d) to favorites.", p.Name, p.ID), nil
}

func (t *Tools) removeFavorite(ctx context.Context, name string) (string, error) {
	key, err := t.svc.Canonical(name)
	if err != nil {
		return "", err
	}
	favs, err := t.favorites.List(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range favs {
		if f.PokemonName != key {
			continue
		}
		if _, err := t.favorites.Remove(ctx, f.PokemonID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed %s from favorites.", key), nil
	}
	return fmt.Sprintf("%s is not in favorites.", key), nil
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
