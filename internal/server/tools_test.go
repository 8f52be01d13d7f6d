package server

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, tools *Tools) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := NewMCPServer(tools)
	st, ct := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestListTools(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"get_pokemon", "compare_pokemon", "search_pokemon", "pokemon_by_type",
		"pokemon_by_generation", "add_favorite", "remove_favorite", "list_favorites", "cache_stats",
	}, names)

	require.Len(t, h.tools.Registry(), len(names))
	require.Equal(t, "get_pokemon", h.tools.Registry()[0].Name)
}

func TestGetPokemonTool(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	text := callText(t, cs, "get_pokemon", map[string]any{"name": "pikachu"})
	require.Contains(t, text, "**PIKACHU**")
	require.Contains(t, text, "HP: 35")
	require.Contains(t, text, "Attack: 55")
	require.Contains(t, text, "electric")
	require.Contains(t, text, "**Abilities:** static")
	require.NotContains(t, text, "hidden-power")
	require.Contains(t, text, "*Data cached for performance*")
}

func TestGetPokemonToolNotFound(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	text := callText(t, cs, "get_pokemon", map[string]any{"name": "notarealpokemon"})
	require.True(t, strings.HasPrefix(text, "Error: "))
	require.Contains(t, text, "notarealpokemon")
}

func TestGetPokemonToolValidation(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	text := callText(t, cs, "get_pokemon", map[string]any{"name": "   "})
	require.Equal(t, "Error: Pokemon name cannot be empty", text)

	text = callText(t, cs, "get_pokemon", map[string]any{"name": "mr. mime"})
	require.Equal(t, "Error: Pokemon name must contain only lowercase letters, numbers, and hyphens", text)
	require.Zero(t, h.api.count("/pokemon/mr. mime"))
}

func TestGetPokemonToolCachesRecord(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	first := callText(t, cs, "get_pokemon", map[string]any{"name": "pikachu"})
	second := callText(t, cs, "get_pokemon", map[string]any{"name": "Pikachu"})
	require.Equal(t, first, second)
	require.Equal(t, 1, h.api.count("/pokemon/pikachu"))

	stats := h.svc.CacheStats()
	require.Equal(t, 1, stats.Records.Keys)
	require.EqualValues(t, 1, stats.Records.Hits)
}

func TestComparePokemonTool(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	t.Run("identical", func(t *testing.T) {
		text := callText(t, cs, "compare_pokemon", map[string]any{"pokemon1": "pikachu", "pokemon2": "pikachu"})
		require.Contains(t, text, "**PIKACHU** vs **PIKACHU**")
		require.Contains(t, text, "identical")
		require.NotContains(t, text, "| Stat |")
	})

	t.Run("different", func(t *testing.T) {
		text := callText(t, cs, "compare_pokemon", map[string]any{"pokemon1": "pikachu", "pokemon2": "charizard"})
		require.Contains(t, text, "| Stat | PIKACHU | CHARIZARD | Difference |")
		require.Contains(t, text, "| Attack | 55 | 84 | -29 |")
		require.Contains(t, text, "## Type Comparison")
		require.Contains(t, text, "## Ability Comparison")

		text = callText(t, cs, "compare_pokemon", map[string]any{"pokemon1": "charizard", "pokemon2": "pikachu"})
		require.Contains(t, text, "| Attack | 84 | 55 | +29 |")
	})

	t.Run("one missing", func(t *testing.T) {
		text := callText(t, cs, "compare_pokemon", map[string]any{"pokemon1": "pikachu", "pokemon2": "missingno"})
		require.Equal(t, "Error: Pokemon 'missingno' not found", text)
	})

	require.Equal(t, 1, h.api.count("/pokemon/pikachu"))
	require.Equal(t, 1, h.api.count("/pokemon/charizard"))
}

func TestListingTools(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	text := callText(t, cs, "search_pokemon", map[string]any{"query": "chu"})
	require.Contains(t, text, "pikachu")
	require.Contains(t, text, "raichu")
	require.NotContains(t, text, "charizard")

	text = callText(t, cs, "pokemon_by_type", map[string]any{"type": "Electric"})
	require.Contains(t, text, "Type: electric")
	require.Contains(t, text, "raichu")

	text = callText(t, cs, "pokemon_by_generation", map[string]any{"generation": 1})
	require.Contains(t, text, "Generation 1")
	require.Contains(t, text, "charizard")

	text = callText(t, cs, "pokemon_by_generation", map[string]any{"generation": 12})
	require.True(t, strings.HasPrefix(text, "Error: "))
}

func TestFavoriteTools(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	require.Equal(t, "Added pikachu (#25) to favorites.", callText(t, cs, "add_favorite", map[string]any{"name": "Pikachu"}))
	require.Equal(t, "pikachu is already a favorite.", callText(t, cs, "add_favorite", map[string]any{"name": "pikachu"}))
	require.Equal(t, "Added charizard (#6) to favorites.", callText(t, cs, "add_favorite", map[string]any{"name": "charizard"}))
	require.Equal(t, []string{"pikachu", "charizard"}, h.favoriteNames(t))

	text := callText(t, cs, "list_favorites", map[string]any{})
	require.Contains(t, text, "#25 pikachu")
	require.Contains(t, text, "#6 charizard")

	require.Equal(t, "Removed pikachu from favorites.", callText(t, cs, "remove_favorite", map[string]any{"name": "pikachu"}))
	require.Equal(t, "pikachu is not in favorites.", callText(t, cs, "remove_favorite", map[string]any{"name": "pikachu"}))
	require.Equal(t, []string{"charizard"}, h.favoriteNames(t))

	text = callText(t, cs, "add_favorite", map[string]any{"name": "missingno"})
	require.Equal(t, "Error: Pokemon 'missingno' not found", text)
}

func TestCacheStatsTool(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	callText(t, cs, "get_pokemon", map[string]any{"name": "pikachu"})
	text := callText(t, cs, "cache_stats", map[string]any{"clear": true})
	require.Contains(t, text, `"keys": 1`)
	require.Zero(t, h.svc.CacheStats().Records.Keys)

	callText(t, cs, "get_pokemon", map[string]any{"name": "pikachu"})
	require.Equal(t, 2, h.api.count("/pokemon/pikachu"))
}

func TestCallWithoutTransport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.Contains(t, h.tools.GetPokemon(ctx, "raichu"), "**RAICHU**")
	require.Contains(t, h.tools.ComparePokemon(ctx, "raichu", "pikachu"), "| HP | 60 | 35 | +25 |")
	require.Equal(t, "Error: Pokemon name cannot be empty", h.tools.GetPokemon(ctx, ""))
}

func TestMalformedArgumentsReturnErrorText(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	cases := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"get_pokemon", map[string]any{}, "Error: Pokemon name cannot be empty"},
		{"get_pokemon", nil, "Error: Pokemon name cannot be empty"},
		{"get_pokemon", map[string]any{"name": 42}, "Error: Invalid argument 'name': must be a string"},
		{"compare_pokemon", map[string]any{"pokemon1": "pikachu"}, "Error: Pokemon name cannot be empty"},
		{"compare_pokemon", map[string]any{"pokemon1": true, "pokemon2": "pikachu"}, "Error: Invalid argument 'pokemon1': must be a string"},
		{"pokemon_by_generation", map[string]any{"generation": "one"}, "Error: Invalid argument 'generation': must be an integer"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, callText(t, cs, tc.tool, tc.args), "%s %v", tc.tool, tc.args)
	}
	require.Zero(t, h.api.count("/pokemon/pikachu"))
}

func TestToolSchemasDeclareRequiredFields(t *testing.T) {
	h := newHarness(t)
	cs := connect(t, h.tools)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	required := map[string][]any{}
	for _, tool := range res.Tools {
		schema, ok := tool.InputSchema.(map[string]any)
		require.True(t, ok, tool.Name)
		require.Equal(t, "object", schema["type"], tool.Name)
		if r, ok := schema["required"].([]any); ok {
			required[tool.Name] = r
		}
	}
	require.Equal(t, []any{"name"}, required["get_pokemon"])
	require.Equal(t, []any{"pokemon1", "pokemon2"}, required["compare_pokemon"])
	require.NotContains(t, required, "cache_stats")
}
