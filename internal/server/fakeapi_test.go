package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pokedex-mcp/internal/favorites"
	"pokedex-mcp/internal/fetch"
	"pokedex-mcp/internal/pokedex"
	"pokedex-mcp/internal/pokemon"
)

var fixtures = []pokemon.Pokemon{
	{
		ID: 25, Name: "pikachu", Types: []string{"electric"},
		Stats:     pokemon.Stats{HP: 35, Attack: 55, Defense: 40, SpecialAttack: 50, SpecialDefense: 50, Speed: 90},
		Abilities: []string{"static"},
	},
	{
		ID: 6, Name: "charizard", Types: []string{"fire", "flying"},
		Stats:     pokemon.Stats{HP: 78, Attack: 84, Defense: 78, SpecialAttack: 109, SpecialDefense: 85, Speed: 100},
		Abilities: []string{"blaze"},
	},
	{
		ID: 26, Name: "raichu", Types: []string{"electric"},
		Stats:     pokemon.Stats{HP: 60, Attack: 90, Defense: 55, SpecialAttack: 90, SpecialDefense: 80, Speed: 110},
		Abilities: []string{"static"},
	},
}

// fakePokeAPI serves fixtures in the upstream wire shape and counts requests
// per path.
type fakePokeAPI struct {
	mu   sync.Mutex
	hits map[string]int
	srv  *httptest.Server
}

func newFakePokeAPI(t *testing.T) *fakePokeAPI {
	t.Helper()
	f := &fakePokeAPI{hits: make(map[string]int)}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakePokeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakePokeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/pokemon":
		results := make([]map[string]string, 0, len(fixtures))
		for _, p := range fixtures {
			results = append(results, map[string]string{"name": p.Name, "url": ""})
		}
		json.NewEncoder(w).Encode(map[string]any{"count": len(results), "results": results})
	case strings.HasPrefix(r.URL.Path, "/pokemon/"):
		name := strings.TrimPrefix(r.URL.Path, "/pokemon/")
		for _, p := range fixtures {
			if p.Name == name {
				json.NewEncoder(w).Encode(wirePokemon(p))
				return
			}
		}
		http.Error(w, "Not Found", http.StatusNotFound)
	case strings.HasPrefix(r.URL.Path, "/type/"):
		typeName := strings.TrimPrefix(r.URL.Path, "/type/")
		var members []map[string]any
		for _, p := range fixtures {
			for _, t := range p.Types {
				if t == typeName {
					members = append(members, map[string]any{"slot": 1, "pokemon": map[string]string{"name": p.Name, "url": ""}})
				}
			}
		}
		if members == nil {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"name": typeName, "pokemon": members})
	case r.URL.Path == "/generation/1":
		json.NewEncoder(w).Encode(map[string]any{
			"id": 1,
			"pokemon_species": []map[string]string{
				{"name": "charizard", "url": ""},
				{"name": "pikachu", "url": ""},
			},
		})
	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

func wirePokemon(p pokemon.Pokemon) map[string]any {
	types := make([]map[string]any, 0, len(p.Types))
	for i, t := range p.Types {
		types = append(types, map[string]any{"slot": i + 1, "type": map[string]string{"name": t}})
	}
	stats := []map[string]any{}
	for key, v := range map[string]int{
		"hp": p.Stats.HP, "attack": p.Stats.Attack, "defense": p.Stats.Defense,
		"special-attack": p.Stats.SpecialAttack, "special-defense": p.Stats.SpecialDefense, "speed": p.Stats.Speed,
	} {
		stats = append(stats, map[string]any{"base_stat": v, "stat": map[string]string{"name": key}})
	}
	abilities := make([]map[string]any, 0, len(p.Abilities)+1)
	for i, a := range p.Abilities {
		abilities = append(abilities, map[string]any{"ability": map[string]string{"name": a}, "is_hidden": false, "slot": i + 1})
	}
	abilities = append(abilities, map[string]any{"ability": map[string]string{"name": "hidden-power"}, "is_hidden": true, "slot": 3})
	return map[string]any{"id": p.ID, "name": p.Name, "types": types, "stats": stats, "abilities": abilities}
}

type harness struct {
	api   *fakePokeAPI
	svc   *pokedex.Service
	favs  *favorites.Store
	tools *Tools
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := newFakePokeAPI(t)
	svc := pokedex.NewService(fetch.NewClient(fetch.Options{BaseURL: api.srv.URL}), pokedex.Options{})
	favs := favorites.New(favorites.NewMemoryBackend(), favorites.Options{})
	return &harness{api: api, svc: svc, favs: favs, tools: NewTools(svc, favs, nil)}
}

func (h *harness) favoriteNames(t *testing.T) []string {
	t.Helper()
	list, err := h.favs.List(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, f := range list {
		names = append(names, f.PokemonName)
	}
	return names
}
