package fetch

import (
	"sort"

	"pokedex-mcp/internal/pokemon"
)

// pokemonResponse is the subset of GET /pokemon/{name} we read.
type pokemonResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Types []struct {
		Slot int                   `json:"slot"`
		Type pokemon.NamedResource `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int                   `json:"base_stat"`
		Effort   int                   `json:"effort"`
		Stat     pokemon.NamedResource `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		Ability  pokemon.NamedResource `json:"ability"`
		IsHidden bool                  `json:"is_hidden"`
		Slot     int                   `json:"slot"`
	} `json:"abilities"`
}

type listResponse struct {
	Count   int                     `json:"count"`
	Results []pokemon.NamedResource `json:"results"`
}

type typeResponse struct {
	Name    string `json:"name"`
	Pokemon []struct {
		Slot    int                   `json:"slot"`
		Pokemon pokemon.NamedResource `json:"pokemon"`
	} `json:"pokemon"`
}

type generationResponse struct {
	ID             int                     `json:"id"`
	Name           string                  `json:"name"`
	PokemonSpecies []pokemon.NamedResource `json:"pokemon_species"`
}

// normalizePokemon flattens the upstream shape. Stats PokeAPI omits stay 0.
func normalizePokemon(raw pokemonResponse) pokemon.Pokemon {
	var stats pokemon.Stats
	for _, s := range raw.Stats {
		switch s.Stat.Name {
		case "hp":
			stats.HP = s.BaseStat
		case "attack":
			stats.Attack = s.BaseStat
		case "defense":
			stats.Defense = s.BaseStat
		case "special-attack":
			stats.SpecialAttack = s.BaseStat
		case "special-defense":
			stats.SpecialDefense = s.BaseStat
		case "speed":
			stats.Speed = s.BaseStat
		}
	}

	slots := append(raw.Types[:0:0], raw.Types...)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })
	types := make([]string, 0, len(slots))
	for _, t := range slots {
		types = append(types, t.Type.Name)
	}

	abilities := make([]string, 0, len(raw.Abilities))
	for _, a := range raw.Abilities {
		if a.IsHidden {
			continue
		}
		abilities = append(abilities, a.Ability.Name)
	}

	return pokemon.Pokemon{
		ID:        raw.ID,
		Name:      raw.Name,
		Types:     types,
		Stats:     stats,
		Abilities: abilities,
	}
}
