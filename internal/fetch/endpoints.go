package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"pokedex-mcp/internal/pokemon"
)

// /pokemon/{name}
func (c *Client) Pokemon(ctx context.Context, name string) (pokemon.Pokemon, error) {
	body, err := c.FetchRaw(ctx, "/pokemon/"+url.PathEscape(name))
	if errors.Is(err, errNotFound) {
		return pokemon.Pokemon{}, &pokemon.NotFoundError{Name: name}
	}
	if err != nil {
		return pokemon.Pokemon{}, err
	}
	var raw pokemonResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return pokemon.Pokemon{}, decodeError("pokemon", err)
	}
	return normalizePokemon(raw), nil
}

// /pokemon?limit={limit}
func (c *Client) PokemonList(ctx context.Context, limit int) ([]pokemon.NamedResource, error) {
	if limit <= 0 {
		limit = 1000
	}
	body, err := c.FetchRaw(ctx, "/pokemon?limit="+strconv.Itoa(limit))
	if errors.Is(err, errNotFound) {
		return nil, &pokemon.UpstreamError{Kind: pokemon.KindStatus, Status: 404, Message: "pokemon list unavailable"}
	}
	if err != nil {
		return nil, err
	}
	var raw listResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, decodeError("pokemon list", err)
	}
	return raw.Results, nil
}

// /type/{type}
func (c *Client) PokemonByType(ctx context.Context, typeName string) ([]pokemon.NamedResource, error) {
	body, err := c.FetchRaw(ctx, "/type/"+url.PathEscape(typeName))
	if errors.Is(err, errNotFound) {
		return nil, &pokemon.NotFoundError{Name: typeName}
	}
	if err != nil {
		return nil, err
	}
	var raw typeResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, decodeError("type", err)
	}
	out := make([]pokemon.NamedResource, 0, len(raw.Pokemon))
	for _, p := range raw.Pokemon {
		out = append(out, p.Pokemon)
	}
	return out, nil
}

// /generation/{id}
func (c *Client) PokemonByGeneration(ctx context.Context, generation int) ([]pokemon.NamedResource, error) {
	body, err := c.FetchRaw(ctx, "/generation/"+strconv.Itoa(generation))
	if errors.Is(err, errNotFound) {
		return nil, &pokemon.NotFoundError{Name: fmt.Sprintf("generation-%d", generation)}
	}
	if err != nil {
		return nil, err
	}
	var raw generationResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, decodeError("generation", err)
	}
	return raw.PokemonSpecies, nil
}

func decodeError(what string, err error) error {
	return &pokemon.UpstreamError{Kind: pokemon.KindDecode, Message: "decode " + what + " response", Err: err}
}
