package pokedex

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"pokedex-mcp/internal/pokemon"
	"pokedex-mcp/internal/validate"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	maxGeneration      = 9
)

// Search fuzzy-matches query against every known Pokemon name, best first.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]pokemon.NamedResource, error) {
	q := validate.Sanitize(query)
	if q == "" {
		return nil, &pokemon.ValidationError{Rule: "empty", Message: "Search query cannot be empty"}
	}
	if len(q) > s.limits.MaxNameLength {
		return nil, &pokemon.ValidationError{
			Rule:    "length",
			Message: fmt.Sprintf("Search query is too long (max %d characters)", s.limits.MaxNameLength),
		}
	}
	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}

	all, err := s.listing(ctx, "list", func(ctx context.Context) ([]pokemon.NamedResource, error) {
		return s.upstream.PokemonList(ctx, s.listLimit)
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name
	}
	matches := fuzzy.Find(q, names)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]pokemon.NamedResource, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return out, nil
}

// ByType lists the Pokemon having the given type.
func (s *Service) ByType(ctx context.Context, raw string) ([]pokemon.NamedResource, error) {
	typeName := validate.Sanitize(raw)
	if err := validate.Name(typeName, s.limits); err != nil {
		return nil, &pokemon.ValidationError{Rule: "type", Message: fmt.Sprintf("Invalid type name '%s'", strings.TrimSpace(raw))}
	}
	return s.listing(ctx, "type:"+typeName, func(ctx context.Context) ([]pokemon.NamedResource, error) {
		return s.upstream.PokemonByType(ctx, typeName)
	})
}

// ByGeneration lists the species introduced in a generation (1-9).
func (s *Service) ByGeneration(ctx context.Context, generation int) ([]pokemon.NamedResource, error) {
	if generation < 1 || generation > maxGeneration {
		return nil, &pokemon.ValidationError{
			Rule:    "generation",
			Message: fmt.Sprintf("Generation must be between 1 and %d", maxGeneration),
		}
	}
	return s.listing(ctx, "generation:"+strconv.Itoa(generation), func(ctx context.Context) ([]pokemon.NamedResource, error) {
		return s.upstream.PokemonByGeneration(ctx, generation)
	})
}

func (s *Service) listing(ctx context.Context, key string, load func(context.Context) ([]pokemon.NamedResource, error)) ([]pokemon.NamedResource, error) {
	if v, ok := s.listings.Get(key); ok {
		return v, nil
	}
	v, err, _ := s.flight.Do(key, func() (any, error) {
		out, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.listings.Set(key, out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]pokemon.NamedResource), nil
}
