// Package pokedex resolves Pokemon through a read-through cache in front of
// PokeAPI. A Service is built once at startup and shared by every handler.
package pokedex

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"pokedex-mcp/internal/cache"
	"pokedex-mcp/internal/pokemon"
	"pokedex-mcp/internal/validate"
)

// Upstream is the subset of the PokeAPI client the service needs.
type Upstream interface {
	Pokemon(ctx context.Context, name string) (pokemon.Pokemon, error)
	PokemonList(ctx context.Context, limit int) ([]pokemon.NamedResource, error)
	PokemonByType(ctx context.Context, typeName string) ([]pokemon.NamedResource, error)
	PokemonByGeneration(ctx context.Context, generation int) ([]pokemon.NamedResource, error)
}

type Options struct {
	TTL         time.Duration
	CheckPeriod time.Duration
	Limits      validate.Limits
	ListLimit   int
	Logger      *slog.Logger
	Now         func() time.Time
}

type Service struct {
	upstream  Upstream
	records   *cache.Cache[pokemon.Pokemon]
	listings  *cache.Cache[[]pokemon.NamedResource]
	limits    validate.Limits
	listLimit int
	logger    *slog.Logger
	flight    singleflight.Group
}

func NewService(up Upstream, opts Options) *Service {
	limits := opts.Limits
	if limits == (validate.Limits{}) {
		limits = validate.DefaultLimits()
	}
	if limits.MaxNameLength <= 0 {
		limits.MaxNameLength = validate.DefaultLimits().MaxNameLength
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	listLimit := opts.ListLimit
	if listLimit <= 0 {
		listLimit = 1000
	}
	copts := cache.Options{TTL: opts.TTL, CheckPeriod: opts.CheckPeriod, Now: opts.Now}
	return &Service{
		upstream:  up,
		records:   cache.New[pokemon.Pokemon](copts),
		listings:  cache.New[[]pokemon.NamedResource](copts),
		limits:    limits,
		listLimit: listLimit,
		logger:    logger,
	}
}

// Start runs the cache janitors until ctx is done or Close is called.
func (s *Service) Start(ctx context.Context) {
	s.records.Start(ctx)
	s.listings.Start(ctx)
}

func (s *Service) Close() {
	s.records.Close()
	s.listings.Close()
}

// Canonical sanitizes and validates a raw name, returning the cache key.
func (s *Service) Canonical(raw string) (string, error) {
	name := validate.Sanitize(raw)
	if err := validate.Name(name, s.limits); err != nil {
		return "", err
	}
	return name, nil
}

// Lookup resolves one Pokemon by name.
func (s *Service) Lookup(ctx context.Context, raw string) (pokemon.Pokemon, error) {
	name, err := s.Canonical(raw)
	if err != nil {
		return pokemon.Pokemon{}, err
	}
	return s.resolve(ctx, name)
}

// Compare resolves two Pokemon. Distinct names are fetched concurrently and
// the first failure aborts the comparison. When both names are the same
// canonical key a single lookup is made and returned twice.
func (s *Service) Compare(ctx context.Context, raw1, raw2 string) (pokemon.Pokemon, pokemon.Pokemon, error) {
	name1, err := s.Canonical(raw1)
	if err != nil {
		return pokemon.Pokemon{}, pokemon.Pokemon{}, err
	}
	name2, err := s.Canonical(raw2)
	if err != nil {
		return pokemon.Pokemon{}, pokemon.Pokemon{}, err
	}
	if name1 == name2 {
		p, err := s.resolve(ctx, name1)
		return p, p, err
	}

	var (
		a, b pokemon.Pokemon
		g    errgroup.Group
	)
	g.Go(func() error {
		var err error
		a, err = s.resolve(ctx, name1)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = s.resolve(ctx, name2)
		return err
	})
	if err := g.Wait(); err != nil {
		return pokemon.Pokemon{}, pokemon.Pokemon{}, err
	}
	return a, b, nil
}

// resolve serves name from the cache, fetching and storing it on a miss.
// The upstream call is detached from ctx cancellation so a caller going
// away does not abort a fetch other callers may be sharing.
func (s *Service) resolve(ctx context.Context, name string) (pokemon.Pokemon, error) {
	start := time.Now()
	if p, ok := s.records.Get(name); ok {
		s.logger.Debug("cache hit", "name", name, "duration_ms", time.Since(start).Milliseconds())
		return p, nil
	}

	v, err, shared := s.flight.Do("pokemon:"+name, func() (any, error) {
		p, err := s.upstream.Pokemon(context.WithoutCancel(ctx), name)
		if err != nil {
			return pokemon.Pokemon{}, err
		}
		if verr := validate.Stats(p.Stats, s.limits); verr != nil {
			s.logger.Warn("upstream stats out of range", "name", name, "error", verr)
		}
		s.records.Set(name, p)
		return p, nil
	})
	if err != nil {
		s.logger.Debug("cache miss failed", "name", name, "error", err)
		return pokemon.Pokemon{}, err
	}
	s.logger.Debug("cache miss", "name", name, "shared", shared, "duration_ms", time.Since(start).Milliseconds())
	return v.(pokemon.Pokemon), nil
}

// CacheStats reports counters for the record and listing caches.
type CacheStats struct {
	Records  cache.Stats `json:"records"`
	Listings cache.Stats `json:"listings"`
	TTL      string      `json:"ttl"`
}

func (s *Service) CacheStats() CacheStats {
	return CacheStats{
		Records:  s.records.Stats(),
		Listings: s.listings.Stats(),
		TTL:      s.records.TTL().String(),
	}
}

// ClearCache drops every cached record and listing.
func (s *Service) ClearCache() {
	s.records.Clear()
	s.listings.Clear()
	s.logger.Info("cache cleared")
}

// Forget evicts a single record and reports whether one was present.
func (s *Service) Forget(raw string) (bool, error) {
	name, err := s.Canonical(raw)
	if err != nil {
		return false, err
	}
	return s.records.Delete(name) == 1, nil
}
