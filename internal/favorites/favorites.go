// Package favorites keeps the user's favorite Pokemon as one JSON array
// stored under a single well-known key. Every mutation reads and rewrites
// the whole array.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"pokedex-mcp/internal/pokemon"
	"pokedex-mcp/internal/validate"
)

// Key is the storage key holding the favorites array.
const Key = "mypokedex-favorites"

// ErrCorrupt marks a stored payload that could not be decoded.
var ErrCorrupt = errors.New("favorites payload is corrupt")

// Backend loads and saves the whole favorites array.
type Backend interface {
	Load(ctx context.Context) ([]pokemon.Favorite, error)
	Save(ctx context.Context, favs []pokemon.Favorite) error
}

type Store struct {
	mu      sync.Mutex
	backend Backend
	now     func() time.Time
	logger  *slog.Logger
}

type Options struct {
	Now    func() time.Time
	Logger *slog.Logger
}

func New(b Backend, opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{backend: b, now: now, logger: logger}
}

// load treats a corrupt payload as an empty list.
func (s *Store) load(ctx context.Context) ([]pokemon.Favorite, error) {
	favs, err := s.backend.Load(ctx)
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn("discarding corrupt favorites", "error", err)
		return []pokemon.Favorite{}, nil
	}
	if err != nil {
		return nil, err
	}
	if favs == nil {
		favs = []pokemon.Favorite{}
	}
	return favs, nil
}

// List returns every favorite in insertion order.
func (s *Store) List(ctx context.Context) ([]pokemon.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add appends a favorite unless one with the same id exists. It reports
// whether the list changed.
func (s *Store) Add(ctx context.Context, id int, name string) (bool, error) {
	if id <= 0 {
		return false, &pokemon.ValidationError{Rule: "id", Message: "Pokemon id must be a positive integer"}
	}
	name = validate.Sanitize(name)
	if err := validate.Name(name, validate.DefaultLimits()); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	favs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range favs {
		if f.PokemonID == id {
			return false, nil
		}
	}
	favs = append(favs, pokemon.Favorite{
		PokemonID:   id,
		PokemonName: name,
		AddedAt:     s.now().UTC().Truncate(time.Millisecond),
	})
	if err := s.backend.Save(ctx, favs); err != nil {
		return false, fmt.Errorf("save favorites: %w", err)
	}
	return true, nil
}

// Remove deletes the favorite with id and reports whether it existed.
func (s *Store) Remove(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	favs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	kept := favs[:0]
	for _, f := range favs {
		if f.PokemonID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(favs) {
		return false, nil
	}
	if err := s.backend.Save(ctx, kept); err != nil {
		return false, fmt.Errorf("save favorites: %w", err)
	}
	return true, nil
}

func (s *Store) Contains(ctx context.Context, id int) (bool, error) {
	favs, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range favs {
		if f.PokemonID == id {
			return true, nil
		}
	}
	return false, nil
}

func decode(payload []byte) ([]pokemon.Favorite, error) {
	var favs []pokemon.Favorite
	if err := json.Unmarshal(payload, &favs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return favs, nil
}

func encode(favs []pokemon.Favorite) ([]byte, error) {
	if favs == nil {
		favs = []pokemon.Favorite{}
	}
	return json.Marshal(favs)
}
