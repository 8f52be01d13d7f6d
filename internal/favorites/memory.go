package favorites

import (
	"context"
	"sync"

	"pokedex-mcp/internal/pokemon"
)

// MemoryBackend keeps the encoded array in process memory, for tests/dev.
type MemoryBackend struct {
	mu      sync.Mutex
	payload []byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(_ context.Context) ([]pokemon.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return nil, nil
	}
	return decode(m.payload)
}

func (m *MemoryBackend) Save(_ context.Context, favs []pokemon.Favorite) error {
	b, err := encode(favs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.payload = b
	m.mu.Unlock()
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
