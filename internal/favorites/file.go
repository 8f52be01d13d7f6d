package favorites

import (
	"context"
	"errors"
	"fmt"

	"pokedex-mcp/internal/pokemon"
	"pokedex-mcp/internal/store"
)

// FileBackend stores the array as <root>/mypokedex-favorites.json.
type FileBackend struct {
	st  *store.JSONStore
	rel string
}

func NewFileBackend(root string) *FileBackend {
	return &FileBackend{st: store.NewJSONStore(root), rel: Key + ".json"}
}

func (f *FileBackend) Path() string {
	return f.st.Path(f.rel)
}

// Load returns nil when the file does not exist yet.
func (f *FileBackend) Load(_ context.Context) ([]pokemon.Favorite, error) {
	var favs []pokemon.Favorite
	_, err := f.st.ReadJSON(f.rel, &favs)
	if errors.Is(err, store.ErrDecode) {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err != nil {
		return nil, err
	}
	return favs, nil
}

func (f *FileBackend) Save(_ context.Context, favs []pokemon.Favorite) error {
	if favs == nil {
		favs = []pokemon.Favorite{}
	}
	return f.st.WriteJSON(f.rel, favs)
}

var _ Backend = (*FileBackend)(nil)
