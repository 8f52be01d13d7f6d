package favorites

import (
	"context"

	"github.com/valkey-io/valkey-go"

	"pokedex-mcp/internal/pokemon"
)

// ValkeyBackend stores the array as one string value in Valkey.
type ValkeyBackend struct {
	client valkey.Client
	key    string
}

// NewValkeyBackend stores under "<prefix>:mypokedex-favorites", or the bare
// key when prefix is empty.
func NewValkeyBackend(client valkey.Client, prefix string) *ValkeyBackend {
	key := Key
	if prefix != "" {
		key = prefix + ":" + Key
	}
	return &ValkeyBackend{client: client, key: key}
}

func (v *ValkeyBackend) Load(ctx context.Context) ([]pokemon.Favorite, error) {
	payload, err := v.client.Do(ctx, v.client.B().Get().Key(v.key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	return decode([]byte(payload))
}

func (v *ValkeyBackend) Save(ctx context.Context, favs []pokemon.Favorite) error {
	b, err := encode(favs)
	if err != nil {
		return err
	}
	return v.client.Do(ctx, v.client.B().Set().Key(v.key).Value(string(b)).Build()).Error()
}

var _ Backend = (*ValkeyBackend)(nil)
