package record

import (
	"context"
	"fmt"
)

// Persistence loads and saves the item collection.
type Persistence interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// Open builds a store populated from persistence.
func Open(ctx context.Context, p Persistence, opts ...Option) (*Store, error) {
	items, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	store := NewStore(opts...)
	if len(items) > 0 {
		store.Replace(items)
	}
	return store, nil
}

// SaveTo writes the current collection to persistence.
func (s *Store) SaveTo(ctx context.Context, p Persistence) error {
	if err := p.Save(ctx, s.Items()); err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	return nil
}
