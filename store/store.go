package store

import (
	"context"
	"errors"

	"laughschool/models"
)

// ErrNotFound is returned when an id does not resolve to an item.
var ErrNotFound = errors.New("item not found")

// Store is the durable item collection. List returns items in storage order;
// callers sort. Put upserts by id. Delete of an absent id is a no-op.
type Store interface {
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id string) (models.Item, error)
	Put(ctx context.Context, item models.Item) error
	Delete(ctx context.Context, id string) error
}
