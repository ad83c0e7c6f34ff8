package sections

import "context"

// Repository is the content store: durable sections keyed by page and
// section key. Each write is one independent transaction; concurrent writes
// to the same key resolve last-write-wins.
type Repository interface {
	Get(ctx context.Context, page, key string) (*Section, error)
	Upsert(ctx context.Context, input UpsertInput) (*Section, ChangeType, error)
	List(ctx context.Context, page string) ([]*Section, error)
	ListAll(ctx context.Context) ([]*Section, error)
	Delete(ctx context.Context, page, key string) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}
