package domain

import "context"

// StorePort persists and loads artifacts. Save replaces any artifact under the same key
// and readers observe either the previous or the new artifact, never a mix
type StorePort interface {
	Save(ctx context.Context, a Artifact) error
	Load(ctx context.Context, k Key) (Artifact, error)
	List(ctx context.Context, task string) ([]Ref, error)
	Ping(ctx context.Context) error
}
