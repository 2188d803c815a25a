package domain

import "context"

// SealRepository is the abstraction for any kind of database intended to
// persist the seal registry.
type SealRepository interface {
	// AddSeal adds the provided seal to the repository, failing if an entry
	// with the same id already exists.
	AddSeal(ctx context.Context, seal *Seal) error
	// GetSeal returns the seal with the given id.
	GetSeal(ctx context.Context, id string) (*Seal, error)
	// GetAllSeals returns every seal in the registry.
	GetAllSeals(ctx context.Context) ([]Seal, error)
	// GetSealsByStatus returns the seals currently in the given status.
	GetSealsByStatus(ctx context.Context, status int) ([]Seal, error)
	// UpdateSeal atomically reads, updates through updateFn and writes back
	// the seal with the given id.
	UpdateSeal(
		ctx context.Context, id string,
		updateFn func(seal *Seal) (*Seal, error),
	) error
}
