package squad

import "context"

// Repository loads roster snapshots from wherever the manager keeps them
// (CSV exports in the default deployment).
type Repository interface {
	Load(ctx context.Context) (Squad, error)
}
