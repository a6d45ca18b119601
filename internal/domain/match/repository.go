package match

import (
	"context"
	"time"
)

// FixtureSource lists fixtures whose kickoff falls inside the window
// [from, from+window). Implementations must mark connectivity failures as
// transient so callers can decide to retry.
type FixtureSource interface {
	Fixtures(ctx context.Context, from time.Time, window time.Duration) ([]Match, error)
}
