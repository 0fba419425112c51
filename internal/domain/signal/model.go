package signal

import (
	"context"
	"time"

	"github.com/hiretrack/hiretrack/internal/types"
)

// Flag tells other processes sharing the local store that applications changed
type Flag struct {
	Source        string                  `json:"source"`
	ApplicationID int64                   `json:"application_id,omitempty"`
	Status        types.ApplicationStatus `json:"status,omitempty"`
	Timestamp     time.Time               `json:"timestamp"`
}

// Repository persists the single cross-process change flag
type Repository interface {
	Mark(ctx context.Context, flag *Flag) error
	// Peek returns nil without error when no flag is set. A malformed payload
	// is reported as an error so callers can log and ignore it.
	Peek(ctx context.Context) (*Flag, error)
	// Clear removes the flag only if it is still the one seen, so a flag
	// written meanwhile by another process survives. It reports whether the
	// flag was removed.
	Clear(ctx context.Context, seen *Flag) (bool, error)
}

// Same reports whether f and other describe the same change
func (f *Flag) Same(other *Flag) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Source == other.Source &&
		f.ApplicationID == other.ApplicationID &&
		f.Status == other.Status &&
		f.Timestamp.Equal(other.Timestamp)
}
