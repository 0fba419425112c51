// Package kvstore is the durable local key/value store shared by every
// process of one installation. It plays the role browser local storage plays
// for a single-page app: small JSON documents under well known keys.
package kvstore

import (
	"context"

	"github.com/hiretrack/hiretrack/internal/config"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/types"
)

// Well known keys
const (
	KeyNotifications     = "notifications"
	KeyInterviewDetails  = "interviewDetails"
	KeyApplicationsFlag  = "applicationStatusUpdated"
	KeySessionCredential = "token"
)

// Store is a byte oriented key/value store
type Store interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// DeleteIf deletes key only while it still holds expected and reports
	// whether it did
	DeleteIf(ctx context.Context, key string, expected []byte) (bool, error)
	// Path is the backing file, empty for non file backed stores
	Path() string
	Close() error
}

// New opens the store selected by configuration
func New(cfg *config.Configuration, log *logger.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case types.StorageDriverSQLite:
		return OpenSQLite(context.Background(), cfg.Storage.Path, cfg.Storage.BusyRetryMax, log)
	case types.StorageDriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, ierr.NewErrorf("unknown storage driver %q", cfg.Storage.Driver).
			WithHint("storage.driver must be sqlite or memory").
			Mark(ierr.ErrValidation)
	}
}
