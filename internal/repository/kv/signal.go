package kv

import (
	"context"

	"github.com/hiretrack/hiretrack/internal/domain/signal"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/kvstore"
	"github.com/hiretrack/hiretrack/internal/logger"
)

type signalRepository struct {
	store  kvstore.Store
	logger *logger.Logger
}

func NewSignalRepository(store kvstore.Store, log *logger.Logger) signal.Repository {
	return &signalRepository{store: store, logger: log}
}

func (r *signalRepository) Mark(ctx context.Context, flag *signal.Flag) error {
	raw, err := json.Marshal(flag)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	return r.store.Set(ctx, kvstore.KeyApplicationsFlag, raw)
}

func (r *signalRepository) Peek(ctx context.Context) (*signal.Flag, error) {
	raw, ok, err := r.store.Get(ctx, kvstore.KeyApplicationsFlag)
	if err != nil {
		return nil, err
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	var flag signal.Flag
	if err := json.Unmarshal(raw, &flag); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Ignoring malformed change flag").
			WithReportableDetails(map[string]any{"payload": string(raw)}).
			Mark(ierr.ErrValidation)
	}
	return &flag, nil
}

func (r *signalRepository) Clear(ctx context.Context, seen *signal.Flag) (bool, error) {
	raw, ok, err := r.store.Get(ctx, kvstore.KeyApplicationsFlag)
	if err != nil || !ok {
		return false, err
	}
	var current signal.Flag
	if err := json.Unmarshal(raw, &current); err != nil || !current.Same(seen) {
		return false, nil
	}
	// compare on the stored bytes so a write between Get and here is kept
	return r.store.DeleteIf(ctx, kvstore.KeyApplicationsFlag, raw)
}
