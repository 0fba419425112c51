package service

import (
	"context"
	"sync"

	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/types"
)

// ToastSink receives the single human readable outcome of a user visible
// operation
type ToastSink interface {
	Show(ctx context.Context, toast types.Toast)
}

const defaultToastHistory = 20

// ToastLog logs every toast and keeps the most recent ones for polling
type ToastLog struct {
	logger *logger.Logger
	mu     sync.Mutex
	recent []types.Toast
	max    int
}

func NewToastLog(log *logger.Logger) *ToastLog {
	return &ToastLog{logger: log, max: defaultToastHistory}
}

func (t *ToastLog) Show(ctx context.Context, toast types.Toast) {
	switch toast.Kind {
	case types.ToastKindError:
		t.logger.Errorw("toast", "kind", toast.Kind, "message", toast.Message, "request_id", types.GetRequestID(ctx))
	case types.ToastKindWarning:
		t.logger.Warnw("toast", "kind", toast.Kind, "message", toast.Message, "request_id", types.GetRequestID(ctx))
	default:
		t.logger.Infow("toast", "kind", toast.Kind, "message", toast.Message, "request_id", types.GetRequestID(ctx))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.recent = append([]types.Toast{toast}, t.recent...)
	if len(t.recent) > t.max {
		t.recent = t.recent[:t.max]
	}
}

// Recent returns the latest toasts, newest first
func (t *ToastLog) Recent() []types.Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]types.Toast, len(t.recent))
	copy(out, t.recent)
	return out
}

// Latest returns the newest toast, if any
func (t *ToastLog) Latest() (types.Toast, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.recent) == 0 {
		return types.Toast{}, false
	}
	return t.recent[0], true
}
