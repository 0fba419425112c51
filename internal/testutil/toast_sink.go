package testutil

import (
	"context"
	"sync"

	"github.com/hiretrack/hiretrack/internal/types"
)

// RecordingToastSink keeps every toast shown, oldest first
type RecordingToastSink struct {
	mu     sync.Mutex
	toasts []types.Toast
}

func NewRecordingToastSink() *RecordingToastSink {
	return &RecordingToastSink{}
}

func (r *RecordingToastSink) Show(ctx context.Context, toast types.Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast)
}

func (r *RecordingToastSink) Toasts() []types.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Toast(nil), r.toasts...)
}

func (r *RecordingToastSink) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = nil
}
