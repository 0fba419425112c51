package kvstore

import (
	"bytes"
	"context"
	"sync"

	"github.com/hiretrack/hiretrack/internal/cache"
)

// MemoryStore keeps values in process memory. Nothing survives a restart and
// nothing is shared with other processes.
type MemoryStore struct {
	mu    sync.Mutex
	cache cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.NewInMemoryCache()}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(ctx, cache.GenerateKey(cache.PrefixKV, key))
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	// hand out a copy so callers can't mutate what is stored
	return append([]byte(nil), b...), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(ctx, cache.GenerateKey(cache.PrefixKV, key), append([]byte(nil), value...), 0)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(ctx, cache.GenerateKey(cache.PrefixKV, key))
	return nil
}

func (s *MemoryStore) DeleteIf(ctx context.Context, key string, expected []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := cache.GenerateKey(cache.PrefixKV, key)
	v, ok := s.cache.Get(ctx, k)
	if !ok {
		return false, nil
	}
	if b, _ := v.([]byte); !bytes.Equal(b, expected) {
		return false, nil
	}
	s.cache.Delete(ctx, k)
	return true, nil
}

func (s *MemoryStore) Path() string { return "" }

func (s *MemoryStore) Close() error {
	s.cache.Flush(context.Background())
	return nil
}
