package livestore

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process live tree. It backs the service when Redis is
// unavailable (realtime state then lives only as long as the process) and is
// the store used by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
	subs    map[int]*memorySub
	nextSub int
	closed  bool
}

type memorySub struct {
	path   string
	signal chan struct{}
	done   chan struct{}
}

// NewMemoryStore creates an empty in-memory live tree
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]json.RawMessage),
		subs:    make(map[int]*memorySub),
	}
}

func (s *MemoryStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readLocked(path)
}

func (s *MemoryStore) readLocked(path string) (json.RawMessage, error) {
	matched := make(map[string]json.RawMessage)
	for p, raw := range s.entries {
		if p == path || len(p) > len(path) && p[:len(path)+1] == path+"/" {
			matched[p] = raw
		}
	}
	return buildValue(path, matched)
}

func (s *MemoryStore) Write(ctx context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[path] = raw
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *MemoryStore) Patch(ctx context.Context, path string, fields map[string]interface{}) error {
	s.mu.Lock()
	merged := make(map[string]interface{})
	if existing, ok := s.entries[path]; ok {
		var current map[string]json.RawMessage
		if err := json.Unmarshal(existing, &current); err == nil {
			for k, v := range current {
				merged[k] = v
			}
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.entries[path] = raw
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	delete(s.entries, path)
	for p := range s.entries {
		if len(p) > len(path) && p[:len(path)+1] == path+"/" {
			delete(s.entries, p)
		}
	}
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *MemoryStore) Push(path string) string {
	return NewPushKey()
}

func (s *MemoryStore) Subscribe(ctx context.Context, path string, fn ChangeFunc) (UnsubscribeFunc, error) {
	sub := &memorySub{
		path:   path,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.mu.Unlock()

	// Deliver snapshots from a single goroutine; the buffered signal channel
	// coalesces bursts of changes into one re-read.
	go func() {
		s.deliver(sub, fn)
		for {
			select {
			case <-sub.signal:
				s.deliver(sub, fn)
			case <-sub.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(sub.done)
		})
	}
	return unsubscribe, nil
}

func (s *MemoryStore) deliver(sub *memorySub, fn ChangeFunc) {
	s.mu.RLock()
	value, err := s.readLocked(sub.path)
	s.mu.RUnlock()
	if err != nil {
		value = nil
	}
	fn(value)
}

func (s *MemoryStore) notify(changed string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if !pathAffects(sub.path, changed) {
			continue
		}
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
