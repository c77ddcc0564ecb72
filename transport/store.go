package transport

import (
	"context"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// Store is a keyed mailbox backend.
//
// Implementations must be safe for concurrent use by all participants that
// share them.
type Store interface {
	// Put stores value under key, waking every waiter on key.
	Put(ctx context.Context, key string, value []byte) error

	// Create stores value under key only if the key holds no value yet.
	// It reports false (and no error) when the key is already taken.
	Create(ctx context.Context, key string, value []byte) (bool, error)

	// Wait blocks until key holds a value and returns a copy of it.
	Wait(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-process Store.
//
// Values are copied on Put and on Wait, so participants sharing a
// MemoryStore never share memory through it.
//
// Mailboxes, including the empty ones Wait creates, stay until they are
// deleted or the run they belong to is purged with Purge.
type MemoryStore struct {
	boxes *xsync.Map[string, *mailbox]
}

var _ Store = (*MemoryStore)(nil)

type mailbox struct {
	mu     sync.Mutex
	filled bool
	value  []byte
	ready  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{})}
}

// fill stores value; with onlyIfEmpty set it refuses to overwrite.
func (m *mailbox) fill(value []byte, onlyIfEmpty bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.filled && onlyIfEmpty {
		return false
	}

	m.value = append([]byte(nil), value...)
	if !m.filled {
		m.filled = true
		close(m.ready)
	}

	return true
}

func (m *mailbox) load() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.value...)
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{boxes: xsync.NewMap[string, *mailbox]()}
}

func (s *MemoryStore) box(key string) *mailbox {
	if b, ok := s.boxes.Load(key); ok {
		return b
	}
	b, _ := s.boxes.LoadOrStore(key, newMailbox())

	return b
}

// Put stores value under key.
func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.box(key).fill(value, false)

	return nil
}

// Create stores value under key if it is empty.
func (s *MemoryStore) Create(ctx context.Context, key string, value []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	return s.box(key).fill(value, true), nil
}

// Wait blocks until key is filled or ctx is done.
func (s *MemoryStore) Wait(ctx context.Context, key string) ([]byte, error) {
	b := s.box(key)

	select {
	case <-b.ready:
		return b.load(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.boxes.Delete(key)

	return nil
}

// Len returns the number of keys currently held.
func (s *MemoryStore) Len() int {
	return s.boxes.Size()
}

// Purge removes every key starting with prefix and returns how many were removed.
//
// Waiters blocked on a purged key stay blocked until their context ends.
func (s *MemoryStore) Purge(prefix string) int {
	removed := 0
	s.boxes.Range(func(key string, _ *mailbox) bool {
		if strings.HasPrefix(key, prefix) {
			s.boxes.Delete(key)
			removed++
		}

		return true
	})

	return removed
}
