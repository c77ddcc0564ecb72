package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/collective/internal/kvutil"
	"github.com/arloliu/collective/internal/natsutil"
)

// KVStore is a Store backed by a NATS JetStream KV bucket.
//
// Participants in different processes share a run by opening the same bucket.
// Wait is a key watch, so a receiver may start waiting before or after the
// sender puts the value.
type KVStore struct {
	kv jetstream.KeyValue
}

var _ Store = (*KVStore)(nil)

// KVConfig configures the bucket backing a KVStore.
type KVConfig struct {
	// Bucket is the KV bucket name shared by all participants.
	Bucket string

	// TTL bounds how long run keys survive; 0 keeps them forever.
	TTL time.Duration

	// Attempts is the number of bucket create/open attempts.
	Attempts int
}

// NewKVStore wraps an existing bucket.
func NewKVStore(kv jetstream.KeyValue) *KVStore {
	return &KVStore{kv: kv}
}

// OpenKVStore creates or opens the configured bucket on conn.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - conn: NATS connection
//   - cfg: Bucket configuration
//
// Returns:
//   - *KVStore: Store over the bucket
//   - error: Transport error if JetStream or the bucket is unavailable
func OpenKVStore(ctx context.Context, conn *nats.Conn, cfg KVConfig) (*KVStore, error) {
	if conn == nil {
		return nil, natsutil.WrapTransport("open", errors.New("NATS connection is required"))
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, natsutil.WrapTransport("open", fmt.Errorf("failed to create jetstream context: %w", err))
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "collective run mailboxes",
		TTL:         cfg.TTL,
		History:     1,
		Storage:     jetstream.MemoryStorage,
	}, cfg.Attempts)
	if err != nil {
		return nil, natsutil.WrapTransport("open", err)
	}

	return &KVStore{kv: kv}, nil
}

// Put stores value under key.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, key, value); err != nil {
		return natsutil.WrapTransport("put "+key, err)
	}

	return nil
}

// Create stores value under key unless the key exists.
func (s *KVStore) Create(ctx context.Context, key string, value []byte) (bool, error) {
	_, err := s.kv.Create(ctx, key, value)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, jetstream.ErrKeyExists) {
		return false, nil
	}

	return false, natsutil.WrapTransport("create "+key, err)
}

// Wait blocks until key holds a value.
func (s *KVStore) Wait(ctx context.Context, key string) ([]byte, error) {
	val, err := kvutil.WaitForKey(ctx, s.kv, key)
	if err != nil {
		return nil, natsutil.WrapTransport("wait "+key, err)
	}

	return val, nil
}

// Delete removes key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return natsutil.WrapTransport("delete "+key, err)
	}

	return nil
}
