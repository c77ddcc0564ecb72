// Package kvutil provides utilities for working with NATS JetStream KeyValue stores.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// EnsureBucket creates or opens a KV bucket, retrying transient failures.
//
// Every participant of a run calls this during bootstrap, so concurrent
// creation of the same bucket is the normal case: ErrBucketExists is answered
// by opening the existing bucket. Other failures are retried with exponential
// backoff (10ms, 20ms, 40ms, ...).
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: KV bucket configuration
//   - attempts: Maximum number of attempts (values <= 0 mean 3)
//
// Returns:
//   - jetstream.KeyValue: The KV bucket instance
//   - error: The last error after all attempts
//
// Example:
//
//	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
//	    Bucket:  "collective",
//	    TTL:     10 * time.Minute,
//	    Storage: jetstream.MemoryStorage,
//	}, 3)
func EnsureBucket(ctx context.Context, js jetstream.JetStream, config jetstream.KeyValueConfig, attempts int) (jetstream.KeyValue, error) {
	if attempts <= 0 {
		attempts = 3
	}

	var lastErr error
	for attempt := range attempts {
		kv, err := openOrCreate(ctx, js, config)
		if err == nil {
			return kv, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		if attempt == attempts-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by attempts
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, attempts, lastErr)
}

func openOrCreate(ctx context.Context, js jetstream.JetStream, config jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	kv, err := js.CreateKeyValue(ctx, config)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketExists) {
		return nil, err
	}

	kv, err = js.KeyValue(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket exists but failed to open: %w", err)
	}

	return kv, nil
}

// WaitForKey blocks until key holds a value and returns it.
//
// If the key already exists its current value is returned immediately;
// otherwise the call waits for the first put. Deletes and purges are skipped.
// There is no internal timeout: the call returns only when the value arrives
// or ctx is done.
//
// Parameters:
//   - ctx: Context for cancellation
//   - kv: Bucket to watch
//   - key: Exact key (no wildcards)
//
// Returns:
//   - []byte: The stored value
//   - error: ctx.Err() on cancellation, or a watcher error
func WaitForKey(ctx context.Context, kv jetstream.KeyValue, key string) ([]byte, error) {
	watcher, err := kv.Watch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to watch key %s: %w", key, err)
	}
	defer func() { _ = watcher.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case entry, ok := <-watcher.Updates():
			if !ok {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}

				return nil, fmt.Errorf("watcher for key %s closed", key)
			}
			// nil marks the end of the initial values
			if entry == nil {
				continue
			}
			if entry.Operation() != jetstream.KeyValuePut {
				continue
			}

			return entry.Value(), nil
		}
	}
}
