package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the KV bucket used when none is configured.
const DefaultBucket = "STRUCTSCAN_CACHE"

// KV is a cache backed by a NATS JetStream key-value bucket, for sharing
// discovery results across hosts (CI runners scanning the same tree).
// Transport failures are logged and treated as misses.
type KV struct {
	kv     jetstream.KeyValue
	logger *slog.Logger
}

// NewKV creates a KV cache, creating the bucket if it does not exist.
func NewKV(ctx context.Context, js jetstream.JetStream, bucket string, logger *slog.Logger) (*KV, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if logger == nil {
		logger = slog.Default()
	}

	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}

	return &KV{kv: kv, logger: logger}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "structscan discovery result cache",
		History:     1,
	})
}

// Get returns the cached snapshot, or a miss if absent, expired, corrupt,
// or unreachable.
func (k *KV) Get(ctx context.Context, fingerprint, identifier string) ([]byte, bool) {
	key := entryKey(fingerprint, identifier)

	entry, err := k.kv.Get(ctx, key)
	if err != nil {
		if !isNotFound(err) {
			k.logger.Warn("cache read failed, treating as miss",
				"key", key, "error", err)
		}
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal(entry.Value(), &e); err != nil {
		k.logger.Warn("cache entry corrupt, treating as miss",
			"key", key, "error", err)
		return nil, false
	}

	if e.Expired(time.Now()) {
		_ = k.kv.Delete(ctx, key)
		return nil, false
	}
	return e.Items, true
}

// Put stores a snapshot, replacing any existing entry.
func (k *KV) Put(ctx context.Context, fingerprint, identifier string, items []byte, ttl time.Duration) error {
	data, err := json.Marshal(newEntry(fingerprint, identifier, items, ttl))
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	if _, err := k.kv.Put(ctx, entryKey(fingerprint, identifier), data); err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// Forget removes a single entry. Removing a missing entry is not an error.
func (k *KV) Forget(ctx context.Context, fingerprint, identifier string) error {
	err := k.kv.Delete(ctx, entryKey(fingerprint, identifier))
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	return nil
}

// Flush removes every entry in the bucket.
func (k *KV) Flush(ctx context.Context) error {
	keys, err := k.kv.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil
		}
		return fmt.Errorf("listing cache keys: %w", err)
	}

	for _, key := range keys {
		if err := k.kv.Delete(ctx, key); err != nil && !isNotFound(err) {
			return fmt.Errorf("removing cache entry: %w", err)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
