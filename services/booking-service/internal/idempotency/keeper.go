// Package idempotency de-duplicates booking submissions carrying the same
// Idempotency-Key header.
package idempotency

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// inFlight marks a reserved key whose submission has not completed yet.
const inFlight = "-"

var (
	ErrInFlight = errors.New("submission with this idempotency key is in progress")
	// ErrKeyReused means the key is bound to a submission with different content.
	ErrKeyReused = errors.New("idempotency key was already used for a different submission")
)

// Keeper binds an idempotency key to the fingerprint of the submission that
// first used it and, once stored, to the resulting appointment id.
type Keeper interface {
	// Reserve claims key for fingerprint. When the key was already completed
	// with the same fingerprint it returns the stored appointment id and
	// reserved=false. A key claimed but not yet completed returns ErrInFlight.
	// A key bound to another fingerprint returns ErrKeyReused.
	Reserve(ctx context.Context, key, fingerprint string) (existingID string, reserved bool, err error)
	Complete(ctx context.Context, key, fingerprint, appointmentID string) error
	// Release drops a reservation whose submission failed.
	Release(ctx context.Context, key string) error
}

// record is the stored form of a key: "<fingerprint> <appointment id>".
func record(fingerprint, appointmentID string) string {
	return fingerprint + " " + appointmentID
}

// resolve interprets a stored record for a Reserve call with fingerprint.
func resolve(stored, fingerprint string) (string, error) {
	storedFP, id, _ := strings.Cut(stored, " ")
	switch {
	case storedFP != fingerprint:
		return "", ErrKeyReused
	case id == inFlight:
		return "", ErrInFlight
	}
	return id, nil
}

type RedisKeeper struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisKeeper(rdb redis.Cmdable, ttl time.Duration, prefix string) *RedisKeeper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefix == "" {
		prefix = "salonbook:idem:"
	}
	return &RedisKeeper{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (k *RedisKeeper) Reserve(ctx context.Context, key, fingerprint string) (string, bool, error) {
	ok, err := k.rdb.SetNX(ctx, k.prefix+key, record(fingerprint, inFlight), k.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}
	v, err := k.rdb.Get(ctx, k.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return k.Reserve(ctx, key, fingerprint)
	}
	if err != nil {
		return "", false, err
	}
	id, err := resolve(v, fingerprint)
	return id, false, err
}

func (k *RedisKeeper) Complete(ctx context.Context, key, fingerprint, appointmentID string) error {
	return k.rdb.Set(ctx, k.prefix+key, record(fingerprint, appointmentID), k.ttl).Err()
}

func (k *RedisKeeper) Release(ctx context.Context, key string) error {
	return k.rdb.Del(ctx, k.prefix+key).Err()
}

type entry struct {
	value   string
	expires time.Time
}

// MemoryKeeper is the single-process Keeper used when Redis is not configured.
type MemoryKeeper struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryKeeper(ttl time.Duration) *MemoryKeeper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryKeeper{ttl: ttl, entries: make(map[string]entry), now: time.Now}
}

func (k *MemoryKeeper) Reserve(_ context.Context, key, fingerprint string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	if e, ok := k.entries[key]; ok && now.Before(e.expires) {
		id, err := resolve(e.value, fingerprint)
		return id, false, err
	}
	k.entries[key] = entry{value: record(fingerprint, inFlight), expires: now.Add(k.ttl)}
	k.evictExpired(now)
	return "", true, nil
}

func (k *MemoryKeeper) Complete(_ context.Context, key, fingerprint, appointmentID string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.entries[key] = entry{value: record(fingerprint, appointmentID), expires: k.now().Add(k.ttl)}
	return nil
}

func (k *MemoryKeeper) Release(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.entries, key)
	return nil
}

func (k *MemoryKeeper) evictExpired(now time.Time) {
	for key, e := range k.entries {
		if !now.Before(e.expires) {
			delete(k.entries, key)
		}
	}
}
