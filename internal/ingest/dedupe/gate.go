// Package dedupe detects repeat submissions of the same bet. A one-way hash
// of the record's identifying fields is kept in a key-value store with a
// bounded TTL; whether a hit aborts the commit or only warns is the commit
// policy's call, the gate just answers "seen before?".
package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/avilchesko/betsheet/internal/pkg/models"
)

// Store is the key-value backend for submission fingerprints.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Fingerprint hashes the identifying fields of a draft. Identical drafts
// always produce the same key; any field change produces a different one.
func Fingerprint(d *models.Draft) string {
	raw := fmt.Sprintf("%s|%s|%s|%v|%v", d.Date, d.Teams, d.Selection, d.Odds, d.Stake)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Gate checks and records fingerprints under a namespace prefix.
type Gate struct {
	store     Store
	namespace string
	ttl       time.Duration
}

func NewGate(store Store, namespace string, ttl time.Duration) *Gate {
	if store == nil {
		store = NoopStore{}
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Gate{store: store, namespace: namespace, ttl: ttl}
}

func (g *Gate) key(fingerprint string) string {
	if g.namespace == "" {
		return fingerprint
	}
	return g.namespace + ":" + fingerprint
}

// Seen reports whether the draft's fingerprint is already recorded.
func (g *Gate) Seen(ctx context.Context, d *models.Draft) (bool, error) {
	return g.store.Exists(ctx, g.key(Fingerprint(d)))
}

// Remember records the draft's fingerprint with the configured TTL.
func (g *Gate) Remember(ctx context.Context, d *models.Draft) error {
	fp := Fingerprint(d)
	return g.store.SetWithExpiry(ctx, g.key(fp), fp, g.ttl)
}

// NoopStore is the degraded mode when no dedupe store is configured: nothing
// is ever found and writes vanish, so every submission passes the gate.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NoopStore) Set(context.Context, string, string) error         { return nil }
func (NoopStore) SetWithExpiry(context.Context, string, string, time.Duration) error {
	return nil
}
func (NoopStore) Exists(context.Context, string) (bool, error) { return false, nil }
