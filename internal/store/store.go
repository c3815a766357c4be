// Package store provides the scoped key-value persistence façades: a
// durable device-local scope and a per-session scope.
package store

import (
	"context"
	"encoding/json"
)

// Persisted keys. The results key lives in session scope; the rest are
// durable. Voice and face records are written independently under the
// results key by read-modify-write merge; there is no atomicity across
// keys and readers tolerate either modality being absent.
const (
	KeyResults          = "echohealth-results"
	KeySymptomJournal   = "echohealth-symptom-journal"
	KeyFamilyProfiles   = "echohealth-family-profiles"
	KeyCurrentProfile   = "echohealth-current-profile"
	KeyEmergencyContact = "echohealth-emergency-contact"
)

// LocalSession is the session bucket used by the CLI, where one device
// has exactly one active session at a time.
const LocalSession = "local"

// KV is the persistence contract exposed to the pipeline. Set is
// last-write-wins with no merge.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// SessionProvider hands out session-scoped buckets.
type SessionProvider interface {
	Session(id string) KV
	ClearSession(ctx context.Context, id string) error
}

// GetJSON decodes the value under key into v. A value that fails to
// decode is treated as absent rather than surfaced: persisted state is
// advisory and reconstructable, so corruption falls back to the empty
// default instead of becoming an error.
func GetJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON stores v as JSON under key.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, b)
}
