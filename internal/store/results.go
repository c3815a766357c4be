package store

import (
	"context"
	"fmt"

	"github.com/echohealth/echohealth/internal/model"
)

// ResultStore owns the session's merged results object. Each modality is
// written independently with a read-modify-write merge, so completing the
// face test never clobbers an earlier voice record.
type ResultStore struct {
	kv KV
}

// NewResultStore wraps a session-scoped bucket.
func NewResultStore(kv KV) *ResultStore {
	return &ResultStore{kv: kv}
}

// SaveRecord merges one completed record into the session object.
func (r *ResultStore) SaveRecord(ctx context.Context, rec model.IndicatorRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	var cur model.SessionResults
	if _, err := GetJSON(ctx, r.kv, KeyResults, &cur); err != nil {
		return err
	}
	switch rec.Modality {
	case model.ModalityVoice:
		cur.Voice = &rec
	case model.ModalityFace:
		cur.Face = &rec
	}
	return SetJSON(ctx, r.kv, KeyResults, cur)
}

// Load returns the session object. Records that fail validation are
// dropped, so a partially corrupt blob degrades to a partial result
// instead of an error.
func (r *ResultStore) Load(ctx context.Context) (model.SessionResults, error) {
	var cur model.SessionResults
	if _, err := GetJSON(ctx, r.kv, KeyResults, &cur); err != nil {
		return model.SessionResults{}, err
	}
	if cur.Voice != nil && cur.Voice.Validate() != nil {
		cur.Voice = nil
	}
	if cur.Face != nil && cur.Face.Validate() != nil {
		cur.Face = nil
	}
	return cur, nil
}

// Clear removes the session object.
func (r *ResultStore) Clear(ctx context.Context) error {
	return r.kv.Remove(ctx, KeyResults)
}
