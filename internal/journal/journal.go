// Package journal manages the durable symptom log.
package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/echohealth/echohealth/internal/model"
	"github.com/echohealth/echohealth/internal/store"
)

// IDSource mints entry IDs.
type IDSource interface {
	NewID() string
}

// Journal layers entry semantics over the durable bucket. The whole list
// is stored under one key, newest first, and rewritten on every change.
type Journal struct {
	kv  store.KV
	ids IDSource
}

// New builds a journal over the durable bucket.
func New(kv store.KV, ids IDSource) *Journal {
	return &Journal{kv: kv, ids: ids}
}

// Add validates and prepends a new entry. The date defaults to today when
// empty.
func (j *Journal) Add(ctx context.Context, date, symptom string, severity model.Severity, notes string) (model.SymptomEntry, error) {
	if date == "" {
		date = time.Now().Format(model.DateLayout)
	}
	entry := model.SymptomEntry{
		ID:        j.ids.NewID(),
		Date:      date,
		Symptom:   strings.TrimSpace(symptom),
		Severity:  severity,
		Notes:     strings.TrimSpace(notes),
		Timestamp: time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return model.SymptomEntry{}, fmt.Errorf("journal add: %w", err)
	}

	entries, err := j.List(ctx)
	if err != nil {
		return model.SymptomEntry{}, err
	}
	entries = append([]model.SymptomEntry{entry}, entries...)
	if err := store.SetJSON(ctx, j.kv, store.KeySymptomJournal, entries); err != nil {
		return model.SymptomEntry{}, err
	}
	return entry, nil
}

// List returns all entries, newest first. A missing or corrupt store
// yields an empty journal. Entries that fail validation are skipped.
func (j *Journal) List(ctx context.Context) ([]model.SymptomEntry, error) {
	var raw []model.SymptomEntry
	if _, err := store.GetJSON(ctx, j.kv, store.KeySymptomJournal, &raw); err != nil {
		return nil, err
	}
	entries := raw[:0]
	for _, e := range raw {
		if e.Validate() == nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// OnDay returns the entries whose date equals the given calendar day.
func (j *Journal) OnDay(ctx context.Context, date string) ([]model.SymptomEntry, error) {
	all, err := j.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.SymptomEntry
	for _, e := range all {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

// Clear removes the whole journal.
func (j *Journal) Clear(ctx context.Context) error {
	return j.kv.Remove(ctx, store.KeySymptomJournal)
}

// Stats summarizes the journal.
type Stats struct {
	Total      int                    `json:"total"`
	BySymptom  map[string]int         `json:"bySymptom"`
	BySeverity map[model.Severity]int `json:"bySeverity"`
}

// Stats aggregates entry counts per symptom and severity.
func (j *Journal) Stats(ctx context.Context) (Stats, error) {
	entries, err := j.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Total:      len(entries),
		BySymptom:  make(map[string]int),
		BySeverity: make(map[model.Severity]int),
	}
	for _, e := range entries {
		st.BySymptom[e.Symptom]++
		st.BySeverity[e.Severity]++
	}
	return st, nil
}
