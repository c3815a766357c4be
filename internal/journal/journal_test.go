package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/echohealth/echohealth/internal/model"
	"github.com/echohealth/echohealth/internal/store"
)

func newTestJournal(t *testing.T) (*Journal, store.KV) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s.Durable(), s), s.Durable()
}

func TestAddAndList(t *testing.T) {
	ctx := context.Background()
	j, _ := newTestJournal(t)

	first, err := j.Add(ctx, "2026-09-01", "Headache", model.SeverityMild, "after lunch")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID == "" {
		t.Error("expected non-empty id")
	}
	second, err := j.Add(ctx, "2026-09-02", "Fatigue", model.SeveritySevere, "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	entries, err := j.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != second.ID {
		t.Error("expected newest entry first")
	}
}

func TestAddDefaultsToToday(t *testing.T) {
	ctx := context.Background()
	j, _ := newTestJournal(t)

	e, err := j.Add(ctx, "", "Stress", model.SeverityModerate, "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.Date != time.Now().Format(model.DateLayout) {
		t.Errorf("expected today's date, got %s", e.Date)
	}
}

func TestAddRejectsUnknownSymptom(t *testing.T) {
	ctx := context.Background()
	j, _ := newTestJournal(t)

	if _, err := j.Add(ctx, "", "Hiccups", model.SeverityMild, ""); err == nil {
		t.Fatal("expected unknown symptom to be rejected")
	}
	if _, err := j.Add(ctx, "", "Headache", "Terrible", ""); err == nil {
		t.Fatal("expected unknown severity to be rejected")
	}
	entries, _ := j.List(ctx)
	if len(entries) != 0 {
		t.Error("rejected entries must not be stored")
	}
}

func TestOnDay(t *testing.T) {
	ctx := context.Background()
	j, _ := newTestJournal(t)

	j.Add(ctx, "2026-09-01", "Headache", model.SeverityMild, "")
	j.Add(ctx, "2026-09-01", "Dizziness", model.SeverityModerate, "")
	j.Add(ctx, "2026-09-02", "Fatigue", model.SeverityMild, "")

	day, err := j.OnDay(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("on day: %v", err)
	}
	if len(day) != 2 {
		t.Errorf("expected 2 entries on 2026-09-01, got %d", len(day))
	}
}

func TestCorruptJournalReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	j, kv := newTestJournal(t)

	kv.Set(ctx, store.KeySymptomJournal, []byte(`{broken`))

	entries, err := j.List(ctx)
	if err != nil {
		t.Fatalf("corrupt store must not error: %v", err)
	}
	if len(entries) != 0 {
		t.Error("corrupt store must read as empty")
	}

	// The journal recovers on the next write.
	if _, err := j.Add(ctx, "2026-09-01", "Headache", model.SeverityMild, ""); err != nil {
		t.Fatalf("add after corruption: %v", err)
	}
	entries, _ = j.List(ctx)
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after recovery, got %d", len(entries))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	j, _ := newTestJournal(t)

	j.Add(ctx, "2026-09-01", "Headache", model.SeverityMild, "")
	j.Add(ctx, "2026-09-02", "Headache", model.SeveritySevere, "")
	j.Add(ctx, "2026-09-03", "Anxiety", model.SeverityMild, "")

	st, err := j.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 3 {
		t.Errorf("total = %d", st.Total)
	}
	if st.BySymptom["Headache"] != 2 {
		t.Errorf("headache count = %d", st.BySymptom["Headache"])
	}
	if st.BySeverity[model.SeverityMild] != 2 {
		t.Errorf("mild count = %d", st.BySeverity[model.SeverityMild])
	}
}
