package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/echohealth/echohealth/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	kv := s.Durable()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := kv.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != "v1" {
		t.Errorf("expected v1, got %q", got)
	}

	// Last write wins.
	if err := kv.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = kv.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("expected v2, got %q", got)
	}

	if err := kv.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Error("expected key gone after remove")
	}
}

func TestSessionScopeIsolation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	durable := s.Durable()
	sessA := s.Session("a")
	sessB := s.Session("b")

	durable.Set(ctx, "k", []byte("durable"))
	sessA.Set(ctx, "k", []byte("a"))
	sessB.Set(ctx, "k", []byte("b"))

	got, _, _ := sessA.Get(ctx, "k")
	if string(got) != "a" {
		t.Errorf("session a sees %q", got)
	}
	got, _, _ = durable.Get(ctx, "k")
	if string(got) != "durable" {
		t.Errorf("durable sees %q", got)
	}
}

func TestClearSessionLeavesDurableKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Durable().Set(ctx, KeySymptomJournal, []byte(`[]`))
	sess := s.Session(LocalSession)
	sess.Set(ctx, KeyResults, []byte(`{}`))

	if err := s.ClearSession(ctx, LocalSession); err != nil {
		t.Fatalf("clear session: %v", err)
	}

	if _, ok, _ := sess.Get(ctx, KeyResults); ok {
		t.Error("session key survived clear")
	}
	if _, ok, _ := s.Durable().Get(ctx, KeySymptomJournal); !ok {
		t.Error("durable key lost on session clear")
	}
}

func TestGetJSONCorruptDefaultsToAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	kv := s.Durable()

	kv.Set(ctx, "blob", []byte(`{not json`))

	var v map[string]string
	ok, err := GetJSON(ctx, kv, "blob", &v)
	if err != nil {
		t.Fatalf("corrupt value must not error: %v", err)
	}
	if ok {
		t.Error("corrupt value must read as absent")
	}
}

func TestNewIDIsUnique(t *testing.T) {
	s := newTestStore(t)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := s.NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestResultStoreMergesModalities(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	rs := NewResultStore(s.Session(LocalSession))

	merged, err := rs.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if !merged.Empty() {
		t.Fatal("expected empty session")
	}

	voice := model.IndicatorRecord{
		Modality:         model.ModalityVoice,
		StressLevel:      "Low",
		Rhythm:           "Normal",
		BreathingPattern: "Normal",
		RiskContribution: 15,
		Confidence:       85,
		CapturedAt:       time.Now().UTC(),
	}
	if err := rs.SaveRecord(ctx, voice); err != nil {
		t.Fatalf("save voice: %v", err)
	}

	// A reader between the two writes sees a normal partial state.
	merged, _ = rs.Load(ctx)
	if merged.Voice == nil || merged.Face != nil {
		t.Fatal("expected voice-only partial result")
	}

	face := model.IndicatorRecord{
		Modality:         model.ModalityFace,
		BlinkRate:        "Normal",
		EyeMovement:      "Regular",
		FacialTension:    "Low",
		Symmetry:         "Normal",
		RiskContribution: 25,
		Confidence:       80,
		CapturedAt:       time.Now().UTC(),
	}
	if err := rs.SaveRecord(ctx, face); err != nil {
		t.Fatalf("save face: %v", err)
	}

	merged, _ = rs.Load(ctx)
	if merged.Voice == nil || merged.Face == nil {
		t.Fatal("expected both modalities after merge")
	}
	if merged.Voice.RiskContribution != 15 {
		t.Errorf("voice record clobbered: %d", merged.Voice.RiskContribution)
	}
}

func TestResultStoreRejectsInvalidRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	rs := NewResultStore(s.Session(LocalSession))

	bad := model.IndicatorRecord{
		Modality:         model.ModalityVoice,
		RiskContribution: 99, // out of range
		Confidence:       85,
	}
	if err := rs.SaveRecord(ctx, bad); err == nil {
		t.Fatal("expected out-of-range record to be rejected")
	}
	merged, _ := rs.Load(ctx)
	if !merged.Empty() {
		t.Error("rejected record must not be written")
	}
}

func TestResultStoreDropsInvalidOnLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sess := s.Session(LocalSession)

	// A blob with one valid and one out-of-range record degrades to a
	// partial result.
	sess.Set(ctx, KeyResults, []byte(`{
		"voice": {"modality":"voice","riskContribution":15,"confidence":85},
		"face":  {"modality":"face","riskContribution":500,"confidence":80}
	}`))

	merged, err := NewResultStore(sess).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if merged.Voice == nil {
		t.Error("valid voice record dropped")
	}
	if merged.Face != nil {
		t.Error("invalid face record must be dropped")
	}
}
