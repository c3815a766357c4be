// Package analyzer converts a raw capture sample into an indicator record.
//
// The pipeline treats an Analyzer as an opaque function so a real inference
// backend can be substituted without touching the assessment flow. Heuristic
// is the stand-in used today: it draws indicator values from each modality's
// declared ranges instead of extracting features from the sample.
package analyzer

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/echohealth/echohealth/internal/capture"
	"github.com/echohealth/echohealth/internal/model"
)

// ErrAnalysisFailed is returned when analysis cannot produce a record.
// No partial record is ever emitted alongside it.
var ErrAnalysisFailed = errors.New("analysis failed")

// Analyzer produces an IndicatorRecord from a raw sample.
type Analyzer interface {
	Analyze(ctx context.Context, s capture.Sample) (model.IndicatorRecord, error)
}

// Func adapts a plain function to the Analyzer interface.
type Func func(ctx context.Context, s capture.Sample) (model.IndicatorRecord, error)

// Analyze implements Analyzer.
func (f Func) Analyze(ctx context.Context, s capture.Sample) (model.IndicatorRecord, error) {
	return f(ctx, s)
}

// Heuristic is the placeholder analyzer.
type Heuristic struct {
	mu    sync.Mutex
	rng   *rand.Rand
	delay time.Duration
}

// NewHeuristic returns an analyzer with the given simulated inference
// delay. A zero delay completes immediately.
func NewHeuristic(delay time.Duration) *Heuristic {
	return &Heuristic{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		delay: delay,
	}
}

// Analyze synthesizes an indicator record for the sample's modality.
func (h *Heuristic) Analyze(ctx context.Context, s capture.Sample) (model.IndicatorRecord, error) {
	if !s.Modality.Valid() {
		return model.IndicatorRecord{}, ErrAnalysisFailed
	}
	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-ctx.Done():
			return model.IndicatorRecord{}, ctx.Err()
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rec := model.IndicatorRecord{
		Modality:         s.Modality,
		RiskContribution: h.intn(model.RiskContributionMin, model.RiskContributionMax),
		CapturedAt:       time.Now().UTC(),
	}
	switch s.Modality {
	case model.ModalityVoice:
		rec.StressLevel = h.pick(0.5, "Low", "Medium")
		rec.Rhythm = h.pick(0.7, "Normal", "Irregular")
		rec.BreathingPattern = h.pick(0.6, "Normal", "Restricted")
		rec.Confidence = h.intn(model.VoiceConfidenceMin, model.VoiceConfidenceMax)
	case model.ModalityFace:
		rec.BlinkRate = h.pick(0.7, "Normal", "Elevated")
		rec.EyeMovement = h.pick(0.6, "Regular", "Irregular")
		rec.FacialTension = h.pick(0.5, "Low", "Moderate")
		rec.Symmetry = h.pick(0.8, "Normal", "Slight asymmetry")
		rec.Confidence = h.intn(model.FaceConfidenceMin, model.FaceConfidenceMax)
	}
	return rec, nil
}

// intn draws an integer in [lo, hi].
func (h *Heuristic) intn(lo, hi int) int {
	return lo + h.rng.Intn(hi-lo+1)
}

// pick returns a when the draw lands below p, otherwise b.
func (h *Heuristic) pick(p float64, a, b string) string {
	if h.rng.Float64() < p {
		return a
	}
	return b
}
