// Package risk combines modality indicator records into an aggregate
// score and category.
//
// Two threshold sets operate on the same 0-100 scale: LevelFor is the
// results-view mapping (<20 Low, <40 Moderate, else High) while AdviceFor
// keeps the assistant's own <30/<60 cut points. They serve different
// consumers and are deliberately not unified.
package risk

import (
	"errors"
	"math"
	"time"

	"github.com/echohealth/echohealth/internal/model"
)

// ErrNoRecords is returned when aggregation is invoked with neither
// modality present. Callers are expected to redirect to the start screen
// instead of ever making that call.
var ErrNoRecords = errors.New("no indicator records to aggregate")

// Aggregate derives the combined assessment result from whichever records
// are present. With one record the score is that record's risk
// contribution; with both it is the rounded (half-up) average. Aggregate
// is pure: same inputs, same output, no side effects.
func Aggregate(voice, face *model.IndicatorRecord) (model.AssessmentResult, error) {
	var score int
	switch {
	case voice == nil && face == nil:
		return model.AssessmentResult{}, ErrNoRecords
	case voice != nil && face != nil:
		score = int(math.Round(float64(voice.RiskContribution+face.RiskContribution) / 2))
	case voice != nil:
		score = voice.RiskContribution
	default:
		score = face.RiskContribution
	}
	return model.AssessmentResult{
		Voice:       voice,
		Face:        face,
		Score:       score,
		RiskLevel:   LevelFor(score),
		CompletedAt: time.Now().UTC(),
	}, nil
}

// LevelFor maps a score to its results-view risk category.
func LevelFor(score int) model.RiskLevel {
	switch {
	case score < 20:
		return model.RiskLow
	case score < 40:
		return model.RiskModerate
	default:
		return model.RiskHigh
	}
}

// LevelAdvice is the short guidance shown next to a risk category on the
// results view.
func LevelAdvice(level model.RiskLevel) string {
	switch level {
	case model.RiskLow:
		return "Your results suggest low risk indicators. Continue healthy habits and regular check-ups."
	case model.RiskModerate:
		return "Some potential indicators detected. Consider following up with a healthcare professional."
	case model.RiskHigh:
		return "Several risk indicators detected. We recommend consulting with a healthcare professional soon."
	}
	return "Keep up with regular health check-ups."
}

// AdviceFor is the assistant's score-keyed response text. Note the cut
// points differ from LevelFor's category mapping.
func AdviceFor(score int) string {
	switch {
	case score < 30:
		return "Your results indicate a low risk level. This is a positive outcome! It means we didn't detect significant health risk patterns in your voice and facial analysis. Continue with your current healthy habits and consider regular health check-ups as part of your routine."
	case score < 60:
		return "Your results show some moderate risk indicators. This doesn't necessarily mean something is wrong, but it might be worth discussing these results with a healthcare professional during your next visit. Stay hydrated, ensure you're getting enough sleep, and manage stress through relaxation techniques."
	default:
		return "Your results indicate some higher risk patterns. We recommend consulting with a healthcare professional to discuss these findings. Remember that this is a screening tool, not a diagnostic device. Regular check-ups are important for maintaining your health."
	}
}
