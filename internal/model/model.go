// Package model defines the core screening data types.
package model

import (
	"fmt"
	"time"
)

// Modality is one of the two input channels.
type Modality string

const (
	ModalityVoice Modality = "voice"
	ModalityFace  Modality = "face"
)

// Valid reports whether m is a known modality.
func (m Modality) Valid() bool {
	return m == ModalityVoice || m == ModalityFace
}

// RiskLevel is the discrete category derived from an aggregate score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Indicator value ranges, per modality.
const (
	RiskContributionMin = 10
	RiskContributionMax = 50

	VoiceConfidenceMin = 70
	VoiceConfidenceMax = 100
	FaceConfidenceMin  = 75
	FaceConfidenceMax  = 95
)

// IndicatorRecord is the structured output of analyzing one modality's
// captured sample. Records are immutable once produced; anything loaded
// from storage is validated before use.
type IndicatorRecord struct {
	Modality Modality `json:"modality"`

	// Voice indicators.
	StressLevel      string `json:"stressLevel,omitempty"`
	Rhythm           string `json:"rhythm,omitempty"`
	BreathingPattern string `json:"breathingPattern,omitempty"`

	// Face indicators.
	BlinkRate     string `json:"blinkRate,omitempty"`
	EyeMovement   string `json:"eyeMovement,omitempty"`
	FacialTension string `json:"facialTension,omitempty"`
	Symmetry      string `json:"symmetry,omitempty"`

	RiskContribution int       `json:"riskContribution"`
	Confidence       int       `json:"confidence"`
	CapturedAt       time.Time `json:"capturedAt"`
}

// Validate checks that the record's modality and numeric indicators are
// within their declared ranges.
func (r IndicatorRecord) Validate() error {
	if !r.Modality.Valid() {
		return fmt.Errorf("unknown modality %q", r.Modality)
	}
	if r.RiskContribution < RiskContributionMin || r.RiskContribution > RiskContributionMax {
		return fmt.Errorf("risk contribution %d outside [%d,%d]",
			r.RiskContribution, RiskContributionMin, RiskContributionMax)
	}
	lo, hi := VoiceConfidenceMin, VoiceConfidenceMax
	if r.Modality == ModalityFace {
		lo, hi = FaceConfidenceMin, FaceConfidenceMax
	}
	if r.Confidence < lo || r.Confidence > hi {
		return fmt.Errorf("%s confidence %d outside [%d,%d]", r.Modality, r.Confidence, lo, hi)
	}
	return nil
}

// SessionResults is the merged per-session object holding whichever
// modality records have completed so far. Either field may be absent;
// readers treat a partial object as a normal, displayable state.
type SessionResults struct {
	Voice *IndicatorRecord `json:"voice,omitempty"`
	Face  *IndicatorRecord `json:"face,omitempty"`
}

// Empty reports whether no modality has completed yet.
func (s SessionResults) Empty() bool {
	return s.Voice == nil && s.Face == nil
}

// AssessmentResult is derived from the session's indicator records. It is
// recomputed whenever a record changes, never mutated in place.
type AssessmentResult struct {
	Voice       *IndicatorRecord `json:"voice,omitempty"`
	Face        *IndicatorRecord `json:"face,omitempty"`
	Score       int              `json:"score"`
	RiskLevel   RiskLevel        `json:"riskLevel"`
	CompletedAt time.Time        `json:"completedAt"`
}

// Severity of a symptom journal entry.
type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

// Weight is the numeric contribution of a severity to a day's intensity.
func (s Severity) Weight() int {
	switch s {
	case SeverityMild:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	}
	return 0
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s == SeverityMild || s == SeverityModerate || s == SeveritySevere
}

// ValidSymptoms are the allowed journal symptom values.
var ValidSymptoms = map[string]bool{
	"Headache":     true,
	"Fatigue":      true,
	"Stress":       true,
	"Anxiety":      true,
	"Dizziness":    true,
	"Sleep Issues": true,
	"Brain Fog":    true,
	"Mood Changes": true,
	"Other":        true,
}

// DateLayout is the calendar-day format used by journal entries.
const DateLayout = "2006-01-02"

// SymptomEntry is one user-created journal entry. Entries are only ever
// created through the journal form and removed by full-store overwrite.
type SymptomEntry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // calendar day, DateLayout
	Symptom   string    `json:"symptom"`
	Severity  Severity  `json:"severity"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks the entry's symptom, severity and date format.
func (e SymptomEntry) Validate() error {
	if !ValidSymptoms[e.Symptom] {
		return fmt.Errorf("unknown symptom %q", e.Symptom)
	}
	if !e.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", e.Severity)
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", e.Date, err)
	}
	return nil
}

// MaxProfiles is the hard cap on family profiles per device.
const MaxProfiles = 3

// ResultSnapshot is a denormalized copy of an aggregate result recorded
// onto a profile's history. Later assessments never retroactively alter it.
type ResultSnapshot struct {
	Date      time.Time `json:"date"`
	Score     int       `json:"score"`
	RiskLevel RiskLevel `json:"riskLevel"`
}

// FamilyProfile is one person sharing the device. At most MaxProfiles
// exist at a time; zero or one is marked current.
type FamilyProfile struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Relation  string           `json:"relation"`
	DateAdded time.Time        `json:"dateAdded"`
	Results   []ResultSnapshot `json:"results"` // newest first
}

// EmergencyContact is the device's single user-editable contact.
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
