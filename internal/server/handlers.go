package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/echohealth/echohealth/internal/calendar"
	"github.com/echohealth/echohealth/internal/capture"
	"github.com/echohealth/echohealth/internal/model"
	"github.com/echohealth/echohealth/internal/profile"
	"github.com/echohealth/echohealth/internal/risk"
)

// maxSampleBytes caps uploaded raw samples.
const maxSampleBytes = 8 << 20

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	modality := model.Modality(r.PathValue("modality"))
	if !modality.Valid() {
		writeJSON(w, http.StatusBadRequest, Fail("unknown modality"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxSampleBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("read sample"))
		return
	}

	rec, err := s.analyzer.Analyze(r.Context(), capture.Sample{
		Modality: modality,
		Data:     data,
	})
	if err != nil {
		// Analysis failures are retryable; nothing is written.
		s.logger.Warn("analysis failed",
			zap.String("modality", string(modality)), zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, Fail("analysis failed, please try again"))
		return
	}

	if err := s.results(r).SaveRecord(r.Context(), rec); err != nil {
		s.logger.Error("save record", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("store record"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(rec))
}

// resultsView is the aggregate payload served to the results page.
type resultsView struct {
	Voice     *model.IndicatorRecord `json:"voice,omitempty"`
	Face      *model.IndicatorRecord `json:"face,omitempty"`
	Score     int                    `json:"score"`
	RiskLevel model.RiskLevel        `json:"riskLevel"`
	Advice    string                 `json:"advice"`
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	merged, err := s.results(r).Load(r.Context())
	if err != nil {
		s.logger.Error("load results", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("load results"))
		return
	}
	if merged.Empty() {
		// Nothing completed yet: the front end redirects to the start
		// screen rather than rendering an aggregate.
		writeJSON(w, http.StatusNotFound, Fail("no completed assessments"))
		return
	}

	res, err := risk.Aggregate(merged.Voice, merged.Face)
	if err != nil {
		writeJSON(w, http.StatusNotFound, Fail("no completed assessments"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resultsView{
		Voice:     res.Voice,
		Face:      res.Face,
		Score:     res.Score,
		RiskLevel: res.RiskLevel,
		Advice:    risk.LevelAdvice(res.RiskLevel),
	}))
}

func (s *Server) handleResetResults(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.ClearSession(r.Context(), s.sessionID(r)); err != nil {
		s.logger.Error("clear session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("reset session"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (s *Server) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	merged, err := s.results(r).Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("load results"))
		return
	}
	res, err := risk.Aggregate(merged.Voice, merged.Face)
	if err != nil {
		writeJSON(w, http.StatusNotFound, Fail("no completed assessments"))
		return
	}
	if err := s.profiles.AppendResult(r.Context(), res); err != nil {
		s.logger.Error("append result", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("record result"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

// adviceView is the assistant panel's payload. Its guidance text is keyed
// on the raw score, not the results-view category.
type adviceView struct {
	Score   int    `json:"score"`
	Message string `json:"message"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	merged, err := s.results(r).Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("load results"))
		return
	}
	res, err := risk.Aggregate(merged.Voice, merged.Face)
	if err != nil {
		writeJSON(w, http.StatusNotFound, Fail("no completed assessments"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(adviceView{
		Score:   res.Score,
		Message: risk.AdviceFor(res.Score),
	}))
}

type addJournalRequest struct {
	Date     string         `json:"date"`
	Symptom  string         `json:"symptom"`
	Severity model.Severity `json:"severity"`
	Notes    string         `json:"notes"`
}

func (s *Server) handleAddJournal(w http.ResponseWriter, r *http.Request) {
	var req addJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	entry, err := s.journal.Add(r.Context(), req.Date, req.Symptom, req.Severity, req.Notes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, Ok(entry))
}

func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := s.journal.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("load journal"))
		return
	}
	if date := r.URL.Query().Get("date"); date != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Date == date {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []model.SymptomEntry{}
	}
	writeJSON(w, http.StatusOK, Ok(entries))
}

func (s *Server) handleJournalStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.journal.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("journal stats"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(st))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year := parseInt(r.PathValue("year"), 0)
	month := parseInt(r.PathValue("month"), 0)
	if year < 1970 || month < 1 || month > 12 {
		writeJSON(w, http.StatusBadRequest, Fail("invalid year or month"))
		return
	}
	entries, err := s.journal.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("load journal"))
		return
	}
	buckets := calendar.MonthBuckets(entries, year, time.Month(month))
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"year":    year,
		"month":   month,
		"days":    calendar.DaysIn(year, time.Month(month)),
		"buckets": buckets,
	}))
}

type addProfileRequest struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
}

func (s *Server) handleAddProfile(w http.ResponseWriter, r *http.Request) {
	var req addProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	p, err := s.profiles.Add(r.Context(), req.Name, req.Relation)
	if err != nil {
		if errors.Is(err, profile.ErrProfileLimit) {
			writeJSON(w, http.StatusConflict, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, Ok(p))
}

// profilesView pairs the profile list with the current pointer.
type profilesView struct {
	Profiles []model.FamilyProfile `json:"profiles"`
	Current  string                `json:"current,omitempty"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("load profiles"))
		return
	}
	if profiles == nil {
		profiles = []model.FamilyProfile{}
	}
	view := profilesView{Profiles: profiles}
	if cur, err := s.profiles.Current(r.Context()); err == nil && cur != nil {
		view.Current = cur.ID
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

func (s *Server) handleRemoveProfile(w http.ResponseWriter, r *http.Request) {
	err := s.profiles.Remove(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("profile not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, Fail("remove profile"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (s *Server) handleSetCurrentProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if err := s.profiles.SetCurrent(r.Context(), req.ID); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("profile not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, Fail("set current profile"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.profiles.Contact(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail("load contact"))
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, Fail("no emergency contact set"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(*c))
}

func (s *Server) handleSetContact(w http.ResponseWriter, r *http.Request) {
	var c model.EmergencyContact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if err := s.profiles.SetContact(r.Context(), c); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}
