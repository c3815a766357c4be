// Package assessment drives one modality's capture/analysis lifecycle.
//
// A Machine moves through Idle → Capturing → Analyzing → Complete, emitting
// a monotonic 0-100 progress value while capturing. The capture device is
// released on every exit from Capturing, including cancellation and
// teardown. A generation counter invalidates in-flight ticks and pending
// analyses the moment a transition happens, so a timer firing after
// cancellation can never double-run the completion logic.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/echohealth/echohealth/internal/analyzer"
	"github.com/echohealth/echohealth/internal/capture"
	"github.com/echohealth/echohealth/internal/model"
)

// ErrBusy is returned by Start when an episode is already running.
var ErrBusy = errors.New("assessment already in progress")

// State of the machine.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateAnalyzing
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateAnalyzing:
		return "analyzing"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// ResultSink receives the completed record for the session.
type ResultSink interface {
	SaveRecord(ctx context.Context, rec model.IndicatorRecord) error
}

// DefaultTickInterval is the capture progress cadence for a modality:
// 100ms per percent for voice (10s window), 50ms for the face scan (5s).
func DefaultTickInterval(m model.Modality) time.Duration {
	if m == model.ModalityFace {
		return 50 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// Config assembles a machine's collaborators.
type Config struct {
	Adapter      capture.Adapter
	Analyzer     analyzer.Analyzer
	Sink         ResultSink
	TickInterval time.Duration // defaults per modality
	OnProgress   func(pct int)
	Logger       *zap.Logger
}

// Machine is the per-modality state machine. All methods are safe for
// concurrent use.
type Machine struct {
	cfg      Config
	modality model.Modality

	mu         sync.Mutex
	state      State
	progress   int
	gen        uint64
	device     capture.Device
	sample     []byte
	record     *model.IndicatorRecord
	lastErr    error
	done       chan struct{}
	doneClosed bool
}

// New builds a machine for the adapter's modality.
func New(cfg Config) (*Machine, error) {
	if cfg.Adapter == nil {
		return nil, errors.New("assessment: adapter is required")
	}
	if cfg.Analyzer == nil {
		return nil, errors.New("assessment: analyzer is required")
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval(cfg.Adapter.Modality())
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Machine{cfg: cfg, modality: cfg.Adapter.Modality()}, nil
}

// Modality returns the machine's input channel.
func (m *Machine) Modality() model.Modality { return m.modality }

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Progress returns the current capture progress, 0-100.
func (m *Machine) Progress() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// Record returns the completed indicator record, if any.
func (m *Machine) Record() (model.IndicatorRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return model.IndicatorRecord{}, false
	}
	return *m.record, true
}

// Err returns the error that ended the last episode, if any.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Start begins a capture episode. It fails without leaving Idle when the
// device cannot be opened; the caller may retry.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", m.modality, ErrBusy)
	}
	m.mu.Unlock()

	dev, err := m.cfg.Adapter.Open(ctx)
	if err != nil {
		return fmt.Errorf("open %s device: %w", m.modality, err)
	}

	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		dev.Close()
		return fmt.Errorf("%s: %w", m.modality, ErrBusy)
	}
	m.gen++
	gen := m.gen
	m.state = StateCapturing
	m.progress = 0
	m.sample = nil
	m.record = nil
	m.lastErr = nil
	m.device = dev
	m.done = make(chan struct{})
	m.doneClosed = false
	m.mu.Unlock()

	m.cfg.Logger.Debug("capture started", zap.String("modality", string(m.modality)))
	go m.captureLoop(ctx, gen)
	return nil
}

// Stop ends capturing early and moves to Analyzing. Calling it when not
// capturing, including a second time in a row, is a no-op: the transition
// and the device release happen at most once per episode.
func (m *Machine) Stop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateCapturing {
		return
	}
	m.finishCaptureLocked(ctx)
}

// Cancel aborts the current episode, releasing the device and discarding
// any partial data. A completion arriving afterwards is ignored.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateCapturing:
		m.device.Close()
		m.device = nil
		fallthrough
	case StateAnalyzing:
		m.gen++
		m.state = StateIdle
		m.progress = 0
		m.sample = nil
		m.lastErr = context.Canceled
		m.closeDoneLocked()
		m.cfg.Logger.Debug("episode cancelled", zap.String("modality", string(m.modality)))
	}
}

// Reset returns the machine to Idle from any state, ready to reacquire
// the device on the next Start.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		m.device.Close()
		m.device = nil
	}
	m.gen++
	m.state = StateIdle
	m.progress = 0
	m.sample = nil
	m.record = nil
	m.lastErr = nil
	m.closeDoneLocked()
}

// Run drives one full episode synchronously: Start, wait for the analyzer
// to finish, and return the record. Cancelling ctx aborts the episode.
func (m *Machine) Run(ctx context.Context) (model.IndicatorRecord, error) {
	if err := m.Start(ctx); err != nil {
		return model.IndicatorRecord{}, err
	}
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		m.Cancel()
		return model.IndicatorRecord{}, ctx.Err()
	case <-done:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateComplete && m.record != nil {
		return *m.record, nil
	}
	if m.lastErr != nil {
		return model.IndicatorRecord{}, m.lastErr
	}
	return model.IndicatorRecord{}, errors.New("assessment did not complete")
}

func (m *Machine) captureLoop(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.abortCapture(gen, ctx.Err())
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		if m.gen != gen || m.state != StateCapturing {
			m.mu.Unlock()
			return
		}
		m.progress++
		m.sample = append(m.sample, m.device.ReadChunk()...)
		pct := m.progress
		finished := m.progress >= 100
		if finished {
			m.finishCaptureLocked(ctx)
		}
		m.mu.Unlock()

		if m.cfg.OnProgress != nil {
			m.cfg.OnProgress(pct)
		}
		if finished {
			return
		}
	}
}

// abortCapture ends a capturing episode whose context was cancelled.
func (m *Machine) abortCapture(gen uint64, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.state != StateCapturing {
		return
	}
	m.device.Close()
	m.device = nil
	m.gen++
	m.state = StateIdle
	m.progress = 0
	m.sample = nil
	m.lastErr = cause
	m.closeDoneLocked()
}

// finishCaptureLocked releases the device, bumps the generation so no
// further tick lands, and hands the sample to the analyzer. Caller holds
// the lock and has verified state == StateCapturing.
func (m *Machine) finishCaptureLocked(ctx context.Context) {
	m.device.Close()
	m.device = nil
	m.gen++
	gen := m.gen
	m.state = StateAnalyzing

	s := capture.Sample{
		Modality: m.modality,
		Data:     append([]byte(nil), m.sample...),
		Duration: time.Duration(m.progress) * m.cfg.TickInterval,
	}
	m.sample = nil

	m.cfg.Logger.Debug("capture finished",
		zap.String("modality", string(m.modality)),
		zap.Int("progress", m.progress),
		zap.Int("bytes", len(s.Data)))

	go m.analyze(ctx, gen, s)
}

func (m *Machine) analyze(ctx context.Context, gen uint64, s capture.Sample) {
	rec, err := m.cfg.Analyzer.Analyze(ctx, s)
	if err == nil {
		err = rec.Validate()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.state != StateAnalyzing {
		// Episode was cancelled or reset while the analyzer ran.
		return
	}

	if err != nil {
		m.state = StateIdle
		m.progress = 0
		m.lastErr = fmt.Errorf("%s: %w", m.modality, err)
		m.closeDoneLocked()
		m.cfg.Logger.Warn("analysis failed",
			zap.String("modality", string(m.modality)), zap.Error(err))
		return
	}

	if m.cfg.Sink != nil {
		if serr := m.cfg.Sink.SaveRecord(ctx, rec); serr != nil {
			// Persistence is advisory; the record is still served in-memory.
			m.cfg.Logger.Warn("save record",
				zap.String("modality", string(m.modality)), zap.Error(serr))
		}
	}
	m.record = &rec
	m.state = StateComplete
	m.closeDoneLocked()
}

func (m *Machine) closeDoneLocked() {
	if m.done != nil && !m.doneClosed {
		close(m.done)
		m.doneClosed = true
	}
}
