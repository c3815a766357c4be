// Package capture defines the adapter contract around a modality's sensor
// and provides simulated microphone and camera implementations. The real
// sensors live in the browser; these stand-ins synthesize sample bytes so
// the rest of the pipeline runs unchanged.
package capture

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/echohealth/echohealth/internal/model"
)

// ErrDeviceUnavailable is returned when the sensor cannot be opened
// (permission denied or no hardware). The caller may retry.
var ErrDeviceUnavailable = errors.New("capture device unavailable")

// Sample is the raw material handed to an analyzer.
type Sample struct {
	Modality model.Modality
	Data     []byte
	Duration time.Duration
}

// Device is an open sensor stream. Close is idempotent; every exit path
// that opened a device must close it.
type Device interface {
	// ReadChunk returns the next chunk of raw sample data.
	ReadChunk() []byte
	Close() error
}

// Adapter opens a modality's sensor.
type Adapter interface {
	Modality() model.Modality
	Open(ctx context.Context) (Device, error)
}

// SimAdapter is a simulated microphone or camera. Setting Available to
// false makes Open fail the way a denied permission prompt does.
type SimAdapter struct {
	modality  model.Modality
	chunkSize int

	mu        sync.Mutex
	available bool
	rng       *rand.Rand
}

// NewSimMicrophone returns a simulated voice capture adapter.
func NewSimMicrophone() *SimAdapter {
	return newSim(model.ModalityVoice, 320)
}

// NewSimCamera returns a simulated face capture adapter.
func NewSimCamera() *SimAdapter {
	return newSim(model.ModalityFace, 1024)
}

func newSim(m model.Modality, chunkSize int) *SimAdapter {
	return &SimAdapter{
		modality:  m,
		chunkSize: chunkSize,
		available: true,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *SimAdapter) Modality() model.Modality { return a.modality }

// SetAvailable toggles whether Open succeeds.
func (a *SimAdapter) SetAvailable(ok bool) {
	a.mu.Lock()
	a.available = ok
	a.mu.Unlock()
}

// Open acquires the simulated sensor stream.
func (a *SimAdapter) Open(ctx context.Context) (Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.available {
		return nil, fmt.Errorf("%s: %w", a.modality, ErrDeviceUnavailable)
	}
	return &simDevice{adapter: a}, nil
}

type simDevice struct {
	adapter *SimAdapter

	mu         sync.Mutex
	closed     bool
	closeCalls int
}

func (d *simDevice) ReadChunk() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	buf := make([]byte, d.adapter.chunkSize)
	d.adapter.mu.Lock()
	d.adapter.rng.Read(buf)
	d.adapter.mu.Unlock()
	return buf
}

func (d *simDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeCalls++
	d.closed = true
	return nil
}

// CloseCalls reports how many times Close has been invoked on the device.
func (d *simDevice) CloseCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeCalls
}
