package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/echohealth/echohealth/internal/model"
)

func TestSimAdapterOpenAndRead(t *testing.T) {
	mic := NewSimMicrophone()
	if mic.Modality() != model.ModalityVoice {
		t.Fatalf("modality = %s", mic.Modality())
	}

	dev, err := mic.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	chunk := dev.ReadChunk()
	if len(chunk) != 320 {
		t.Errorf("voice chunk size = %d, want 320", len(chunk))
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if dev.ReadChunk() != nil {
		t.Error("read after close must return nil")
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestSimAdapterUnavailable(t *testing.T) {
	cam := NewSimCamera()
	cam.SetAvailable(false)

	if _, err := cam.Open(context.Background()); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}

	cam.SetAvailable(true)
	dev, err := cam.Open(context.Background())
	if err != nil {
		t.Fatalf("open after recovery: %v", err)
	}
	if got := len(dev.ReadChunk()); got != 1024 {
		t.Errorf("face chunk size = %d, want 1024", got)
	}
	dev.Close()
}

func TestOpenHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSimMicrophone().Open(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
