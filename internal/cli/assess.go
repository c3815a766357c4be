package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/echohealth/echohealth/internal/analyzer"
	"github.com/echohealth/echohealth/internal/assessment"
	"github.com/echohealth/echohealth/internal/capture"
	"github.com/echohealth/echohealth/internal/model"
	"github.com/echohealth/echohealth/internal/store"
)

func init() {
	voiceCmd := &cobra.Command{
		Use:   "voice",
		Short: "Record a 10-second voice sample and analyze it",
		Run: func(cmd *cobra.Command, args []string) {
			runAssessment(cmd, capture.NewSimMicrophone())
		},
	}
	voiceCmd.Flags().Duration("tick", 0, "Progress tick interval (default 100ms)")

	faceCmd := &cobra.Command{
		Use:   "face",
		Short: "Run a 5-second face scan and analyze it",
		Run: func(cmd *cobra.Command, args []string) {
			runAssessment(cmd, capture.NewSimCamera())
		},
	}
	faceCmd.Flags().Duration("tick", 0, "Progress tick interval (default 50ms)")

	RootCmd.AddCommand(voiceCmd)
	RootCmd.AddCommand(faceCmd)
}

func runAssessment(cmd *cobra.Command, adapter capture.Adapter) {
	tick, _ := cmd.Flags().GetDuration("tick")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sink := store.NewResultStore(s.Session(store.LocalSession))
	machine, err := assessment.New(assessment.Config{
		Adapter:      adapter,
		Analyzer:     analyzer.NewHeuristic(time.Second),
		Sink:         sink,
		TickInterval: tick,
		OnProgress: func(pct int) {
			fmt.Printf("\rCapturing... %3d%%", pct)
			if pct >= 100 {
				fmt.Println()
			}
		},
	})
	if err != nil {
		exitErr("assessment", err)
	}

	modality := adapter.Modality()
	rec, err := machine.Run(cmd.Context())
	if err != nil {
		fmt.Println()
		if errors.Is(err, capture.ErrDeviceUnavailable) {
			exitErr(string(modality), fmt.Errorf("device unavailable, check permissions and try again: %w", err))
		}
		exitErr(string(modality), err)
	}

	printRecord(rec)
	if modality == model.ModalityVoice {
		fmt.Println("\nNext: run `echohealth face`, or `echohealth results` to see your score.")
	} else {
		fmt.Println("\nRun `echohealth results` to see your combined score.")
	}
}

func printRecord(rec model.IndicatorRecord) {
	if formatFlag == "text" {
		fmt.Printf("%s analysis complete (confidence %d%%)\n", rec.Modality, rec.Confidence)
		switch rec.Modality {
		case model.ModalityVoice:
			fmt.Printf("  Stress Level:      %s\n", rec.StressLevel)
			fmt.Printf("  Voice Rhythm:      %s\n", rec.Rhythm)
			fmt.Printf("  Breathing Pattern: %s\n", rec.BreathingPattern)
		case model.ModalityFace:
			fmt.Printf("  Blink Rate:     %s\n", rec.BlinkRate)
			fmt.Printf("  Eye Movement:   %s\n", rec.EyeMovement)
			fmt.Printf("  Facial Tension: %s\n", rec.FacialTension)
			fmt.Printf("  Symmetry:       %s\n", rec.Symmetry)
		}
		return
	}
	b, _ := json.MarshalIndent(rec, "", "  ")
	fmt.Println(string(b))
}
