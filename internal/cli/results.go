package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echohealth/echohealth/internal/profile"
	"github.com/echohealth/echohealth/internal/risk"
	"github.com/echohealth/echohealth/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show the combined risk score for the current session",
		Run:   runResults,
	}
	cmd.Flags().Bool("record", false, "Record a snapshot onto the current family profile")

	RootCmd.AddCommand(cmd)
}

func runResults(cmd *cobra.Command, args []string) {
	record, _ := cmd.Flags().GetBool("record")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	merged, err := store.NewResultStore(s.Session(store.LocalSession)).Load(cmd.Context())
	if err != nil {
		exitErr("load results", err)
	}
	if merged.Empty() {
		exitErr("results", fmt.Errorf("no completed assessments; run `echohealth voice` or `echohealth face` first"))
	}

	res, err := risk.Aggregate(merged.Voice, merged.Face)
	if err != nil {
		exitErr("results", err)
	}

	if record {
		pm := profile.NewManager(s.Durable(), s)
		if err := pm.AppendResult(cmd.Context(), res); err != nil {
			exitErr("record result", err)
		}
	}

	if formatFlag == "text" {
		fmt.Printf("Risk score: %d/100 (%s)\n", res.Score, res.RiskLevel)
		if res.Voice != nil {
			fmt.Printf("  Voice contribution: %d (confidence %d%%)\n", res.Voice.RiskContribution, res.Voice.Confidence)
		}
		if res.Face != nil {
			fmt.Printf("  Face contribution:  %d (confidence %d%%)\n", res.Face.RiskContribution, res.Face.Confidence)
		}
		fmt.Println(risk.LevelAdvice(res.RiskLevel))
		return
	}
	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}
