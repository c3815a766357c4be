package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echohealth/echohealth/internal/risk"
	"github.com/echohealth/echohealth/internal/store"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "advice",
		Short: "Get guidance for your current session's score",
		Run:   runAdvice,
	})
}

func runAdvice(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	merged, err := store.NewResultStore(s.Session(store.LocalSession)).Load(cmd.Context())
	if err != nil {
		exitErr("load results", err)
	}
	res, err := risk.Aggregate(merged.Voice, merged.Face)
	if err != nil {
		exitErr("advice", fmt.Errorf("no completed assessments; run `echohealth voice` or `echohealth face` first"))
	}

	msg := risk.AdviceFor(res.Score)
	if formatFlag == "text" {
		fmt.Printf("Score %d/100\n\n%s\n", res.Score, msg)
		return
	}
	b, _ := json.MarshalIndent(map[string]any{
		"score":   res.Score,
		"message": msg,
	}, "", "  ")
	fmt.Println(string(b))
}
