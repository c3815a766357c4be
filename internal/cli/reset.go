package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echohealth/echohealth/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the current session's assessment results",
		Long:  "Clear the current session's assessment results. Journal entries, family profiles and the emergency contact are durable and unaffected.",
		Run:   runReset,
	}

	RootCmd.AddCommand(cmd)
}

func runReset(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.ClearSession(cmd.Context(), store.LocalSession); err != nil {
		exitErr("reset", err)
	}
	fmt.Println("Session cleared. Start a new test with `echohealth voice`.")
}
