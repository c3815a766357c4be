// Package cli implements the echohealth CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/echohealth/echohealth/internal/config"
	"github.com/echohealth/echohealth/internal/store"
)

var (
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "echohealth",
	Short: "Voice and face wellness self-screening",
	Long:  "A local-first wellness screening tool. Capture short voice and face samples, derive heuristic risk indicators, and keep symptom logs and family profiles on-device.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $ECHOHEALTH_DB or ~/.echohealth/echohealth.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("ECHOHEALTH_DB"); env != "" {
		return env
	}
	return config.DefaultDBPath()
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
