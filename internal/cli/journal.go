package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echohealth/echohealth/internal/journal"
	"github.com/echohealth/echohealth/internal/model"
)

func init() {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Symptom journal",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a symptom entry",
		Run:   runJournalAdd,
	}
	addCmd.Flags().StringP("symptom", "s", "", "Symptom (required): Headache, Fatigue, Stress, Anxiety, Dizziness, Sleep Issues, Brain Fog, Mood Changes, Other")
	addCmd.Flags().String("severity", "Mild", "Severity: Mild, Moderate, Severe")
	addCmd.Flags().String("date", "", "Calendar day, YYYY-MM-DD (default: today)")
	addCmd.Flags().String("notes", "", "Additional details")
	addCmd.MarkFlagRequired("symptom")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		Run:   runJournalList,
	}
	listCmd.Flags().String("date", "", "Only entries for this day, YYYY-MM-DD")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Entry counts per symptom and severity",
		Run:   runJournalStats,
	}

	journalCmd.AddCommand(addCmd)
	journalCmd.AddCommand(listCmd)
	journalCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(journalCmd)
}

func openJournal() (*journal.Journal, func() error) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	return journal.New(s.Durable(), s), s.Close
}

func runJournalAdd(cmd *cobra.Command, args []string) {
	symptom, _ := cmd.Flags().GetString("symptom")
	severity, _ := cmd.Flags().GetString("severity")
	date, _ := cmd.Flags().GetString("date")
	notes, _ := cmd.Flags().GetString("notes")

	j, closeStore := openJournal()
	defer closeStore()

	entry, err := j.Add(cmd.Context(), date, symptom, model.Severity(severity), notes)
	if err != nil {
		exitErr("journal add", err)
	}

	b, _ := json.Marshal(entry)
	fmt.Println(string(b))
}

func runJournalList(cmd *cobra.Command, args []string) {
	date, _ := cmd.Flags().GetString("date")

	j, closeStore := openJournal()
	defer closeStore()

	var (
		entries []model.SymptomEntry
		err     error
	)
	if date != "" {
		entries, err = j.OnDay(cmd.Context(), date)
	} else {
		entries, err = j.List(cmd.Context())
	}
	if err != nil {
		exitErr("journal list", err)
	}

	b, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Println(string(b))
}

func runJournalStats(cmd *cobra.Command, args []string) {
	j, closeStore := openJournal()
	defer closeStore()

	st, err := j.Stats(cmd.Context())
	if err != nil {
		exitErr("journal stats", err)
	}

	b, _ := json.MarshalIndent(st, "", "  ")
	fmt.Println(string(b))
}
