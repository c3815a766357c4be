package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/echohealth/echohealth/internal/calendar"
)

func init() {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month's symptom intensity",
		Run:   runCalendar,
	}
	cmd.Flags().StringP("month", "m", "", "Month to show, YYYY-MM (default: current month)")

	RootCmd.AddCommand(cmd)
}

func runCalendar(cmd *cobra.Command, args []string) {
	monthFlag, _ := cmd.Flags().GetString("month")

	now := time.Now()
	year, month := now.Year(), now.Month()
	if monthFlag != "" {
		t, err := time.Parse("2006-01", monthFlag)
		if err != nil {
			exitErr("calendar", fmt.Errorf("invalid month %q (use YYYY-MM)", monthFlag))
		}
		year, month = t.Year(), t.Month()
	}

	j, closeStore := openJournal()
	defer closeStore()

	entries, err := j.List(cmd.Context())
	if err != nil {
		exitErr("calendar", err)
	}
	buckets := calendar.MonthBuckets(entries, year, month)

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(map[string]any{
			"year":    year,
			"month":   int(month),
			"buckets": buckets,
		}, "", "  ")
		fmt.Println(string(b))
		return
	}

	fmt.Printf("%s %d\n", month, year)
	fmt.Println(" Mo   Tu   We   Th   Fr   Sa   Su")
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7 // Monday-first grid
	fmt.Print(strings.Repeat("     ", offset))
	col := offset
	for day := 1; day <= calendar.DaysIn(year, month); day++ {
		if b := buckets[day]; b > 0 {
			fmt.Printf("%2d:%d", day, b)
		} else {
			fmt.Printf("%2d  ", day)
		}
		col++
		if col%7 == 0 {
			fmt.Println()
		} else {
			fmt.Print(" ")
		}
	}
	if col%7 != 0 {
		fmt.Println()
	}
	fmt.Println("\nDays marked d:n show intensity 1-5 from logged symptoms.")
}
