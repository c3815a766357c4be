package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echohealth/echohealth/internal/profile"
)

func init() {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Family profiles (up to 3 per device)",
	}

	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a family profile",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileAdd,
	}
	addCmd.Flags().StringP("relation", "r", "", "Relation to the device owner (default: Family Member)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles and the current one",
		Run:   runProfileList,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove a profile",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileRm,
	}

	useCmd := &cobra.Command{
		Use:   "use [id]",
		Short: "Make a profile current",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileUse,
	}

	profileCmd.AddCommand(addCmd)
	profileCmd.AddCommand(listCmd)
	profileCmd.AddCommand(rmCmd)
	profileCmd.AddCommand(useCmd)
	RootCmd.AddCommand(profileCmd)
}

func openProfiles() (*profile.Manager, func() error) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	return profile.NewManager(s.Durable(), s), s.Close
}

func runProfileAdd(cmd *cobra.Command, args []string) {
	relation, _ := cmd.Flags().GetString("relation")

	pm, closeStore := openProfiles()
	defer closeStore()

	p, err := pm.Add(cmd.Context(), args[0], relation)
	if err != nil {
		exitErr("profile add", err)
	}

	b, _ := json.Marshal(p)
	fmt.Println(string(b))
}

func runProfileList(cmd *cobra.Command, args []string) {
	pm, closeStore := openProfiles()
	defer closeStore()

	profiles, err := pm.List(cmd.Context())
	if err != nil {
		exitErr("profile list", err)
	}
	cur, err := pm.Current(cmd.Context())
	if err != nil {
		exitErr("profile list", err)
	}

	if formatFlag == "text" {
		if len(profiles) == 0 {
			fmt.Println("No profiles yet. Add one with `echohealth profile add <name>`.")
			return
		}
		for _, p := range profiles {
			marker := " "
			if cur != nil && cur.ID == p.ID {
				marker = "*"
			}
			fmt.Printf("%s %s  %s (%s)", marker, p.ID, p.Name, p.Relation)
			if len(p.Results) > 0 {
				fmt.Printf("  last assessment %s, score %d (%s)",
					p.Results[0].Date.Format("2006-01-02"), p.Results[0].Score, p.Results[0].RiskLevel)
			}
			fmt.Println()
		}
		return
	}

	out := struct {
		Profiles []any  `json:"profiles,omitempty"`
		Current  string `json:"current,omitempty"`
	}{}
	for _, p := range profiles {
		out.Profiles = append(out.Profiles, p)
	}
	if cur != nil {
		out.Current = cur.ID
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

func runProfileRm(cmd *cobra.Command, args []string) {
	pm, closeStore := openProfiles()
	defer closeStore()

	if err := pm.Remove(cmd.Context(), args[0]); err != nil {
		exitErr("profile rm", err)
	}
	fmt.Println("removed", args[0])
}

func runProfileUse(cmd *cobra.Command, args []string) {
	pm, closeStore := openProfiles()
	defer closeStore()

	if err := pm.SetCurrent(cmd.Context(), args[0]); err != nil {
		exitErr("profile use", err)
	}
	fmt.Println("current profile set to", args[0])
}
