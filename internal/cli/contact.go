package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echohealth/echohealth/internal/model"
)

func init() {
	contactCmd := &cobra.Command{
		Use:   "contact",
		Short: "Emergency contact",
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Set the emergency contact",
		Run:   runContactSet,
	}
	setCmd.Flags().StringP("name", "n", "", "Contact name (required)")
	setCmd.Flags().StringP("phone", "p", "", "Contact phone (required)")
	setCmd.MarkFlagRequired("name")
	setCmd.MarkFlagRequired("phone")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the emergency contact",
		Run:   runContactShow,
	}

	contactCmd.AddCommand(setCmd)
	contactCmd.AddCommand(showCmd)
	RootCmd.AddCommand(contactCmd)
}

func runContactSet(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	phone, _ := cmd.Flags().GetString("phone")

	pm, closeStore := openProfiles()
	defer closeStore()

	if err := pm.SetContact(cmd.Context(), model.EmergencyContact{Name: name, Phone: phone}); err != nil {
		exitErr("contact set", err)
	}
	fmt.Printf("%s is now your emergency contact.\n", name)
}

func runContactShow(cmd *cobra.Command, args []string) {
	pm, closeStore := openProfiles()
	defer closeStore()

	c, err := pm.Contact(cmd.Context())
	if err != nil {
		exitErr("contact show", err)
	}
	if c == nil {
		fmt.Println("No emergency contact set. Add one with `echohealth contact set`.")
		return
	}

	b, _ := json.Marshal(c)
	fmt.Println(string(b))
}
