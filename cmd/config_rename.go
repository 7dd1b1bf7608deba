package cmd

import (
	"fmt"

	"github.com/brogergvhs/tokihunter/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename a profile; the active marker follows it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldLabel, newLabel := args[0], args[1]

		if err := config.RenameConfig(oldLabel, newLabel); err != nil {
			return fmt.Errorf("rename %q: %w", oldLabel, err)
		}

		fmt.Printf("Renamed config %q → %q\n", oldLabel, newLabel)
		if active, _ := config.CurrentLabel(); active == newLabel {
			fmt.Println("It is still the active config.")
		}

		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}
