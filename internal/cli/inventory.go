package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inventoryUser string

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage a user's wine inventory",
	Long: `Add, remove and list the catalog wines a user owns. Pairing with
--user only considers wines in that inventory.

Examples:
  cellar inventory add 7f9c... --user ana
  cellar inventory list --user ana`,
}

var inventoryAddCmd = &cobra.Command{
	Use:   "add <wine-id>...",
	Short: "Add wines to the inventory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), GetRootDir(), GetConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		for _, id := range args {
			if err := st.AddToInventory(cmd.Context(), inventoryUser, id); err != nil {
				return fmt.Errorf("failed to add %s: %w", id, err)
			}
		}
		fmt.Printf("Added %d wine(s) to %s's inventory\n", len(args), inventoryUser)
		return nil
	},
}

var inventoryRemoveCmd = &cobra.Command{
	Use:   "remove <wine-id>...",
	Short: "Remove wines from the inventory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), GetRootDir(), GetConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		for _, id := range args {
			if err := st.RemoveFromInventory(cmd.Context(), inventoryUser, id); err != nil {
				return fmt.Errorf("failed to remove %s: %w", id, err)
			}
		}
		fmt.Printf("Removed %d wine(s) from %s's inventory\n", len(args), inventoryUser)
		return nil
	},
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the wines in the inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx, GetRootDir(), GetConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		ids, err := st.InventoryWineIDs(ctx, inventoryUser)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Printf("%s's inventory is empty.\n", inventoryUser)
			return nil
		}
		for _, id := range ids {
			w, err := st.GetWine(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", id, describeWine(w))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.PersistentFlags().StringVar(&inventoryUser, "user", "", "inventory owner (required)")
	inventoryCmd.MarkPersistentFlagRequired("user")
	inventoryCmd.AddCommand(inventoryAddCmd, inventoryRemoveCmd, inventoryListCmd)
}
