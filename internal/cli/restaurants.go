package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRestaurantsCommand creates the restaurants command group.
func NewRestaurantsCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restaurants",
		Short: "Manage restaurants through the API",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List restaurants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}
			list, err := c.ListRestaurants(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list restaurants: %w", err)
			}
			return writeJSON(cmd, list)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}
			r, err := c.CreateRestaurant(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to add restaurant: %w", err)
			}
			return writeJSON(cmd, r)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}
			if err := c.DeleteRestaurant(commandContext(cmd), args[0]); err != nil {
				return fmt.Errorf("failed to delete restaurant %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}
