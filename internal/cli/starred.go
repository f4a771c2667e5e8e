package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/artpar/starplate/internal/starred"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelStars bounds concurrent requests for a multi-id add.
const maxParallelStars = 4

// NewStarredCommand creates the starred command group.
func NewStarredCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "starred",
		Short: "Manage starred restaurants through the API",
	}

	cmd.AddCommand(newStarredListCommand(global))
	cmd.AddCommand(newStarredAddCommand(global))
	cmd.AddCommand(newStarredUnstarCommand(global))
	cmd.AddCommand(newStarredCommentCommand(global))

	return cmd
}

func newStarredListCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List starred restaurants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}
			list, err := c.ListStarred(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list starred restaurants: %w", err)
			}
			return writeJSON(cmd, list)
		},
	}
}

func newStarredAddCommand(global *GlobalOptions) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "add RESTAURANT_ID...",
		Short: "Star one or more restaurants",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}

			added := make([]starred.Joined, len(args))
			g, ctx := errgroup.WithContext(commandContext(cmd))
			g.SetLimit(maxParallelStars)
			for i, restaurantID := range args {
				g.Go(func() error {
					j, err := c.AddStarred(ctx, restaurantID, comment)
					if err != nil {
						return fmt.Errorf("failed to star %s: %w", restaurantID, err)
					}
					added[i] = j
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return writeJSON(cmd, added)
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Comment stored with each starred record")

	return cmd
}

func newStarredUnstarCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unstar ID",
		Short: "Remove a starred record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}
			status, err := c.Unstar(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return reportStatus(cmd, status)
		},
	}
}

func newStarredCommentCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "comment ID COMMENT",
		Short: "Replace the comment of a starred record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}
			status, err := c.UpdateComment(commandContext(cmd), args[0], args[1])
			if err != nil {
				return err
			}
			return reportStatus(cmd, status)
		},
	}
}

// reportStatus prints the status code and fails for anything but 2xx.
func reportStatus(cmd *cobra.Command, status int) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", status, http.StatusText(status))
	if status < 200 || status > 299 {
		return fmt.Errorf("request failed with status %d", status)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
