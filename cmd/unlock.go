/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"photolabel/internal/bootstrap"
	"photolabel/internal/bootstrap/logging"
	"photolabel/internal/errs"
	"photolabel/internal/usecase/labeling"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Inspect and force-release task locks",
}

var unlockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List held task locks",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		user, _ := cmd.Flags().GetString("user")
		expired, _ := cmd.Flags().GetBool("expired")

		images, err := svc.ListLockedTasks(ctx, strings.TrimSpace(user), expired)
		if err != nil {
			return errs.Wrap(err, "list locked tasks")
		}

		for _, img := range images {
			holder := "-"
			if img.AssignedTo != nil {
				holder = *img.AssignedTo
			}
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"image=%s user=%s expires=%s\n",
				img.ImageID, holder, img.TaskExpiresAt,
			); err != nil {
				return errs.Wrap(err, "write unlock output")
			}
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "total=%d\n", len(images)); err != nil {
			return errs.Wrap(err, "write unlock output")
		}
		return nil
	}),
}

var unlockApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Force-release locks by image id, or every expired lock",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		images, _ := cmd.Flags().GetStringSlice("image")
		expired, _ := cmd.Flags().GetBool("expired")

		var (
			n   int
			err error
		)
		switch {
		case expired:
			n, err = svc.UnlockExpiredTasks(ctx)
		case len(images) > 0:
			n, err = svc.UnlockTasks(ctx, images)
		default:
			return errs.Wrap(fmt.Errorf("either --image or --expired is required"), "unlock apply")
		}
		if err != nil {
			return errs.Wrap(err, "unlock tasks")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "unlocked=%d\n", n); err != nil {
			return errs.Wrap(err, "write unlock output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(unlockCmd)
	unlockCmd.AddCommand(unlockListCmd)
	unlockCmd.AddCommand(unlockApplyCmd)

	unlockListCmd.Flags().String("user", "", "Filter by holder")
	unlockListCmd.Flags().Bool("expired", false, "Only locks past their deadline")

	unlockApplyCmd.Flags().StringSlice("image", nil, "Image ids to unlock")
	unlockApplyCmd.Flags().Bool("expired", false, "Unlock every expired lock")
}
