/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"photolabel/internal/bootstrap"
	"photolabel/internal/bootstrap/logging"
	"photolabel/internal/errs"
	"photolabel/internal/usecase/labeling"
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Destructive label removal tooling",
}

var wipeImageCmd = &cobra.Command{
	Use:   "image",
	Short: "Remove the label and revisions of one image",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		image, _ := cmd.Flags().GetString("image")
		if err := svc.WipeImageLabels(ctx, strings.TrimSpace(image)); err != nil {
			return errs.Wrap(err, "wipe image labels")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "wiped image=%s\n", image); err != nil {
			return errs.Wrap(err, "write wipe output")
		}
		return nil
	}),
}

var wipeUserCmd = &cobra.Command{
	Use:   "user",
	Short: "Remove every label a user produced",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		user, _ := cmd.Flags().GetString("user")
		n, err := svc.WipeUserLabels(ctx, strings.TrimSpace(user))
		if err != nil {
			return errs.Wrap(err, "wipe user labels")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "wiped user=%s labels=%d\n", user, n); err != nil {
			return errs.Wrap(err, "write wipe output")
		}
		return nil
	}),
}

var wipeAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Remove every label in the store",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			return errs.Wrap(errors.New("refusing to wipe all labels without --yes"), "wipe all")
		}

		n, err := svc.WipeAllLabels(ctx)
		if err != nil {
			return errs.Wrap(err, "wipe all labels")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "wiped labels=%d\n", n); err != nil {
			return errs.Wrap(err, "write wipe output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(wipeCmd)
	wipeCmd.AddCommand(wipeImageCmd)
	wipeCmd.AddCommand(wipeUserCmd)
	wipeCmd.AddCommand(wipeAllCmd)

	wipeImageCmd.Flags().String("image", "", "Image id")
	_ = wipeImageCmd.MarkFlagRequired("image")

	wipeUserCmd.Flags().String("user", "", "Username")
	_ = wipeUserCmd.MarkFlagRequired("user")

	wipeAllCmd.Flags().Bool("yes", false, "Confirm removal of every label")
}
