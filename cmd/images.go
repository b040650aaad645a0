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

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Image maintenance operations",
}

var imagesFlaggedCmd = &cobra.Command{
	Use:   "flagged",
	Short: "List flagged images",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")

		images, err := svc.ListFlaggedImages(ctx, strings.TrimSpace(user), limit)
		if err != nil {
			return errs.Wrap(err, "list flagged images")
		}

		for _, img := range images {
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"image=%s status=%s qa=%s\n",
				img.ImageID, img.Status, img.QAStatus,
			); err != nil {
				return errs.Wrap(err, "write images output")
			}
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "total=%d\n", len(images)); err != nil {
			return errs.Wrap(err, "write images output")
		}
		return nil
	}),
}

var imagesUnflagCmd = &cobra.Command{
	Use:   "unflag",
	Short: "Clear the flag on images",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		images, _ := cmd.Flags().GetStringSlice("image")
		n, err := svc.UnflagImages(ctx, images)
		if err != nil {
			return errs.Wrap(err, "unflag images")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "unflagged=%d\n", n); err != nil {
			return errs.Wrap(err, "write images output")
		}
		return nil
	}),
}

var imagesRetireCmd = &cobra.Command{
	Use:   "retire",
	Short: "Take an image out of circulation",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		image, _ := cmd.Flags().GetString("image")
		wipe, _ := cmd.Flags().GetBool("wipe")

		if err := svc.RetireImage(ctx, strings.TrimSpace(image), wipe); err != nil {
			return errs.Wrap(err, "retire image")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "retired image=%s wiped=%t\n", image, wipe); err != nil {
			return errs.Wrap(err, "write images output")
		}
		return nil
	}),
}

var imagesFailuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List images with repeated URL resolution failures",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		limit, _ := cmd.Flags().GetInt("limit")
		images, err := svc.ListResolverFailures(ctx, limit)
		if err != nil {
			return errs.Wrap(err, "list resolver failures")
		}

		for _, img := range images {
			lastErr := "-"
			if img.LastResolverError != nil {
				lastErr = *img.LastResolverError
			}
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"image=%s failures=%d last_error=%s\n",
				img.ImageID, img.ResolverFailureCount, lastErr,
			); err != nil {
				return errs.Wrap(err, "write images output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(imagesCmd)
	imagesCmd.AddCommand(imagesFlaggedCmd)
	imagesCmd.AddCommand(imagesUnflagCmd)
	imagesCmd.AddCommand(imagesRetireCmd)
	imagesCmd.AddCommand(imagesFailuresCmd)

	imagesFlaggedCmd.Flags().String("user", "", "Filter by assigned user")
	imagesFlaggedCmd.Flags().Int("limit", 50, "Maximum rows")

	imagesUnflagCmd.Flags().StringSlice("image", nil, "Image ids to unflag")
	_ = imagesUnflagCmd.MarkFlagRequired("image")

	imagesRetireCmd.Flags().String("image", "", "Image id")
	imagesRetireCmd.Flags().Bool("wipe", false, "Also remove its label and revisions")
	_ = imagesRetireCmd.MarkFlagRequired("image")

	imagesFailuresCmd.Flags().Int("limit", 50, "Maximum rows")
}
