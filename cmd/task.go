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

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Task assignment operations",
}

var taskNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Claim the next image for a labeler",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		user, _ := cmd.Flags().GetString("user")
		user = strings.TrimSpace(user)

		img, err := svc.GetNextTask(ctx, user)
		if err != nil {
			return errs.Wrap(err, "claim next task")
		}
		if img == nil {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no work available"); err != nil {
				return errs.Wrap(err, "write task output")
			}
			return nil
		}

		property := "-"
		if img.PropertyID != nil {
			property = *img.PropertyID
		}
		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"claimed image=%s property=%s qa=%s expires=%s\n",
			img.ImageID, property, img.QAStatus, img.TaskExpiresAt,
		); err != nil {
			return errs.Wrap(err, "write task output")
		}
		return nil
	}),
}

var taskReleaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Release a claimed image back to the pool",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		user, _ := cmd.Flags().GetString("user")
		image, _ := cmd.Flags().GetString("image")

		if err := svc.ReleaseTask(ctx, strings.TrimSpace(user), strings.TrimSpace(image)); err != nil {
			return errs.Wrap(err, "release task")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "released image=%s\n", image); err != nil {
			return errs.Wrap(err, "write task output")
		}
		return nil
	}),
}

var taskAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Hand-assign an image to a labeler",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		user, _ := cmd.Flags().GetString("user")
		image, _ := cmd.Flags().GetString("image")

		if err := svc.AssignTask(ctx, strings.TrimSpace(image), strings.TrimSpace(user)); err != nil {
			return errs.Wrap(err, "assign task")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "assigned image=%s user=%s\n", image, user); err != nil {
			return errs.Wrap(err, "write task output")
		}
		return nil
	}),
}

var taskURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Resolve the display URL for an image",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		image, _ := cmd.Flags().GetString("image")
		url, err := svc.GetImageURL(ctx, strings.TrimSpace(image))
		if err != nil {
			return errs.Wrap(err, "resolve image url")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), url); err != nil {
			return errs.Wrap(err, "write task output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskNextCmd)
	taskCmd.AddCommand(taskReleaseCmd)
	taskCmd.AddCommand(taskAssignCmd)
	taskCmd.AddCommand(taskURLCmd)

	taskNextCmd.Flags().String("user", "", "Labeler username")
	_ = taskNextCmd.MarkFlagRequired("user")

	taskReleaseCmd.Flags().String("user", "", "Labeler username")
	taskReleaseCmd.Flags().String("image", "", "Image id")
	_ = taskReleaseCmd.MarkFlagRequired("user")
	_ = taskReleaseCmd.MarkFlagRequired("image")

	taskAssignCmd.Flags().String("user", "", "Labeler username")
	taskAssignCmd.Flags().String("image", "", "Image id")
	_ = taskAssignCmd.MarkFlagRequired("user")
	_ = taskAssignCmd.MarkFlagRequired("image")

	taskURLCmd.Flags().String("image", "", "Image id")
	_ = taskURLCmd.MarkFlagRequired("image")
}
