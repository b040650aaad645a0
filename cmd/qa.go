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
	domain "photolabel/internal/domain/labeling"
	"photolabel/internal/errs"
	"photolabel/internal/usecase/labeling"
)

var qaCmd = &cobra.Command{
	Use:   "qa",
	Short: "QA review operations",
}

var qaConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Confirm the labels of an image",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		admin, _ := cmd.Flags().GetString("admin")
		image, _ := cmd.Flags().GetString("image")

		if err := svc.ConfirmLabels(ctx, strings.TrimSpace(admin), strings.TrimSpace(image)); err != nil {
			return errs.Wrap(err, "confirm labels")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "confirmed image=%s\n", image); err != nil {
			return errs.Wrap(err, "write qa output")
		}
		return nil
	}),
}

var qaReviseCmd = &cobra.Command{
	Use:   "revise",
	Short: "Send an image back to its labeler with feedback",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		admin, _ := cmd.Flags().GetString("admin")
		image, _ := cmd.Flags().GetString("image")
		labeler, _ := cmd.Flags().GetString("labeler")
		feedback, _ := cmd.Flags().GetString("feedback")

		if err := svc.RequestRevision(ctx, strings.TrimSpace(admin), strings.TrimSpace(image), strings.TrimSpace(labeler), feedback); err != nil {
			return errs.Wrap(err, "request revision")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "revision requested image=%s\n", image); err != nil {
			return errs.Wrap(err, "write qa output")
		}
		return nil
	}),
}

var qaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset an image back to QA pending",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		image, _ := cmd.Flags().GetString("image")
		if err := svc.ResetQA(ctx, strings.TrimSpace(image)); err != nil {
			return errs.Wrap(err, "reset qa")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "qa reset image=%s\n", image); err != nil {
			return errs.Wrap(err, "write qa output")
		}
		return nil
	}),
}

var qaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the QA state of one image",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		image, _ := cmd.Flags().GetString("image")
		img, err := svc.GetImageDoc(ctx, strings.TrimSpace(image))
		if err != nil {
			return errs.Wrap(err, "show image")
		}
		if img == nil {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "image=%s not found\n", image); err != nil {
				return errs.Wrap(err, "write qa output")
			}
			return nil
		}

		holder := "-"
		if img.AssignedTo != nil {
			holder = *img.AssignedTo
		}
		feedback := "-"
		if img.QAFeedback != nil {
			feedback = *img.QAFeedback
		}
		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"image=%s status=%s qa=%s assigned_to=%s flagged=%t feedback=%s\n",
			img.ImageID, img.Status, img.QAStatus, holder, img.Flagged, feedback,
		); err != nil {
			return errs.Wrap(err, "write qa output")
		}
		return nil
	}),
}

var qaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List images by QA status",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		status, _ := cmd.Flags().GetString("status")
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")

		items, err := svc.ListImagesByQAStatus(ctx, domain.QAStatus(strings.TrimSpace(status)), strings.TrimSpace(user), limit)
		if err != nil {
			return errs.Wrap(err, "list images by qa status")
		}

		for _, item := range items {
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"image=%s status=%s qa=%s labeled_by=%s flagged=%t\n",
				item.Image.ImageID, item.Image.Status, item.Image.QAStatus, item.LabeledBy, item.Image.Flagged,
			); err != nil {
				return errs.Wrap(err, "write qa output")
			}
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "total=%d\n", len(items)); err != nil {
			return errs.Wrap(err, "write qa output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(qaCmd)
	qaCmd.AddCommand(qaConfirmCmd)
	qaCmd.AddCommand(qaReviseCmd)
	qaCmd.AddCommand(qaResetCmd)
	qaCmd.AddCommand(qaShowCmd)
	qaCmd.AddCommand(qaListCmd)

	qaConfirmCmd.Flags().String("admin", "", "Admin username")
	qaConfirmCmd.Flags().String("image", "", "Image id")
	_ = qaConfirmCmd.MarkFlagRequired("admin")
	_ = qaConfirmCmd.MarkFlagRequired("image")

	qaReviseCmd.Flags().String("admin", "", "Admin username")
	qaReviseCmd.Flags().String("image", "", "Image id")
	qaReviseCmd.Flags().String("labeler", "", "Labeler to route the revision to (defaults to the label author)")
	qaReviseCmd.Flags().String("feedback", "", "Feedback for the labeler")
	_ = qaReviseCmd.MarkFlagRequired("admin")
	_ = qaReviseCmd.MarkFlagRequired("image")

	qaResetCmd.Flags().String("image", "", "Image id")
	_ = qaResetCmd.MarkFlagRequired("image")

	qaShowCmd.Flags().String("image", "", "Image id")
	_ = qaShowCmd.MarkFlagRequired("image")

	qaListCmd.Flags().String("status", "pending", "QA status (pending, review, confirmed)")
	qaListCmd.Flags().String("user", "", "Filter by assigned user")
	qaListCmd.Flags().Int("limit", 50, "Maximum rows")
}
