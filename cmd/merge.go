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

// mergeLabelsCmd folds one account's labels into another.
var mergeLabelsCmd = &cobra.Command{
	Use:   "merge-labels",
	Short: "Reassign one user's labels to another account",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		preserve, _ := cmd.Flags().GetBool("preserve-original")

		moved, err := svc.MergeLabels(ctx, strings.TrimSpace(from), strings.TrimSpace(to), preserve)
		if err != nil {
			return errs.Wrap(err, "merge labels")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "merged from=%s to=%s moved=%d\n", from, to, moved); err != nil {
			return errs.Wrap(err, "write merge output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(mergeLabelsCmd)

	mergeLabelsCmd.Flags().String("from", "", "Source username")
	mergeLabelsCmd.Flags().String("to", "", "Target username")
	mergeLabelsCmd.Flags().Bool("preserve-original", false, "Record the source username on each moved label")
	_ = mergeLabelsCmd.MarkFlagRequired("from")
	_ = mergeLabelsCmd.MarkFlagRequired("to")
}
