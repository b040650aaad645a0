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

// recountCmd rebuilds denormalized user counters from the label table.
var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Reconcile user counters against stored labels",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		user, _ := cmd.Flags().GetString("user")
		user = strings.TrimSpace(user)

		var (
			results []labeling.UserCounts
			err     error
		)
		if user == "" {
			results, err = svc.RecountAllUsers(ctx)
		} else {
			var counts labeling.UserCounts
			counts, err = svc.RecountUserCounters(ctx, user)
			results = []labeling.UserCounts{counts}
		}
		if err != nil {
			return errs.Wrap(err, "recount counters")
		}

		for _, c := range results {
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"user=%s processed=%d to_review=%d confirmed=%d\n",
				c.Username, c.Processed, c.ToReview, c.Confirmed,
			); err != nil {
				return errs.Wrap(err, "write recount output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(recountCmd)
	recountCmd.Flags().String("user", "", "Recount a single user (default: all users)")
}
