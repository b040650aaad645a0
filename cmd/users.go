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

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Account management",
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create or update an account",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		if err := svc.ProvisionUser(ctx, strings.TrimSpace(name), password, domain.Role(role)); err != nil {
			return errs.Wrap(err, "provision user")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "user provisioned name=%s role=%s\n", name, role); err != nil {
			return errs.Wrap(err, "write users output")
		}
		return nil
	}),
}

var usersEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable an account",
	RunE:  setEnabledRunE(true),
}

var usersDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable an account",
	RunE:  setEnabledRunE(false),
}

func setEnabledRunE(enabled bool) func(cmd *cobra.Command, args []string) error {
	return withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		name, _ := cmd.Flags().GetString("name")
		if err := svc.SetUserEnabled(ctx, strings.TrimSpace(name), enabled); err != nil {
			return errs.Wrap(err, "set user enabled")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "user=%s enabled=%t\n", name, enabled); err != nil {
			return errs.Wrap(err, "write users output")
		}
		return nil
	})
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with their progress counters",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *labeling.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		users, err := svc.ListUsers(ctx)
		if err != nil {
			return errs.Wrap(err, "list users")
		}

		for _, u := range users {
			property := "-"
			if u.CurrentPropertyID != nil {
				property = *u.CurrentPropertyID
			}
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"user=%s role=%s enabled=%t processed=%d to_review=%d confirmed=%d property=%s\n",
				u.Username, u.Role, u.Enabled, u.ImagesProcessed, u.ImagesToReview, u.ImagesConfirmed, property,
			); err != nil {
				return errs.Wrap(err, "write users output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersEnableCmd)
	usersCmd.AddCommand(usersDisableCmd)
	usersCmd.AddCommand(usersListCmd)

	usersAddCmd.Flags().String("name", "", "Username")
	usersAddCmd.Flags().String("password", "", "Password")
	usersAddCmd.Flags().String("role", string(domain.RoleLabeler), "Role (labeler, reviewer, admin)")
	_ = usersAddCmd.MarkFlagRequired("name")
	_ = usersAddCmd.MarkFlagRequired("password")

	usersEnableCmd.Flags().String("name", "", "Username")
	_ = usersEnableCmd.MarkFlagRequired("name")

	usersDisableCmd.Flags().String("name", "", "Username")
	_ = usersDisableCmd.MarkFlagRequired("name")
}
