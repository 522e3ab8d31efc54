package cli

import (
	"fmt"

	"github.com/sitecms/internal/db"
	"github.com/sitecms/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCreateAdminCommand(a *app) *cobra.Command {
	var username, email, password, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a user or reset an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.Migrate(a.gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			users := service.NewUserService(a.gdb)
			user, created, err := users.Upsert(cmd.Context(), username, email, password, role)
			if err != nil {
				return err
			}

			a.logger.Info("user saved", zap.String("username", user.Username), zap.Bool("created", created))
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "用户 %s 创建成功 (角色: %s)\n", user.Username, user.Role)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "用户 %s 已重置 (角色: %s)\n", user.Username, user.Role)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address, defaults to <username>@localhost")
	cmd.Flags().StringVar(&password, "password", "", "plain text password")
	cmd.Flags().StringVar(&role, "role", db.RoleAdmin, "admin or editor")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
