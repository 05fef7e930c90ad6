package database

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/school-issues/cmd/cli/config"
	"github.com/crucial707/school-issues/cmd/cli/root"
)

func init() {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the credential database",
	}

	dbCmd.AddCommand(initCmd())
	root.GetRoot().AddCommand(dbCmd)
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the users table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			_, closeDB, err := config.OpenUserRepo(ctx)
			if err != nil {
				return err
			}
			closeDB()
			fmt.Fprintln(cmd.OutOrStdout(), "Credential store is ready.")
			return nil
		},
	}
}
