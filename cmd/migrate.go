package cmd

import (
	"fmt"

	"github.com/jmehdipour/enroll-gateway/internal/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the enrolled_users table for the configured SQL store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if cfg.Store.Driver == config.DriverFile {
			fmt.Fprintln(cmd.OutOrStdout(), ">> file store needs no migration")
			return nil
		}

		st, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer func() { _ = st.close() }()

		if err := st.migrate(cmd.Context()); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), ">> Migration complete (%s)\n", cfg.Store.Driver)
		return nil
	},
}
