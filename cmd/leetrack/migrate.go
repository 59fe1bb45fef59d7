package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leetrack/leetrack-common/pkg/config"
	"github.com/leetrack/leetrack-common/pkg/repository"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var fromAirtable bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema, optionally copying the Airtable base into it",
		Long: `Create the problem tables in the configured SQL backend (postgres or sqlite).

With --from-airtable, every problem set and problem in the Airtable base named by
api_key and base_id is copied over, keeping record IDs. Running it again
overwrites the copied rows.

Examples:
  leetrack migrate --backend sqlite
  leetrack migrate --backend postgres --from-airtable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				importer, ok := a.repo.(repository.ProblemImporter)
				if !ok {
					return fmt.Errorf("migrate needs a postgres or sqlite backend, got %s", a.cfg.Backend)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s)\n", a.cfg.Backend)

				if !fromAirtable {
					return nil
				}

				creds := config.Credentials{APIKey: a.cfg.APIKey, BaseID: a.cfg.BaseID}
				if err := creds.Check(); err != nil {
					return err
				}

				src := repository.NewStoreProblemRepository(newAirtableClient(a.cfg, a.logger), a.logger)
				result, err := repository.CopyAll(ctx, src, importer, a.logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Copied %d problem sets and %d problems\n", result.Groups, result.Problems)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fromAirtable, "from-airtable", false, "copy the Airtable base into the database")

	return cmd
}
