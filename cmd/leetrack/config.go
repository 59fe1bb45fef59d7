package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leetrack/leetrack-common/pkg/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change saved preferences",
	}

	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigSetCmd(opts))

	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (access key masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd, opts.verbose)
			cfg, err := config.NewLoader(opts.configPath, logger).LoadUnvalidated()
			if err != nil {
				return err
			}
			if opts.backend != "" {
				cfg.Backend = config.Backend(opts.backend)
			}

			shown := *cfg
			shown.APIKey = config.Credentials{APIKey: cfg.APIKey}.Redacted()

			data, err := yaml.Marshal(&shown)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", opts.configPath, data)

			if err := config.NewValidator().Validate(cfg); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "# not usable yet:", err)
			}
			return nil
		},
	}
}

func newConfigSetCmd(opts *rootOptions) *cobra.Command {
	var (
		apiKey string
		baseID string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save credentials and backend to the preferences file",
		Long: `Save credentials and backend to the preferences file. Values already in the
environment or a .env file are written too, so the file is self-contained.

Examples:
  leetrack config set --api-key pat123 --base-id app456
  leetrack config set --backend sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd, opts.verbose)
			loader := config.NewLoader(opts.configPath, logger)

			cfg, err := loader.LoadUnvalidated()
			if err != nil {
				return err
			}
			if apiKey != "" {
				cfg.APIKey = apiKey
			}
			if baseID != "" {
				cfg.BaseID = baseID
			}
			if opts.backend != "" {
				cfg.Backend = config.Backend(opts.backend)
			}

			if err := loader.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", opts.configPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Airtable personal access token")
	cmd.Flags().StringVar(&baseID, "base-id", "", "Airtable base ID")

	return cmd
}
