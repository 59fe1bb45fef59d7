package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leetrack/leetrack-common/pkg/domain"
)

func newPickCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick a problem to practice",
	}

	cmd.AddCommand(newPickWeakCmd(opts))
	cmd.AddCommand(newPickTagCmd(opts))
	cmd.AddCommand(newPickIceboxCmd(opts))

	return cmd
}

func newPickWeakCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "weak <comfort>",
		Short: "Pick a problem rated exactly <comfort>, never practiced first, then oldest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comfort, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("comfort must be a number from 0 to 5: %w", err)
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.svc.PickWeak(ctx, domain.Comfort(comfort))
				if err != nil {
					return err
				}
				printPick(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
}

func newPickTagCmd(opts *rootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "tag <tag>",
		Short: "Pick a problem carrying <tag>",
		Long: `Pick a problem carrying <tag>.

Modes:
  weakest  random among the lowest-comfort problems (default)
  drill    random among problems not practiced within the drill window
  random   random among all problems with the tag

Examples:
  leetrack pick tag Trees
  leetrack pick tag "Sliding Window" --mode drill`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pickMode, ok := domain.ParsePickMode(mode)
			if !ok {
				return fmt.Errorf("unknown mode %q (want weakest, drill or random)", mode)
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.svc.PickByTag(ctx, domain.Tag(args[0]), pickMode)
				if err != nil {
					return err
				}
				printPick(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(domain.PickModeWeakest), "weakest, drill or random")

	return cmd
}

func newPickIceboxCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "icebox",
		Short: "Pick a random problem from the icebox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.svc.PickIcebox(ctx)
				if err != nil {
					return err
				}
				printPick(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
}

func printPick(w io.Writer, p *domain.Problem) {
	fmt.Fprintln(w, p.Name)
	if p.ProblemLink != "" {
		fmt.Fprintln(w, p.ProblemLink)
	}
}
