package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leetrack/leetrack-common/pkg/common"
	"github.com/leetrack/leetrack-common/pkg/domain"
	"github.com/leetrack/leetrack-common/pkg/service"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every tracked problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				problems, err := a.svc.ListProblems(ctx, refresh)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), problems)
				}
				return writeProblemTable(cmd.OutOrStdout(), problems)
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch from the store even if the snapshot is fresh")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")

	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var req service.TrackRequest

	cmd := &cobra.Command{
		Use:   "add <problem-url>",
		Short: "Track the problem behind a LeetCode URL",
		Long: `Track the problem behind a LeetCode URL. The name is derived from the URL slug;
if a problem with that name already exists it is returned unchanged.

Examples:
  leetrack add https://leetcode.com/problems/two-sum/ --difficulty Easy --tag "Arrays & Hashing"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.URL = args[0]
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.svc.TrackProblem(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Difficulty, "difficulty", "", "difficulty shown on the page (Easy, Medium, Hard)")
	cmd.Flags().StringSliceVarP(&req.Tags, "tag", "t", nil, "topic tag shown on the page (repeatable)")
	cmd.Flags().StringSliceVar(&req.GroupIDs, "group", nil, "problem set record ID (repeatable)")

	return cmd
}

func newRateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <name|url> <comfort>",
		Short: "Record a practice session with a comfort rating from 0 to 5",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comfort, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("comfort must be a number from 0 to 5: %w", err)
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.svc.Lookup(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.svc.Rate(ctx, p.ID, domain.Comfort(comfort)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rated %s %d\n", p.Name, comfort)
				return nil
			})
		},
	}
}

func newIceboxCmd(opts *rootOptions) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "icebox <name|url>",
		Short: "Move a problem into the icebox (or out with --off)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.svc.Lookup(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.svc.SetIcebox(ctx, p.ID, !off); err != nil {
					return err
				}
				state := "Iceboxed"
				if off {
					state = "Thawed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, p.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "take the problem out of the icebox")

	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show comfort and difficulty distributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				stats, err := a.svc.Stats(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), stats)
				}
				return writeStats(cmd.OutOrStdout(), stats)
			})
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeProblemTable(w io.Writer, problems []*domain.Problem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIFFICULTY\tCOMFORT\tLAST PRACTICED\tTAGS\tICEBOX")
	for _, p := range problems {
		last := "never"
		if p.LastPracticed != nil {
			last = common.FormatDate(*p.LastPracticed)
		}
		tags := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = string(t)
		}
		icebox := ""
		if p.Icebox {
			icebox = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", p.Name, p.Difficulty, p.Comfort, last, strings.Join(tags, ", "), icebox)
	}
	return tw.Flush()
}

func writeStats(w io.Writer, stats *service.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total:\t%d\n", stats.Total)
	fmt.Fprintf(tw, "Never practiced:\t%d\n", stats.NeverPracticed)
	fmt.Fprintf(tw, "Due for drill:\t%d\n", stats.DueForDrill)
	fmt.Fprintf(tw, "Icebox:\t%d\n", stats.Icebox)

	fmt.Fprintln(tw, "\nComfort:")
	for c, n := range stats.ByComfort {
		fmt.Fprintf(tw, "  %d\t%d\n", c, n)
	}

	fmt.Fprintln(tw, "\nDifficulty:")
	for _, d := range domain.Difficulties {
		fmt.Fprintf(tw, "  %s\t%d\n", d, stats.ByDifficulty[string(d)])
	}
	if n := stats.ByDifficulty["Unknown"]; n > 0 {
		fmt.Fprintf(tw, "  Unknown\t%d\n", n)
	}
	return tw.Flush()
}
