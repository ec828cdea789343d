package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stitch/internal/config"
	"stitch/internal/reports"
	"stitch/internal/services"
)

func newReportsCommand(ctx *commandContext) *cobra.Command {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect stored quality reports",
	}
	reportsCmd.AddCommand(newReportsListCommand(ctx))
	reportsCmd.AddCommand(newReportsShowCommand(ctx))
	return reportsCmd
}

func newReportsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReportStore(ctx, func(cfg *config.Config, store *reports.Store) error {
				records, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if records == nil {
					records = []reports.Record{}
				}
				format, _ := ctx.outputFormat()
				if ok, err := writeStructured(cmd, format, records); ok || err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No reports recorded")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						strconv.FormatInt(rec.ID, 10),
						rec.CreatedAt.Local().Format(time.DateTime),
						sourceLabel(rec),
						rec.MergeStrategy,
						strconv.Itoa(rec.SegmentCount),
						fmt.Sprintf("%.3f", rec.Score),
						yesNo(rec.Passed),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableView{
					Headers: []string{"ID", "Created", "Source", "Merge", "Segments", "Score", "Passed"},
					Rows:    rows,
					Numeric: []int{0, 4, 5},
					Caption: fmt.Sprintf("%s (threshold %.2f)", store.Path(), cfg.Quality.MinScore),
				}))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", reports.DefaultListLimit, "Maximum number of reports to list")
	return cmd
}

func newReportsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|run-id>",
		Short: "Show one stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReportStore(ctx, func(cfg *config.Config, store *reports.Store) error {
				key := strings.TrimSpace(args[0])
				var rec *reports.Record
				var err error
				if id, convErr := strconv.ParseInt(key, 10, 64); convErr == nil {
					rec, err = store.Get(cmd.Context(), id)
				} else {
					rec, err = store.GetByRunID(cmd.Context(), key)
				}
				if err != nil {
					return err
				}
				if rec == nil {
					return services.Wrap(services.ErrNotFound, "report", "show", fmt.Sprintf("no report %q", key), nil)
				}

				format, _ := ctx.outputFormat()
				if ok, err := writeStructured(cmd, format, rec); ok || err != nil {
					return err
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				lines := renderSectionHeader(fmt.Sprintf("Report #%d", rec.ID), colorize)
				lines = append(lines,
					renderStatusLine("Run", statusInfo, rec.RunID, colorize),
					renderStatusLine("Created", statusInfo, rec.CreatedAt.Local().Format(time.DateTime), colorize),
					renderStatusLine("Source", statusInfo, sourceLabel(*rec), colorize),
					renderStatusLine("Language", statusInfo, rec.Language, colorize),
					renderStatusLine("Duration", statusInfo, fmt.Sprintf("%.1fs", rec.Duration), colorize),
				)
				for _, out := range rec.Outputs {
					lines = append(lines, renderStatusLine("Output", statusInfo, out, colorize))
				}
				lines = append(lines, "")
				lines = append(lines, reportLines("Quality", rec.Report, cfg.Quality.MinScore, colorize)...)
				printLines(cmd.OutOrStdout(), lines)
				return nil
			})
		},
	}
}

func withReportStore(ctx *commandContext, fn func(*config.Config, *reports.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := ctx.openReports(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return services.Wrap(services.ErrConfiguration, "report", "open store", "report history is disabled (reports.enabled)", nil)
	}
	defer store.Close()
	return fn(cfg, store)
}

func sourceLabel(rec reports.Record) string {
	label := rec.Source
	if rec.Model != "" {
		label += "/" + rec.Model
	}
	if rec.SourcePath != "" {
		label += " " + rec.SourcePath
	}
	return label
}
