package main

import (
	"fmt"
	"io"
	"strings"

	"docmatch/internal/matching"
	"docmatch/internal/report"
	"docmatch/internal/repository"
	"docmatch/internal/server"
	"docmatch/internal/service"
	"docmatch/internal/similarity"
	"docmatch/internal/source"
	"docmatch/internal/source/filesystem"

	"github.com/spf13/cobra"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <first> <second>",
		Short: "Report documents in <first> that likely duplicate one in <second>",
		Long: `Scores every document of the first collection against every document of
the second by filename, size and extracted text, and prints each pair whose
best score reaches the threshold.

Collections are directories for the filesystem source and bucket prefixes
for the storage source.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runMatch(cmd, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.Float64P("threshold", "t", matching.DefaultThreshold, "Minimum score for a pair to be reported (0-1)")
	flags.StringP("source", "s", filesystem.Name, "Document source: filesystem or storage")
	flags.Bool("no-content", false, "Compare names and sizes only, skip text extraction")
	flags.IntP("workers", "w", 1, "Parallel workers scanning the first collection")
	flags.Int("concurrency", source.DefaultConcurrency, "Concurrent text extractions")
	flags.Int("max-text-len", similarity.DefaultMaxTextLen, "Characters of text compared per document")
	flags.StringP("format", "f", "text", "Output format: text or table")
	flags.StringSlice("ext", []string{".pdf"}, "Document extensions to include")

	for _, name := range []string{"threshold", "source", "no-content", "workers", "concurrency", "max-text-len", "format", "ext"} {
		_ = ctx.v.BindPFlag(flagKey(name), flags.Lookup(name))
	}

	return cmd
}

func (c *commandContext) runMatch(cmd *cobra.Command, first, second string) error {
	format := c.v.GetString("format")
	if format != "text" && format != "table" {
		return fmt.Errorf("unsupported format %q (want text or table)", format)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if c.v.GetString("log_level") == "" {
		cfg.Logger.Level = "warn"
	}
	cfg.Matching.MaxTextLen = c.v.GetInt("max_text_len")
	cfg.Matching.Workers = c.v.GetInt("workers")
	cfg.Matching.ExtractConcurrency = c.v.GetInt("concurrency")
	cfg.Matching.Extensions = c.v.GetStringSlice("ext")
	if err := cfg.Validate(); err != nil {
		return err
	}
	initLogger(cfg)

	registry := server.NewSourceRegistry(cmd.Context(), cfg)
	svc := service.NewMatchService(registry, nil, service.MatchOptionsFromConfig(cfg.Matching, filesystem.Name))

	threshold := c.v.GetFloat64("threshold")
	run, err := svc.Run(cmd.Context(), service.MatchRequest{
		Source:      c.v.GetString("source"),
		First:       first,
		Second:      second,
		Threshold:   &threshold,
		SkipContent: c.v.GetBool("no_content"),
	})
	if err != nil {
		return err
	}

	return writeRun(cmd.OutOrStdout(), run, format)
}

func writeRun(w io.Writer, run *repository.MatchRun, format string) error {
	if format == "table" {
		report.WriteTable(w, run.Results)
		return nil
	}
	if run.Report == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, run.Report)
	return err
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
