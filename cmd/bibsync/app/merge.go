package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bibsync/bibsync/internal/sources"
	"github.com/bibsync/bibsync/pkg/bibtex"
	"github.com/bibsync/bibsync/pkg/differ"
	"github.com/bibsync/bibsync/pkg/merge"
	"github.com/bibsync/bibsync/pkg/reconcile"
	"github.com/bibsync/bibsync/pkg/report"
	"github.com/bibsync/bibsync/pkg/save"
)

// newMergeCommand creates the merge command.
func (a *App) newMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <dst.bib> <main.bib> <update.bib>",
		Short: "Merge a regenerated bibliography into the curated one",
		Long: `Merge reads the curated document (main) and the regenerated document
(update), reconciles regenerated citation keys against curated ones by
URL, updates changed fields in place, inserts new entries near their
sorted position, and writes the merged document to dst atomically.

The change report, grouped by source venue, goes to standard output.`,
		Example: `  bibsync merge refs.bib refs.bib scraped.bib       # update in place
  bibsync merge out.bib refs.bib scraped.bib --dry-run
  bibsync merge out.bib refs.bib scraped.bib --report yaml`,
		// Argument count is validated in RunE: the historical CLI printed
		// usage and exited 0 on a wrong count, and --exit-zero-usage
		// keeps that behavior for callers that depend on it.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				if a.config.ExitZeroUsage {
					fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
					return nil
				}
				cmd.SilenceUsage = false
				return fmt.Errorf("accepts 3 args, received %d", len(args))
			}
			return a.runMerge(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], args[2])
		},
	}

	cmd.Flags().BoolVar(&a.config.DryRun, "dry-run", false, "compute the merge and report without writing dst")
	cmd.Flags().StringVar(&a.config.ReportFormat, "report", a.config.ReportFormat, "report format: markdown, yaml")
	cmd.Flags().BoolVar(&a.config.ExitZeroUsage, "exit-zero-usage", a.config.ExitZeroUsage, "exit 0 on wrong argument count (legacy behavior)")
	cmd.Flags().StringSliceVar(&a.config.IgnoreFields, "ignore-fields", a.config.IgnoreFields, "volatile fields whose changes alone never rewrite an entry")

	return cmd
}

// runMerge executes the full pipeline: parse, reconcile, merge, save,
// report.
func (a *App) runMerge(ctx context.Context, out io.Writer, dstPath, mainPath, updatePath string) error {
	mainDoc, err := sources.NewFile(mainPath).Document(ctx)
	if err != nil {
		return err
	}
	updateDoc, err := sources.NewFile(updatePath).Document(ctx)
	if err != nil {
		return err
	}

	mainKeyed := mainDoc.Keyed(false)
	updateKeyed := updateDoc.Keyed(true)

	updateKeyed = reconcile.FixDuplicateIDs(mainKeyed, updateKeyed)

	d := differ.New(differ.WithIgnoreFields(a.config.IgnoreFields...))
	blocks := merge.Merge(mainKeyed, updateKeyed, d)

	rendered := bibtex.Render(blocks)
	if !bibtex.BracesBalanced(rendered) {
		a.logger.Warn().Str("dst", dstPath).Msg("merged document has unbalanced braces")
	}

	if a.config.DryRun {
		a.logger.Info().Str("dst", dstPath).Msg("dry run, skipping write")
	} else {
		if err := save.File(dstPath, []byte(rendered)); err != nil {
			return err
		}
		a.logger.Info().Str("dst", dstPath).Int("blocks", len(blocks)).Msg("wrote merged document")
	}

	rep := report.FromBlocks(blocks)
	switch a.config.ReportFormat {
	case "yaml":
		return rep.YAML(out)
	default:
		return rep.Markdown(out)
	}
}
