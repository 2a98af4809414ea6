package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/binstall/internal/config"
	"github.com/quantmind-br/binstall/internal/core"
	"github.com/quantmind-br/binstall/internal/heuristics"
	"github.com/quantmind-br/binstall/internal/security"
	"github.com/quantmind-br/binstall/internal/ui"
)

// NewCandidatesCmd creates the candidates command
func NewCandidatesCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	var (
		noCache bool
		showAll bool
	)

	cmd := &cobra.Command{
		Use:   "candidates <term>",
		Short: "Show how the latest release's assets rank for this machine",
		Long: `Resolve a search term like "binstall -i" does and print the assets of the
latest release ranked by platform score, without downloading anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if err := security.ValidateSearchQuery(query); err != nil {
				return fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout(cfg, 0))
			defer cancel()

			svc, err := newServices(ctx, cfg, log, version, noCache)
			if err != nil {
				return err
			}
			defer svc.Close()

			resolved, err := svc.resolver.Resolve(ctx, query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.PrintKeyValue(out, "Repository", resolved.Repository.FullName)
			ui.PrintKeyValue(out, "Release", resolved.Release.TagName)

			rows := rankRows(svc.scorer, resolved.Release.Assets, showAll)
			if len(rows) == 0 || !rows[0].selected {
				ui.PrintWarning(cmd.ErrOrStderr(), "no asset of %s matches this platform", resolved.Release.TagName)
				return core.WrapStage(core.StageSelect,
					fmt.Errorf("%w (%d candidates considered)", core.ErrNoEligibleAsset, len(resolved.Release.Assets)))
			}

			printCandidateTable(out, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not use the release metadata cache")
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "also list assets that score zero")

	return cmd
}

type candidateRow struct {
	asset    core.ScoredAsset
	selected bool
}

// rankRows orders assets the way the installer would pick them. The first
// row is the asset an install would use.
func rankRows(scorer *heuristics.DefaultScorer, assets []core.Asset, showAll bool) []candidateRow {
	ranked := scorer.Rank(assets)

	rows := make([]candidateRow, 0, len(assets))
	for i, a := range ranked {
		rows = append(rows, candidateRow{asset: a, selected: i == 0})
	}

	if showAll {
		for _, a := range assets {
			if scorer.Score(a) == 0 {
				rows = append(rows, candidateRow{asset: core.ScoredAsset{Asset: a}})
			}
		}
	}

	return rows
}

func printCandidateTable(w io.Writer, rows []candidateRow) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"", "Asset", "Score", "Type", "Size"}),
		tablewriter.WithAlignment(tw.MakeAlign(5, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)

	for _, row := range rows {
		marker := ""
		if row.selected {
			marker = ui.Arrow
		}
		size := "-"
		if row.asset.Size > 0 {
			size = humanize.Bytes(uint64(row.asset.Size))
		}
		table.Append(
			marker,
			row.asset.Name,
			ui.ColorizeScore(row.asset.Score),
			row.asset.ContentType,
			size,
		)
	}

	table.Render()
}
