package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/dedup"
	"github.com/kerala-atlas/locality-cli/internal/export"
	"github.com/kerala-atlas/locality-cli/internal/model"
	"github.com/kerala-atlas/locality-cli/internal/scoring"
	"github.com/kerala-atlas/locality-cli/internal/store"
)

var (
	rankPreset     string
	rankPresetFile string
	rankFormat     string
	rankOutput     string
	rankTop        int
	rankSave       bool
	rankInput      string
	rankSkipDedup  bool
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score and rank localities under a preset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		preset, err := resolvePreset(rankPreset, rankPresetFile)
		if err != nil {
			return err
		}
		engine, err := scoring.New(preset)
		if err != nil {
			return eris.Wrap(err, "build scoring engine")
		}

		var localities []model.LocalityRecord
		var st store.Store
		if rankInput != "" {
			if rankSave {
				return eris.New("--save requires ranking from the store, not --input")
			}
			localities, err = readLocalityFile(rankInput)
			if err != nil {
				return err
			}
		} else {
			if err := cfg.Validate("rank"); err != nil {
				return err
			}
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			localities, err = st.ListLocalities(ctx)
			if err != nil {
				return eris.Wrap(err, "list localities")
			}
		}
		if len(localities) == 0 {
			return eris.New("no localities to rank")
		}

		if !rankSkipDedup {
			var stats *dedup.Stats
			localities, stats = dedup.Deduplicate(localities)
			zap.L().Debug("pre-rank dedupe",
				zap.Int("duplicates_found", stats.DuplicatesFound),
				zap.Int("removed", stats.Removed),
			)
		}

		report, err := engine.Rank(localities)
		if err != nil {
			return eris.Wrap(err, "rank localities")
		}

		if rankSave {
			id, err := st.SaveReport(ctx, preset.Name, report)
			if err != nil {
				return eris.Wrap(err, "save report")
			}
			zap.L().Info("report saved", zap.String("id", id), zap.String("preset", preset.Name))
		}

		// Truncate after the full report is persisted.
		if rankTop > 0 && rankTop < len(report.AllRankings) {
			report.AllRankings = report.AllRankings[:rankTop]
		}

		var out io.Writer = os.Stdout
		if rankOutput != "" {
			f, err := os.Create(rankOutput)
			if err != nil {
				return eris.Wrapf(err, "create %s", rankOutput)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		return export.Write(out, rankFormat, report, localities)
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankPreset, "preset", "", "scoring preset: objective, clean, or pillar (default from config)")
	rankCmd.Flags().StringVar(&rankPresetFile, "preset-file", "", "YAML preset file overriding the named preset")
	rankCmd.Flags().StringVar(&rankFormat, "format", "table", "output format: table, json, csv, xlsx, geojson")
	rankCmd.Flags().StringVar(&rankOutput, "output", "", "output file (default stdout)")
	rankCmd.Flags().IntVar(&rankTop, "top", 0, "limit output to the top N localities")
	rankCmd.Flags().BoolVar(&rankSave, "save", false, "persist the report to the store")
	rankCmd.Flags().StringVar(&rankInput, "input", "", "rank a JSON file of localities instead of the store")
	rankCmd.Flags().BoolVar(&rankSkipDedup, "skip-dedupe", false, "rank without deduplicating amenities first")
	rootCmd.AddCommand(rankCmd)
}
