package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/dedup"
)

var (
	dedupeInput  string
	dedupeOutput string
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Assign shared amenity places to their nearest locality",
	Long:  "Removes double-counted amenities: each place id is owned by the locality whose center is nearest, and counts are recomputed from the kept entries. Works file to file with --input/--output, or against the store by default.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		// File mode needs no store.
		if dedupeInput != "" {
			localities, err := readLocalityFile(dedupeInput)
			if err != nil {
				return err
			}
			deduped, stats := dedup.Deduplicate(localities)
			logDedupStats(stats)

			if dedupeOutput != "" {
				return writeLocalityFile(dedupeOutput, deduped)
			}
			return writeLocalityFile(dedupeInput, deduped)
		}

		if err := cfg.Validate("rank"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		localities, err := st.ListLocalities(ctx)
		if err != nil {
			return eris.Wrap(err, "list localities")
		}
		if len(localities) == 0 {
			return eris.New("no localities in store; run collect first")
		}

		deduped, stats := dedup.Deduplicate(localities)
		logDedupStats(stats)

		return eris.Wrap(st.SaveLocalities(ctx, deduped), "save localities")
	},
}

func logDedupStats(stats *dedup.Stats) {
	zap.L().Info("dedupe complete",
		zap.Int("unique_places", stats.UniquePlaces),
		zap.Int("duplicates_found", stats.DuplicatesFound),
		zap.Int("removed", stats.Removed),
	)
}

func init() {
	dedupeCmd.Flags().StringVar(&dedupeInput, "input", "", "JSON file of localities (default: the store)")
	dedupeCmd.Flags().StringVar(&dedupeOutput, "output", "", "output JSON file (default: overwrite --input)")
	rootCmd.AddCommand(dedupeCmd)
}
