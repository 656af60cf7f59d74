package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/collect"
	"github.com/kerala-atlas/locality-cli/internal/model"
	"github.com/kerala-atlas/locality-cli/pkg/google"
)

var collectInput string

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect travel times, amenities, and derived scores per locality",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("collect"); err != nil {
			return err
		}

		ctx := cmd.Context()
		if cfg.Collect.TimeoutSecs > 0 {
			var cancel func()
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Collect.TimeoutSecs)*time.Second)
			defer cancel()
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var localities []model.LocalityRecord
		if collectInput != "" {
			localities, err = readLocalityFile(collectInput)
		} else {
			localities, err = st.ListLocalities(ctx)
		}
		if err != nil {
			return eris.Wrap(err, "load localities")
		}
		if len(localities) == 0 {
			return eris.New("no localities to collect; seed the store with import or pass --input")
		}

		maps := google.NewClient(cfg.Google.Key, google.WithQPS(cfg.Google.QPS))
		collector := collect.New(maps, collect.Config{
			MaxConcurrent: cfg.Collect.MaxConcurrent,
			KeepPlaces:    cfg.Collect.KeepPlaces,
		})

		collected := collector.CollectAll(ctx, localities)

		if err := st.SaveLocalities(ctx, collected); err != nil {
			return eris.Wrap(err, "save localities")
		}

		zap.L().Info("collect complete", zap.Int("localities", len(collected)))
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectInput, "input", "", "JSON file of seed localities (default: records already in the store)")
	rootCmd.AddCommand(collectCmd)
}
