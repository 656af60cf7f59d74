package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/prices"
	anthropicpkg "github.com/kerala-atlas/locality-cli/pkg/anthropic"
	"github.com/kerala-atlas/locality-cli/pkg/serper"
)

var pricesForce bool

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Estimate land and apartment prices per locality from web search",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("prices"); err != nil {
			return err
		}
		ctx := cmd.Context()

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

		search := serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
		ai := anthropicpkg.NewClient(cfg.Anthropic.Key)
		estimator := prices.New(search, ai, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Collect.City)

		priced, err := estimator.EstimateAll(ctx, localities, pricesForce)
		if err != nil {
			return eris.Wrap(err, "estimate prices")
		}

		if err := st.SaveLocalities(ctx, priced); err != nil {
			return eris.Wrap(err, "save localities")
		}

		zap.L().Info("prices complete", zap.Int("localities", len(priced)))
		return nil
	},
}

func init() {
	pricesCmd.Flags().BoolVar(&pricesForce, "force", false, "re-estimate localities that already have prices")
	rootCmd.AddCommand(pricesCmd)
}
