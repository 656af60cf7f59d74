package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/ratings"
	anthropicpkg "github.com/kerala-atlas/locality-cli/pkg/anthropic"
)

var ratingsForce bool

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Generate subjective 1-5 ratings per locality via Claude",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("ratings"); err != nil {
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

		ai := anthropicpkg.NewClient(cfg.Anthropic.Key)
		rater := ratings.New(ai, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)

		rated, err := rater.RateAll(ctx, localities, ratingsForce)
		if err != nil {
			return eris.Wrap(err, "rate localities")
		}

		if err := st.SaveLocalities(ctx, rated); err != nil {
			return eris.Wrap(err, "save localities")
		}

		zap.L().Info("ratings complete", zap.Int("localities", len(rated)))
		return nil
	},
}

func init() {
	ratingsCmd.Flags().BoolVar(&ratingsForce, "force", false, "re-rate localities that already have ratings")
	rootCmd.AddCommand(ratingsCmd)
}
