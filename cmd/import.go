package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importFilePath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import locality records from a JSON file into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("rank"); err != nil {
			return err
		}
		ctx := cmd.Context()

		localities, err := readLocalityFile(importFilePath)
		if err != nil {
			return err
		}
		if len(localities) == 0 {
			return eris.Errorf("no localities in %s", importFilePath)
		}
		for i := range localities {
			if localities[i].Name == "" {
				return eris.Errorf("record %d has no name", i)
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.SaveLocalities(ctx, localities); err != nil {
			return eris.Wrap(err, "save localities")
		}

		zap.L().Info("import complete",
			zap.Int("localities", len(localities)),
			zap.String("file", importFilePath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to JSON file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
