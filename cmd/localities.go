package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var localitiesJSON bool

var localitiesCmd = &cobra.Command{
	Use:   "localities",
	Short: "List locality records in the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("rank"); err != nil {
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
			fmt.Fprintln(os.Stderr, "No localities found.")
			return nil
		}

		if localitiesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(localities)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tLAT\tLNG\tAMENITY TYPES\tRATED\tPRICED")
		for _, rec := range localities {
			lat, lng := "-", "-"
			if rec.HasCoordinates() {
				lat = fmt.Sprintf("%.4f", *rec.Latitude)
				lng = fmt.Sprintf("%.4f", *rec.Longitude)
			}
			priced := rec.Price.LandPerCent != nil || rec.Price.ApartmentSqft != nil
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%v\t%v\n",
				rec.Name, rec.Status, lat, lng,
				len(rec.AmenityCounts), len(rec.Subjective) > 0, priced,
			)
		}
		return w.Flush()
	},
}

func init() {
	localitiesCmd.Flags().BoolVar(&localitiesJSON, "json", false, "output full records as JSON")
	rootCmd.AddCommand(localitiesCmd)
}
