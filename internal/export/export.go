// Package export renders ranking reports in the formats the rank
// command supports: table, json, csv, xlsx, and geojson.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/kerala-atlas/locality-cli/internal/model"
)

// Formats lists the supported output format names.
var Formats = []string{"table", "json", "csv", "xlsx", "geojson"}

// Write renders the report in the given format. GeoJSON additionally
// needs the locality records for their coordinates; other formats
// ignore them.
func Write(w io.Writer, format string, report *model.Report, localities []model.LocalityRecord) error {
	switch format {
	case "table":
		return Table(w, report)
	case "json":
		return JSON(w, report)
	case "csv":
		return CSV(w, report)
	case "xlsx":
		return XLSX(w, report)
	case "geojson":
		return GeoJSON(w, report, localities)
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}

// categories returns the report's category names in a stable order.
func categories(report *model.Report) []string {
	names := make([]string, 0, len(report.CategoryWeights))
	for name := range report.CategoryWeights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table writes an aligned text table of all rankings.
func Table(w io.Writer, report *model.Report) error {
	cats := categories(report)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "RANK\tLOCALITY\tSCORE"
	for _, c := range cats {
		header += "\t" + c
	}
	fmt.Fprintln(tw, header)

	for _, r := range report.AllRankings {
		row := fmt.Sprintf("%d\t%s\t%.2f", r.Rank, r.Name, r.OverallScore)
		for _, c := range cats {
			row += fmt.Sprintf("\t%.1f", r.Breakdown[c])
		}
		fmt.Fprintln(tw, row)
	}
	return eris.Wrap(tw.Flush(), "export: flush table")
}

// JSON writes the full report with indentation.
func JSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(report), "export: encode json")
}

// CSV writes one row per ranked locality with per-category columns.
func CSV(w io.Writer, report *model.Report) error {
	cats := categories(report)

	cw := csv.NewWriter(w)
	header := append([]string{"rank", "locality", "overall_score"}, cats...)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	for _, r := range report.AllRankings {
		row := []string{
			strconv.Itoa(r.Rank),
			r.Name,
			strconv.FormatFloat(r.OverallScore, 'f', 2, 64),
		}
		for _, c := range cats {
			row = append(row, strconv.FormatFloat(r.Breakdown[c], 'f', 1, 64))
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "export: write csv row %d", r.Rank)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// XLSX writes a workbook with a rankings sheet and a weights sheet.
func XLSX(w io.Writer, report *model.Report) error {
	cats := categories(report)

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Rankings")
	if err != nil {
		return eris.Wrap(err, "export: add rankings sheet")
	}

	header := sheet.AddRow()
	for _, h := range append([]string{"Rank", "Locality", "Overall"}, cats...) {
		header.AddCell().SetString(h)
	}
	for _, r := range report.AllRankings {
		row := sheet.AddRow()
		row.AddCell().SetInt(r.Rank)
		row.AddCell().SetString(r.Name)
		row.AddCell().SetFloat(r.OverallScore)
		for _, c := range cats {
			row.AddCell().SetFloat(r.Breakdown[c])
		}
	}

	weights, err := file.AddSheet("Weights")
	if err != nil {
		return eris.Wrap(err, "export: add weights sheet")
	}
	wh := weights.AddRow()
	wh.AddCell().SetString("Category")
	wh.AddCell().SetString("Weight")
	for _, c := range cats {
		row := weights.AddRow()
		row.AddCell().SetString(c)
		row.AddCell().SetFloat(report.CategoryWeights[c])
	}

	return eris.Wrap(file.Write(w), "export: write xlsx")
}

// GeoJSON writes a FeatureCollection of locality points carrying rank,
// overall score, and the category breakdown as properties. Localities
// without coordinates are skipped.
func GeoJSON(w io.Writer, report *model.Report, localities []model.LocalityRecord) error {
	coords := make(map[string]*model.LocalityRecord, len(localities))
	for i := range localities {
		coords[localities[i].Name] = &localities[i]
	}

	fc := &geojson.FeatureCollection{}
	for _, r := range report.AllRankings {
		rec, ok := coords[r.Name]
		if !ok || !rec.HasCoordinates() {
			continue
		}

		props := map[string]any{
			"name":          r.Name,
			"rank":          r.Rank,
			"overall_score": r.OverallScore,
		}
		for cat, score := range r.Breakdown {
			props[cat] = score
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         r.Name,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{*rec.Longitude, *rec.Latitude}),
			Properties: props,
		})
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	_, err = w.Write(data)
	return eris.Wrap(err, "export: write geojson")
}
