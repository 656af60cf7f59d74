package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerala-atlas/locality-cli/internal/model"
)

func ptr[T any](v T) *T { return &v }

func testReport() *model.Report {
	return &model.Report{
		Methodology:     "weighted composite over normalized category scores",
		CategoryWeights: map[string]float64{"accessibility": 0.25, "safety": 0.15},
		AllRankings: []model.RankedLocality{
			{Name: "Kowdiar", Rank: 1, OverallScore: 8.73, Breakdown: map[string]float64{"accessibility": 9.1, "safety": 8.2}},
			{Name: "Pattom", Rank: 2, OverallScore: 7.41, Breakdown: map[string]float64{"accessibility": 7.8, "safety": 6.9}},
		},
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "pdf", testReport(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, testReport()))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "RANK")
	assert.Contains(t, lines[0], "accessibility")
	assert.Contains(t, lines[1], "Kowdiar")
	assert.Contains(t, lines[1], "8.73")
	assert.Contains(t, lines[2], "Pattom")
}

func TestJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, testReport()))

	var decoded model.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testReport().Methodology, decoded.Methodology)
	require.Len(t, decoded.AllRankings, 2)
	assert.Equal(t, "Kowdiar", decoded.AllRankings[0].Name)
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, testReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"rank", "locality", "overall_score", "accessibility", "safety"}, records[0])
	assert.Equal(t, []string{"1", "Kowdiar", "8.73", "9.1", "8.2"}, records[1])
	assert.Equal(t, "Pattom", records[2][1])
}

func TestXLSX_WritesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, testReport()))

	// ZIP container magic.
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
	assert.Greater(t, buf.Len(), 0)
}

func TestGeoJSON(t *testing.T) {
	localities := []model.LocalityRecord{
		{Name: "Kowdiar", Latitude: ptr(8.5241), Longitude: ptr(76.9366)},
		{Name: "Pattom"}, // no coordinates, skipped
	}

	var buf bytes.Buffer
	require.NoError(t, GeoJSON(&buf, testReport(), localities))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
	assert.Equal(t, []float64{76.9366, 8.5241}, fc.Features[0].Geometry.Coordinates)
	assert.Equal(t, "Kowdiar", fc.Features[0].Properties["name"])
	assert.InDelta(t, 8.73, fc.Features[0].Properties["overall_score"].(float64), 1e-9)
}

func TestFormats_CoveredByWrite(t *testing.T) {
	report := testReport()
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, format, report, nil)
			require.NoError(t, err)
		})
	}
}
