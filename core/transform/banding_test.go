package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

func writeBandingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "continuous-banding.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const drivAgeBanding = `{
  "DrivAge": {
    "column_name": "DrivAgeBand",
    "bands": [
      {"min": 0, "max": 25, "label": "Under 25"},
      {"min": 25, "max": 40, "label": "25-39"},
      {"min": 40, "max": 60, "label": "40-59"},
      {"min": 60, "max": 120, "label": "60+"}
    ]
  }
}`

func TestBandingBoundaryBelongsToUpperBand(t *testing.T) {
	cfg, err := LoadBandingConfig(writeBandingFile(t, drivAgeBanding))
	require.NoError(t, err)

	// an internal boundary value lands in the band it is the lower bound of
	record := types.Record{"DrivAge": float64(25)}
	require.NoError(t, cfg.applyBanding(record))
	assert.Equal(t, "25-39", record["DrivAgeBand"])
}

func TestBandingCoversDomain(t *testing.T) {
	cfg, err := LoadBandingConfig(writeBandingFile(t, drivAgeBanding))
	require.NoError(t, err)

	want := map[float64]string{
		0: "Under 25", 24: "Under 25", 24.9: "Under 25",
		25: "25-39", 39: "25-39",
		40: "40-59", 59.5: "40-59",
		60: "60+", 119: "60+",
	}
	for value, label := range want {
		record := types.Record{"DrivAge": value}
		require.NoError(t, cfg.applyBanding(record), "DrivAge=%v", value)
		assert.Equal(t, label, record["DrivAgeBand"], "DrivAge=%v", value)
	}
}

func TestBandingValueOutsideAllBands(t *testing.T) {
	cfg, err := LoadBandingConfig(writeBandingFile(t, drivAgeBanding))
	require.NoError(t, err)

	record := types.Record{"DrivAge": float64(150)}
	err = cfg.applyBanding(record)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindBanding))

	e := errors.AsError(err)
	assert.Equal(t, "DrivAge", e.Context["field"])
}

func TestBandingDefaultOutputColumn(t *testing.T) {
	cfg, err := LoadBandingConfig(writeBandingFile(t, `{
	  "Density": {"bands": [{"min": 0, "max": 1000, "label": "Low"}]}
	}`))
	require.NoError(t, err)

	record := types.Record{"Density": float64(800)}
	require.NoError(t, cfg.applyBanding(record))
	assert.Equal(t, "Low", record["DensityBand"])
}

func TestBandingSkipsAbsentField(t *testing.T) {
	cfg, err := LoadBandingConfig(writeBandingFile(t, drivAgeBanding))
	require.NoError(t, err)

	record := types.Record{"VehAge": float64(2)}
	require.NoError(t, cfg.applyBanding(record))
	assert.NotContains(t, record, "DrivAgeBand")
}

func TestBandingRejectsOverlapAtLoad(t *testing.T) {
	_, err := LoadBandingConfig(writeBandingFile(t, `{
	  "DrivAge": {"bands": [
	    {"min": 0, "max": 30, "label": "a"},
	    {"min": 25, "max": 60, "label": "b"}
	  ]}
	}`))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfig))
}

func TestBandingRejectsGapAtLoad(t *testing.T) {
	_, err := LoadBandingConfig(writeBandingFile(t, `{
	  "DrivAge": {"bands": [
	    {"min": 0, "max": 25, "label": "a"},
	    {"min": 30, "max": 60, "label": "b"}
	  ]}
	}`))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfig))
}

func TestBandingRejectsInvertedBand(t *testing.T) {
	_, err := LoadBandingConfig(writeBandingFile(t, `{
	  "DrivAge": {"bands": [{"min": 40, "max": 25, "label": "a"}]}
	}`))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfig))
}

func TestBandingInclusiveUpperBound(t *testing.T) {
	cfg, err := LoadBandingConfig(writeBandingFile(t, `{
	  "BonusMalus": {
	    "min_inclusive": false,
	    "max_exclusive": false,
	    "bands": [
	      {"min": 0, "max": 100, "label": "bonus"},
	      {"min": 100, "max": 350, "label": "malus"}
	    ]
	  }
	}`))
	require.NoError(t, err)

	record := types.Record{"BonusMalus": float64(100)}
	require.NoError(t, cfg.applyBanding(record))
	// first matching band wins for the shared bound under closed intervals
	assert.Equal(t, "bonus", record["BonusMalusBand"])
}
