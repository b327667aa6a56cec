package transform

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	dir := t.TempDir()

	categoryPath := filepath.Join(dir, "category-index.json")
	require.NoError(t, os.WriteFile(categoryPath, []byte(`{
	  "Area": {"A": 0, "B": 1, "C": 2},
	  "VehGas": {"Regular": 0, "Diesel": 1}
	}`), 0644))

	bandingPath := filepath.Join(dir, "continuous-banding.json")
	require.NoError(t, os.WriteFile(bandingPath, []byte(drivAgeBanding), 0644))

	categories, err := LoadCategoryConfig(categoryPath)
	require.NoError(t, err)
	banding, err := LoadBandingConfig(bandingPath)
	require.NoError(t, err)

	p, err := NewPipeline(Options{
		PrimaryKey:  "IDpol",
		Derivations: []string{"age_band", "power_group"},
		Categories:  categories,
		Banding:     banding,
	})
	require.NoError(t, err)
	return p
}

func sampleRecord() types.Record {
	return types.Record{
		"IDpol":    float64(1),
		"VehPower": float64(5),
		"VehAge":   float64(2),
		"DrivAge":  float64(30),
		"VehGas":   "Regular",
		"Area":     "A",
	}
}

func TestTransformRunsAllStages(t *testing.T) {
	p := testPipeline(t)

	out, err := p.Transform(sampleRecord())
	require.NoError(t, err)

	// derivations
	assert.Equal(t, "Medium", out["PowerGroup"])
	// indexing
	assert.Equal(t, 0, out["Area_Index"])
	assert.Equal(t, 0, out["VehGas_Index"])
	// banding (runs after derivations, same label set)
	assert.Equal(t, "25-39", out["DrivAgeBand"])
	// raw fields are kept
	assert.Equal(t, "A", out["Area"])
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	p := testPipeline(t)
	raw := sampleRecord()

	_, err := p.Transform(raw)
	require.NoError(t, err)

	assert.NotContains(t, raw, "Area_Index")
	assert.NotContains(t, raw, "DrivAgeBand")
	assert.NotContains(t, raw, "PowerGroup")
}

func TestTransformIsIdempotent(t *testing.T) {
	p := testPipeline(t)

	first, err := p.Transform(sampleRecord())
	require.NoError(t, err)
	second, err := p.Transform(sampleRecord())
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first, second))
}

func TestTransformUnknownCategoryFails(t *testing.T) {
	p := testPipeline(t)
	raw := sampleRecord()
	raw["Area"] = "Z"

	_, err := p.Transform(raw)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindCategoryLookup))

	e := errors.AsError(err)
	assert.Equal(t, "Area", e.Context["field"])
	assert.Equal(t, "Z", e.Context["value"])
	assert.Equal(t, StageIndex, e.Context["stage"])
	assert.Equal(t, "1", e.Context["record"])
}

func TestTransformNumericCategoryKey(t *testing.T) {
	dir := t.TempDir()
	categoryPath := filepath.Join(dir, "category-index.json")
	require.NoError(t, os.WriteFile(categoryPath, []byte(`{
	  "VehPower": {"4": 0, "5": 1, "6": 2}
	}`), 0644))

	categories, err := LoadCategoryConfig(categoryPath)
	require.NoError(t, err)

	p, err := NewPipeline(Options{PrimaryKey: "IDpol", Categories: categories})
	require.NoError(t, err)

	// a JSON number matches the mapping through its canonical string form
	out, err := p.Transform(types.Record{"IDpol": float64(1), "VehPower": float64(5)})
	require.NoError(t, err)
	assert.Equal(t, 1, out["VehPower_Index"])
}

func TestTransformMissingPrimaryKey(t *testing.T) {
	p := testPipeline(t)
	raw := sampleRecord()
	delete(raw, "IDpol")

	_, err := p.Transform(raw)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSchema))
}

func TestTransformOutOfBandValueFails(t *testing.T) {
	p := testPipeline(t)
	raw := sampleRecord()
	raw["DrivAge"] = float64(150)

	_, err := p.Transform(raw)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindBanding))
	assert.Equal(t, StageBand, errors.AsError(err).Context["stage"])
}

func TestNewPipelineRejectsUnknownDerivation(t *testing.T) {
	_, err := NewPipeline(Options{
		PrimaryKey:  "IDpol",
		Derivations: []string{"no_such_derivation"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfig))
}

func TestTransformTablePartialFailure(t *testing.T) {
	p := testPipeline(t)

	table := types.NewTable()
	for i := 0; i < 5; i++ {
		r := sampleRecord()
		r["IDpol"] = float64(i + 1)
		if i == 2 {
			r["Area"] = "Z" // unmapped
		}
		table.Append(r)
	}

	outcomes := p.TransformTable(context.Background(), table)
	require.Len(t, outcomes, 5)

	failed := 0
	for i, out := range outcomes {
		assert.Equal(t, i, out.Position)
		if out.Err != nil {
			failed++
			assert.Equal(t, "3", out.RecordID)
			assert.Equal(t, errors.KindCategoryLookup, out.Err.Kind)
		} else {
			assert.NotNil(t, out.Record)
		}
	}
	assert.Equal(t, 1, failed)
}
