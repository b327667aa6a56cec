package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string passes through", "B1", "B1"},
		{"integral float drops the point", float64(5), "5"},
		{"fractional float keeps digits", 2.5, "2.5"},
		{"int", 42, "42"},
		{"nil is empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalKey(tt.in))
		})
	}
}

func TestRecordNumber(t *testing.T) {
	r := Record{"VehAge": float64(2), "Area": "A", "Density": "800"}

	v, ok := r.Number("VehAge")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	// numeric strings parse
	v, ok = r.Number("Density")
	require.True(t, ok)
	assert.Equal(t, 800.0, v)

	_, ok = r.Number("Area")
	assert.False(t, ok)

	_, ok = r.Number("Missing")
	assert.False(t, ok)
}

func TestRecordCloneIsIndependent(t *testing.T) {
	r := Record{"IDpol": float64(1), "Area": "A"}
	c := r.Clone()
	c["Area"] = "B"
	c["New"] = "x"

	assert.Equal(t, "A", r["Area"])
	assert.NotContains(t, r, "New")
}

func TestTableAppendUnionsColumns(t *testing.T) {
	table := NewTable()
	table.Append(Record{"IDpol": float64(1), "Area": "A"})
	table.Append(Record{"IDpol": float64(2), "Region": "R1"})

	assert.Equal(t, 2, table.Len())
	assert.ElementsMatch(t, []string{"IDpol", "Area", "Region"}, table.Columns)

	// absent field reads as the missing sentinel
	assert.False(t, table.Records[1].Has("Area"))
}

func TestOperationApply(t *testing.T) {
	assert.True(t, OperationMultiply.Valid())
	assert.True(t, OperationAdd.Valid())
	assert.False(t, Operation("divide").Valid())

	assert.Equal(t, "1", OperationMultiply.Neutral().String())
	assert.Equal(t, "0", OperationAdd.Neutral().String())
}
