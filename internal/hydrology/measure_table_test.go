package hydrology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMeasureIndex_RejectsBrokenTables(t *testing.T) {
	tests := []struct {
		name    string
		table   []measureEncoding
		message string
	}{
		{
			name:    "missing kind",
			table:   measureTable[:len(measureTable)-1],
			message: "missing from table",
		},
		{
			name: "duplicate name",
			table: append(append([]measureEncoding{}, measureTable...),
				measureEncoding{MeasureKind(100), "Flow", "flow", ""}),
			message: "listed twice",
		},
		{
			name:    "blank name",
			table:   []measureEncoding{{MeasureFlow, " ", "flow", ""}},
			message: "has no name",
		},
		{
			name:    "level without qualifier",
			table:   []measureEncoding{{MeasureStage, "stage", levelParameter, ""}},
			message: "qualifier must be set",
		},
		{
			name:    "qualifier on plain parameter",
			table:   []measureEncoding{{MeasureFlow, "flow", "flow", "Flow"}},
			message: "qualifier must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := buildMeasureIndex(tt.table)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}

	// The live index is untouched by rejected tables.
	assert.Equal(t, MeasureFlow, kindByName["flow"])
	assert.Len(t, encodingByKind, len(AllMeasureKinds()))
}

func TestUnitFromURI(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name string
		in   *string
		want string
	}{
		{"absent", nil, Unknown},
		{"qudt uri", str("http://qudt.org/1.1/vocab/unit#Meter"), "Meter"},
		{"last hash wins", str("http://example.com/a#b#mAOD"), "mAOD"},
		{"no hash", str("m3/s"), "m3/s"},
		{"trailing hash", str("http://example.com/unit#"), Unknown},
		{"empty", str("  "), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unitFromURI(tt.in))
		})
	}
}
