package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string", `"two-sum"`, "two-sum"},
		{"integer", `42`, "42"},
		{"float", `0.95`, "0.95"},
		{"bool", `true`, "true"},
		{"null", `null`, ""},
		{"empty string", `""`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexibleString
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFlexibleString_RejectsObjects(t *testing.T) {
	var got FlexibleString
	assert.Error(t, json.Unmarshal([]byte(`{"id": 1}`), &got))
}

func TestFlexibleFloat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"number", `0.95`, 0.95},
		{"integer", `1`, 1},
		{"numeric string", `"0.85"`, 0.85},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexibleFloat
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.InDelta(t, tt.want, float64(got), 1e-9)
		})
	}
}

func TestFlexibleFloat_RejectsNonNumericString(t *testing.T) {
	var got FlexibleFloat
	assert.Error(t, json.Unmarshal([]byte(`"very confident"`), &got))
}
