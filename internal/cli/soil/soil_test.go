package soil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func typicalInput() Input {
	return Input{N: 90, P: 42, K: 43, Temperature: 21, Humidity: 60, Ph: 6.5, Rainfall: 200}
}

func TestValidate_TypicalSampleIsClean(t *testing.T) {
	res := Validate(typicalInput())

	assert.True(t, res.OK())
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(in *Input)
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:       "nan is an error",
			mutate:     func(in *Input) { in.Ph = math.NaN() },
			wantErrors: []string{"pH is not a number"},
		},
		{
			name:       "above hard limit",
			mutate:     func(in *Input) { in.Rainfall = 501 },
			wantErrors: []string{"Rainfall must be between 0 and 500mm"},
		},
		{
			name:       "below hard limit",
			mutate:     func(in *Input) { in.Temperature = -21 },
			wantErrors: []string{"Temperature must be between -20 and 60°C"},
		},
		{
			name:         "outside recommended range",
			mutate:       func(in *Input) { in.N = 150 },
			wantWarnings: []string{"Nitrogen (N) is outside the recommended range (0–140)"},
		},
		{
			name:         "near lower limit",
			mutate:       func(in *Input) { in.Temperature = 7 },
			wantWarnings: []string{"Temperature is near its acceptable limit"},
		},
		{
			name:         "near upper limit",
			mutate:       func(in *Input) { in.Humidity = 95 },
			wantWarnings: []string{"Humidity is near its acceptable limit"},
		},
		{
			name: "errors and warnings together",
			mutate: func(in *Input) {
				in.K = 250
				in.Rainfall = 10
			},
			wantErrors:   []string{"Potassium (K) must be between 0 and 200"},
			wantWarnings: []string{"Rainfall is outside the recommended range (20–300)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := typicalInput()
			tt.mutate(&in)

			res := Validate(in)
			assert.Equal(t, tt.wantErrors, res.Errors)
			assert.Equal(t, tt.wantWarnings, res.Warnings)
			assert.Equal(t, len(tt.wantErrors) == 0, res.OK())
		})
	}
}

func TestParse(t *testing.T) {
	in := Parse(map[string]string{
		"N": "90", "P": " 42 ", "K": "43", "temperature": "20.5",
		"humidity": "82", "ph": "abc", "rainfall": "",
	})

	assert.Equal(t, 90.0, in.N)
	assert.Equal(t, 42.0, in.P)
	assert.Equal(t, 20.5, in.Temperature)
	assert.True(t, math.IsNaN(in.Ph))
	assert.True(t, math.IsNaN(in.Rainfall))

	res := Validate(in)
	assert.Equal(t, []string{"pH is not a number", "Rainfall is required"}, res.Errors)
}

func TestParse_BlankValuesAreRequired(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
		want []string
	}{
		{
			name: "absent key",
			raw:  map[string]string{"N": "90", "P": "42", "K": "43", "temperature": "20", "humidity": "82", "ph": "6.5"},
			want: []string{"Rainfall is required"},
		},
		{
			name: "whitespace only",
			raw:  map[string]string{"N": "  ", "P": "42", "K": "43", "temperature": "20", "humidity": "82", "ph": "6.5", "rainfall": "200"},
			want: []string{"Nitrogen (N) is required"},
		},
		{
			name: "everything blank",
			raw:  map[string]string{},
			want: []string{
				"Nitrogen (N) is required", "Phosphorus (P) is required", "Potassium (K) is required",
				"Temperature is required", "Humidity is required", "pH is required", "Rainfall is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(Parse(tt.raw))
			assert.False(t, res.OK())
			assert.Equal(t, tt.want, res.Errors)
		})
	}
}

func TestParse_CompleteInputMatchesLiteral(t *testing.T) {
	in := Parse(map[string]string{
		"N": "90", "P": "42", "K": "43", "temperature": "20.5",
		"humidity": "82", "ph": "6.5", "rainfall": "202.9",
	})
	assert.Equal(t, Input{N: 90, P: 42, K: 43, Temperature: 20.5, Humidity: 82, Ph: 6.5, Rainfall: 202.9}, in)
}

func TestInput_SetUnknownKey(t *testing.T) {
	var in Input
	assert.Error(t, in.Set("zinc", 1))
}
