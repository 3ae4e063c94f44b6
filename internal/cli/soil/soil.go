// Package soil holds the soil sample sent for prediction and its validation
package soil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Input is one soil/climate sample as sent to the prediction service
type Input struct {
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Ph          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`

	// keys left blank by Parse
	missing []string
}

// Measurement describes one input field and its thresholds
type Measurement struct {
	Key   string
	Label string
	Unit  string

	// Hard limits; values outside block the request
	Min, Max float64

	// Recommended agronomic range; values outside only warn
	RecommendedMin, RecommendedMax float64
}

// Measurements lists every field in request order
var Measurements = []Measurement{
	{Key: "N", Label: "Nitrogen (N)", Min: 0, Max: 200, RecommendedMin: 0, RecommendedMax: 140},
	{Key: "P", Label: "Phosphorus (P)", Min: 0, Max: 200, RecommendedMin: 0, RecommendedMax: 145},
	{Key: "K", Label: "Potassium (K)", Min: 0, Max: 200, RecommendedMin: 0, RecommendedMax: 205},
	{Key: "temperature", Label: "Temperature", Unit: "°C", Min: -20, Max: 60, RecommendedMin: 5, RecommendedMax: 45},
	{Key: "humidity", Label: "Humidity", Unit: "%", Min: 0, Max: 100, RecommendedMin: 20, RecommendedMax: 100},
	{Key: "ph", Label: "pH", Min: 0, Max: 14, RecommendedMin: 3.5, RecommendedMax: 9.0},
	{Key: "rainfall", Label: "Rainfall", Unit: "mm", Min: 0, Max: 500, RecommendedMin: 20, RecommendedMax: 300},
}

// nearLimitFraction is the share of the recommended range treated as "near a limit"
const nearLimitFraction = 0.1

// Value returns the field named key
func (in Input) Value(key string) float64 {
	switch key {
	case "N":
		return in.N
	case "P":
		return in.P
	case "K":
		return in.K
	case "temperature":
		return in.Temperature
	case "humidity":
		return in.Humidity
	case "ph":
		return in.Ph
	case "rainfall":
		return in.Rainfall
	}
	return math.NaN()
}

// Set assigns the field named key
func (in *Input) Set(key string, v float64) error {
	switch key {
	case "N":
		in.N = v
	case "P":
		in.P = v
	case "K":
		in.K = v
	case "temperature":
		in.Temperature = v
	case "humidity":
		in.Humidity = v
	case "ph":
		in.Ph = v
	case "rainfall":
		in.Rainfall = v
	default:
		return fmt.Errorf("unknown measurement %q", key)
	}
	return nil
}

// Parse builds an Input from raw text values keyed by measurement key.
// Blank and unparsable values become NaN so Validate reports them; blank
// ones are reported as required rather than as not a number.
func Parse(raw map[string]string) Input {
	var in Input
	for _, m := range Measurements {
		text := strings.TrimSpace(raw[m.Key])
		if text == "" {
			in.missing = append(in.missing, m.Key)
			_ = in.Set(m.Key, math.NaN())
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			v = math.NaN()
		}
		_ = in.Set(m.Key, v)
	}
	return in
}

func (in Input) isMissing(key string) bool {
	for _, k := range in.missing {
		if k == key {
			return true
		}
	}
	return false
}

// Result carries blocking errors and advisory warnings
type Result struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the sample may be sent
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks every measurement against its hard limits and recommended range
func Validate(in Input) Result {
	var res Result

	for _, m := range Measurements {
		v := in.Value(m.Key)

		if in.isMissing(m.Key) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s is required", m.Label))
			continue
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s is not a number", m.Label))
			continue
		}

		if v < m.Min || v > m.Max {
			res.Errors = append(res.Errors, fmt.Sprintf("%s must be between %s and %s%s",
				m.Label, formatNumber(m.Min), formatNumber(m.Max), m.Unit))
			continue
		}

		if v < m.RecommendedMin || v > m.RecommendedMax {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s is outside the recommended range (%s–%s)",
				m.Label, formatNumber(m.RecommendedMin), formatNumber(m.RecommendedMax)))
			continue
		}

		margin := (m.RecommendedMax - m.RecommendedMin) * nearLimitFraction
		if v < m.RecommendedMin+margin || v > m.RecommendedMax-margin {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s is near its acceptable limit", m.Label))
		}
	}

	return res
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
