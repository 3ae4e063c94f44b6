// Package predictor recommends crops by comparing a soil sample against
// per-crop growing profiles with several distance models
package predictor

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Sample is one soil/climate reading
type Sample struct {
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Ph          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

// featureRanges are the accepted limits of each feature, used to scale
// features to comparable magnitudes
var featureRanges = [7][2]float64{
	{0, 200},  // N
	{0, 200},  // P
	{0, 200},  // K
	{-20, 60}, // temperature
	{0, 100},  // humidity
	{0, 14},   // ph
	{0, 500},  // rainfall
}

var ErrInvalidSample = errors.New("invalid sample")

func (s Sample) features() [7]float64 {
	return [7]float64{s.N, s.P, s.K, s.Temperature, s.Humidity, s.Ph, s.Rainfall}
}

// scaled maps every feature into [0,1]
func (s Sample) scaled() [7]float64 {
	f := s.features()
	for i, r := range featureRanges {
		f[i] = (f[i] - r[0]) / (r[1] - r[0])
	}
	return f
}

// Validate rejects non-finite values and values outside the accepted limits
func (s Sample) Validate() error {
	names := [7]string{"N", "P", "K", "temperature", "humidity", "ph", "rainfall"}
	for i, v := range s.features() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidSample, names[i])
		}
		if v < featureRanges[i][0] || v > featureRanges[i][1] {
			return fmt.Errorf("%w: %s must be between %g and %g", ErrInvalidSample, names[i], featureRanges[i][0], featureRanges[i][1])
		}
	}
	return nil
}

// Model picks one crop for a sample
type Model interface {
	Name() string
	// Accuracy is the model's reference accuracy in percent
	Accuracy() float64
	Predict(s Sample) string
}

// ModelMetric holds per-model quality figures
type ModelMetric struct {
	Accuracy float64 `json:"accuracy"`
}

// Result is the combined answer of every model
type Result struct {
	Predictions     map[string]string      `json:"predictions"`
	Accuracies      map[string]float64     `json:"accuracies"`
	ModelMetrics    map[string]ModelMetric `json:"model_metrics"`
	Votes           map[string]int         `json:"votes"`
	BestModel       string                 `json:"best_model"`
	RecommendedCrop string                 `json:"recommended_crop"`
	Input           Sample                 `json:"input"`
}

// Predictor runs a fixed set of models
type Predictor struct {
	models []Model
}

// New creates a predictor. Without models it uses the built-in set over
// DefaultProfiles.
func New(models ...Model) *Predictor {
	if len(models) == 0 {
		models = DefaultModels(DefaultProfiles)
	}
	return &Predictor{models: models}
}

// Models returns the model names in evaluation order
func (p *Predictor) Models() []string {
	names := make([]string, len(p.models))
	for i, m := range p.models {
		names[i] = m.Name()
	}
	return names
}

// Predict runs every model. The recommended crop is the prediction of the
// model with the highest reference accuracy.
func (p *Predictor) Predict(s Sample) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Predictions:  make(map[string]string, len(p.models)),
		Accuracies:   make(map[string]float64, len(p.models)),
		ModelMetrics: make(map[string]ModelMetric, len(p.models)),
		Votes:        make(map[string]int),
		Input:        s,
	}

	bestAccuracy := math.Inf(-1)
	for _, m := range p.models {
		crop := m.Predict(s)
		res.Predictions[m.Name()] = crop
		res.Accuracies[m.Name()] = m.Accuracy()
		res.ModelMetrics[m.Name()] = ModelMetric{Accuracy: m.Accuracy()}
		res.Votes[crop]++

		if m.Accuracy() > bestAccuracy {
			bestAccuracy = m.Accuracy()
			res.BestModel = m.Name()
			res.RecommendedCrop = crop
		}
	}

	return res, nil
}

// Majority returns the crop with the most votes, ties broken by name
func (r *Result) Majority() string {
	crops := make([]string, 0, len(r.Votes))
	for c := range r.Votes {
		crops = append(crops, c)
	}
	sort.Slice(crops, func(i, j int) bool {
		if r.Votes[crops[i]] != r.Votes[crops[j]] {
			return r.Votes[crops[i]] > r.Votes[crops[j]]
		}
		return crops[i] < crops[j]
	})
	if len(crops) == 0 {
		return ""
	}
	return crops[0]
}
