package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cropwise-dev/cropwise/internal/cli/client"
	"github.com/cropwise-dev/cropwise/internal/cli/soil"
	"github.com/cropwise-dev/cropwise/internal/cli/userconfig"
)

func TestHumanizeModel(t *testing.T) {
	assert.Equal(t, "Random Forest", HumanizeModel("random_forest"))
	assert.Equal(t, "Knn", HumanizeModel("knn"))
	assert.Equal(t, "Nearest Centroid", HumanizeModel("nearest__centroid"))
	assert.Equal(t, "—", HumanizeModel(""))
}

func TestVotes_CountsPredictionsWhenServiceSendsNone(t *testing.T) {
	res := &client.PredictionResult{Predictions: map[string]string{
		"a": "rice", "b": "rice", "c": "maize", "d": "error", "e": "",
	}}

	assert.Equal(t, []VoteCount{{Crop: "rice", Votes: 2}, {Crop: "maize", Votes: 1}}, Votes(res))
}

func TestVotes_PrefersServiceTally(t *testing.T) {
	res := &client.PredictionResult{
		Predictions: map[string]string{"a": "rice"},
		Votes:       map[string]int{"jute": 3, "coffee": 3, "rice": 1},
	}

	assert.Equal(t, []VoteCount{
		{Crop: "coffee", Votes: 3},
		{Crop: "jute", Votes: 3},
		{Crop: "rice", Votes: 1},
	}, Votes(res))
}

func TestBestModel(t *testing.T) {
	tests := []struct {
		name      string
		res       client.PredictionResult
		wantModel string
		wantPct   float64
	}{
		{
			name: "metrics win over accuracies",
			res: client.PredictionResult{
				BestModel:    "cosine",
				ModelMetrics: map[string]client.ModelMetric{"cosine": {Accuracy: 97}},
				Accuracies:   map[string]float64{"cosine": 90},
			},
			wantModel: "cosine",
			wantPct:   97,
		},
		{
			name: "fraction accuracy",
			res: client.PredictionResult{
				BestModel:  "cosine",
				Accuracies: map[string]float64{"cosine": 0.9},
			},
			wantModel: "cosine",
			wantPct:   90,
		},
		{
			name: "first model by name when best is missing",
			res: client.PredictionResult{
				Predictions: map[string]string{"manhattan": "rice", "cosine": "rice"},
			},
			wantModel: "cosine",
			wantPct:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, pct := BestModel(&tt.res)
			assert.Equal(t, tt.wantModel, model)
			assert.InDelta(t, tt.wantPct, pct, 0.001)
		})
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", Bar(0, 10, 10))
	assert.Equal(t, "", Bar(5, 0, 10))
	assert.Equal(t, "█████", Bar(5, 10, 10))
	assert.Equal(t, "██████████", Bar(50, 10, 10))
	assert.Equal(t, "█", Bar(0.01, 10, 10))
}

func TestPrediction(t *testing.T) {
	var buf bytes.Buffer
	Prediction(&buf, &client.PredictionResult{
		Predictions:     map[string]string{"nearest_centroid": "rice", "cosine": "rice", "manhattan": "jute"},
		Accuracies:      map[string]float64{"nearest_centroid": 94.2, "cosine": 90.1},
		BestModel:       "nearest_centroid",
		RecommendedCrop: "rice",
	})

	out := buf.String()
	assert.Contains(t, out, "Nearest Centroid")
	assert.Contains(t, out, "94.2")
	assert.Contains(t, out, "Recommended crop: RICE")
	assert.Contains(t, out, "Best model:       Nearest Centroid (94%)")
	assert.Regexp(t, `rice\s+2`, out)
}

func TestSoil(t *testing.T) {
	var buf bytes.Buffer
	Soil(&buf, soil.Input{N: 90, P: 42, K: 43, Temperature: 20.5, Humidity: 82, Ph: 6.5, Rainfall: 202.93})

	out := buf.String()
	assert.Contains(t, out, "Nitrogen (N)")
	assert.Contains(t, out, "20.5°C")
	assert.Contains(t, out, "202.93mm")
}

func TestHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	History(&buf, nil)
	assert.Equal(t, "No history available.\n", buf.String())

	buf.Reset()
	LocalHistory(&buf, []userconfig.HistoryEntry{})
	assert.Equal(t, "No history available.\n", buf.String())
}

func TestLocalHistory(t *testing.T) {
	var buf bytes.Buffer
	LocalHistory(&buf, []userconfig.HistoryEntry{{
		Input:           soil.Input{N: 90, P: 42, K: 43, Temperature: 21, Humidity: 82, Ph: 6.5, Rainfall: 203},
		RecommendedCrop: "rice",
	}})

	out := buf.String()
	assert.Contains(t, out, "RICE")
	assert.Contains(t, out, "N=90, P=42, K=43, Temp=21°C, Humidity=82%, pH=6.5, Rainfall=203 mm")
}

func TestUsers(t *testing.T) {
	var buf bytes.Buffer
	Users(&buf, []client.UserDetail{
		{ID: "u1", FullName: "Jo", Email: "jo@x.com", IsAdmin: true},
		{ID: "u2", FullName: "Sam", Email: "sam@x.com"},
	})

	out := buf.String()
	assert.Regexp(t, `u1\s+Jo\s+jo@x.com\s+admin`, out)
	assert.Regexp(t, `u2\s+Sam\s+sam@x.com\s+user`, out)
}

func TestValidation(t *testing.T) {
	var buf bytes.Buffer
	Validation(&buf, soil.Result{Errors: []string{"pH is not a number"}, Warnings: []string{"Rainfall is near its acceptable limit"}})

	assert.Equal(t, "✗ pH is not a number\n! Rainfall is near its acceptable limit\n", buf.String())
}
