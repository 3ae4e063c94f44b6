package predictor

import "math"

const rangeTolerance = 0.25

// DefaultModels returns the built-in models over profiles
func DefaultModels(profiles []CropProfile) []Model {
	return []Model{
		&distanceModel{name: "nearest_centroid", accuracy: 94.55, profiles: profiles, distance: euclidean},
		&distanceModel{name: "manhattan", accuracy: 93.18, profiles: profiles, distance: manhattan},
		&distanceModel{name: "cosine", accuracy: 88.64, profiles: profiles, distance: cosineDistance},
		&rangeModel{name: "range_match", accuracy: 85.0, profiles: profiles},
	}
}

// distanceModel picks the profile closest to the sample on scaled features
type distanceModel struct {
	name     string
	accuracy float64
	profiles []CropProfile
	distance func(a, b [7]float64) float64
}

func (m *distanceModel) Name() string      { return m.name }
func (m *distanceModel) Accuracy() float64 { return m.accuracy }

func (m *distanceModel) Predict(s Sample) string {
	x := s.scaled()
	best, bestDist := "", math.Inf(1)
	for _, p := range m.profiles {
		if d := m.distance(x, p.Mean.scaled()); d < bestDist {
			best, bestDist = p.Crop, d
		}
	}
	return best
}

func euclidean(a, b [7]float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func manhattan(a, b [7]float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

func cosineDistance(a, b [7]float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// rangeModel picks the profile with the most features within a tolerance of
// the profile mean. Ties go to the closer profile.
type rangeModel struct {
	name     string
	accuracy float64
	profiles []CropProfile
}

func (m *rangeModel) Name() string      { return m.name }
func (m *rangeModel) Accuracy() float64 { return m.accuracy }

func (m *rangeModel) Predict(s Sample) string {
	f, x := s.features(), s.scaled()
	best, bestHits, bestDist := "", -1, math.Inf(1)
	for _, p := range m.profiles {
		mean := p.Mean.features()
		hits := 0
		for i := range f {
			if math.Abs(f[i]-mean[i]) <= math.Abs(mean[i])*rangeTolerance {
				hits++
			}
		}
		d := euclidean(x, p.Mean.scaled())
		if hits > bestHits || (hits == bestHits && d < bestDist) {
			best, bestHits, bestDist = p.Crop, hits, d
		}
	}
	return best
}
