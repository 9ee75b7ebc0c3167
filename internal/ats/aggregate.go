package ats

import "math"

const (
	experienceWeight = 0.15
	educationWeight  = 0.10
)

// aggregate blends category scores with the role weights, then adds experience
// and education at fixed weights. Categories missing from either side are skipped.
func aggregate(weights map[string]float64, order []string, skillScores map[string]float64, experience, education float64) int {
	var weighted, total float64
	for _, category := range order {
		score, ok := skillScores[category]
		if !ok {
			continue
		}
		w := weights[category]
		weighted += score * w
		total += w
	}
	weighted += experience*experienceWeight + education*educationWeight
	total += experienceWeight + educationWeight

	overall := math.Round(math.Min(weighted/total, 100))
	return int(clamp(overall, 0, 100))
}
