package inference

import "math"

// Heuristic weights. The estimator is a low-fidelity stand-in used when no
// model is loaded; it is not a medical classifier.
const (
	heuristicBase        = 0.2
	weightDarkness       = 0.35
	weightContrast       = 0.25
	weightRedDominance   = 0.4
	referenceMaxDist     = 80.0
	referenceNudge       = 0.3
	pseudoLogitEpsilon   = 1e-4
	heuristicLowBelow    = 0.4
	heuristicHighAtLeast = 0.7
)

// referenceColor maps a typical lesion color to a prior probability.
type referenceColor struct {
	R, G, B float64
	P       float64
}

var referenceColors = []referenceColor{
	{R: 62, G: 38, B: 30, P: 0.85},    // near-black brown
	{R: 150, G: 90, B: 70, P: 0.6},    // mid brown
	{R: 170, G: 60, B: 70, P: 0.55},   // inflamed red
	{R: 205, G: 160, B: 135, P: 0.2},  // light tan
	{R: 225, G: 180, B: 175, P: 0.12}, // pink skin
}

// ImageStats are the pixel statistics the heuristic is built on.
type ImageStats struct {
	Mean         [3]float64 // per-channel means, 0-255
	Brightness   float64    // [0,1]
	Contrast     float64    // [0,1]
	RedDominance float64    // [0,1]
}

// Stats denormalizes t and computes its pixel statistics.
func Stats(t *Tensor) ImageStats {
	const n = InputSize * InputSize
	var sum [3]float64
	var lumSum, lumSq float64
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			r, g, b := t.pixel(0, y, x), t.pixel(1, y, x), t.pixel(2, y, x)
			sum[0] += r
			sum[1] += g
			sum[2] += b
			l := 0.299*r + 0.587*g + 0.114*b
			lumSum += l
			lumSq += l * l
		}
	}
	var st ImageStats
	for c := range sum {
		st.Mean[c] = sum[c] / n
	}
	st.Brightness = clamp01((st.Mean[0] + st.Mean[1] + st.Mean[2]) / (3 * 255))
	mean := lumSum / n
	std := math.Sqrt(math.Max(0, lumSq/n-mean*mean))
	st.Contrast = clamp01(2 * std / 255)
	st.RedDominance = clamp01((st.Mean[0] - (st.Mean[1]+st.Mean[2])/2) / 128)
	return st
}

// heuristicScore combines the statistics and nudges the result toward the
// nearest reference color. It excludes jitter and rounding.
func heuristicScore(st ImageStats) float64 {
	p := heuristicBase +
		weightDarkness*(1-st.Brightness) +
		weightContrast*st.Contrast +
		weightRedDominance*st.RedDominance
	p = clamp01(p)
	if ref, ok := nearestReference(st.Mean); ok {
		p = p*(1-referenceNudge) + ref.P*referenceNudge
	}
	return p
}

func nearestReference(mean [3]float64) (referenceColor, bool) {
	best, bestDist := referenceColor{}, math.Inf(1)
	for _, rc := range referenceColors {
		d := math.Sqrt(sq(mean[0]-rc.R) + sq(mean[1]-rc.G) + sq(mean[2]-rc.B))
		if d < bestDist {
			best, bestDist = rc, d
		}
	}
	return best, bestDist <= referenceMaxDist
}

// HeuristicProbability estimates P(malignant) from raw pixel statistics,
// perturbs it by jitter (clamped to +/-0.05) and rounds to 2 decimals.
func HeuristicProbability(t *Tensor, jitter float64) float64 {
	j := math.Max(-jitterBand, math.Min(jitterBand, jitter))
	return round2(clamp01(heuristicScore(Stats(t)) + j))
}

// pseudoLogits turns a probability into logits whose softmax reproduces it.
func pseudoLogits(p float64) [2]float32 {
	p = math.Max(pseudoLogitEpsilon, math.Min(1-pseudoLogitEpsilon, p))
	return [2]float32{float32(math.Log(1 - p)), float32(math.Log(p))}
}

// heuristicRisk is the two-cut policy of the heuristic path.
func heuristicRisk(p float64) RiskLevel {
	switch {
	case p < heuristicLowBelow:
		return RiskLow
	case p < heuristicHighAtLeast:
		return RiskMedium
	}
	return RiskHigh
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func sq(v float64) float64 { return v * v }
