package inference

import "math"

const (
	malignantCut  = 0.5
	modelHighRisk = 0.7
)

// Postprocess converts raw logits into a PredictionResult. Model output uses
// the single-cut risk policy (Benign is low; Malignant is medium below 0.7,
// high otherwise). Heuristic output keeps its own two-cut policy and is
// rounded to 2 decimals. Non-finite output yields Unknown at medium risk.
func Postprocess(raw RawOutput) PredictionResult {
	_, pm, ok := softmax2(raw.Logits)
	if !ok {
		return PredictionResult{Label: LabelUnknown, Confidence: 0, RiskLevel: RiskMedium, Source: raw.Source}
	}
	if raw.Source == SourceHeuristic {
		pm = round2(pm)
	}
	label := LabelBenign
	if pm > malignantCut {
		label = LabelMalignant
	}
	res := PredictionResult{Label: label, Confidence: pm, Source: raw.Source}
	if raw.Source == SourceHeuristic {
		res.RiskLevel = heuristicRisk(pm)
	} else {
		res.RiskLevel = modelRisk(label, pm)
	}
	return res
}

func modelRisk(label Label, pm float64) RiskLevel {
	if label == LabelBenign {
		return RiskLow
	}
	if pm < modelHighRisk {
		return RiskMedium
	}
	return RiskHigh
}

// softmax2 is a numerically stable two-class softmax.
func softmax2(l [2]float32) (float64, float64, bool) {
	a, b := float64(l[0]), float64(l[1])
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, 0, false
	}
	m := math.Max(a, b)
	ea, eb := math.Exp(a-m), math.Exp(b-m)
	sum := ea + eb
	return ea / sum, eb / sum, true
}
