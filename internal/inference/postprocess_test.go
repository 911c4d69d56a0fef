package inference

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// logitsFor returns model logits whose softmax gives P(malignant)=p.
func logitsFor(p float64) [2]float32 {
	return [2]float32{0, float32(math.Log(p / (1 - p)))}
}

func TestPostprocess_ModelTiers(t *testing.T) {
	cases := []struct {
		p     float64
		label Label
		risk  RiskLevel
	}{
		{0.05, LabelBenign, RiskLow},
		{0.5, LabelBenign, RiskLow},
		{0.51, LabelMalignant, RiskMedium},
		{0.69, LabelMalignant, RiskMedium},
		{0.7001, LabelMalignant, RiskHigh},
		{0.99, LabelMalignant, RiskHigh},
	}
	for _, c := range cases {
		res := Postprocess(RawOutput{Logits: logitsFor(c.p), Source: SourceModel})
		require.Equal(t, c.label, res.Label, "p=%v", c.p)
		require.Equal(t, c.risk, res.RiskLevel, "p=%v", c.p)
		require.InDelta(t, c.p, res.Confidence, 1e-5)
		require.Equal(t, SourceModel, res.Source)
	}
}

func TestPostprocess_HeuristicTiers(t *testing.T) {
	cases := []struct {
		p     float64
		label Label
		risk  RiskLevel
	}{
		{0.1, LabelBenign, RiskLow},
		{0.39, LabelBenign, RiskLow},
		{0.4, LabelBenign, RiskMedium},
		{0.5, LabelBenign, RiskMedium},
		{0.6, LabelMalignant, RiskMedium},
		{0.7, LabelMalignant, RiskHigh},
		{1, LabelMalignant, RiskHigh},
		{0, LabelBenign, RiskLow},
	}
	for _, c := range cases {
		res := Postprocess(RawOutput{Logits: pseudoLogits(c.p), Source: SourceHeuristic})
		require.Equal(t, c.label, res.Label, "p=%v", c.p)
		require.Equal(t, c.risk, res.RiskLevel, "p=%v", c.p)
		require.Equal(t, c.p, res.Confidence, "heuristic confidence is rounded to 2 decimals")
	}
}

func TestPostprocess_NonFinite(t *testing.T) {
	for _, l := range [][2]float32{
		{float32(math.NaN()), 0},
		{0, float32(math.Inf(1))},
		{float32(math.Inf(-1)), 1},
	} {
		res := Postprocess(RawOutput{Logits: l, Source: SourceModel})
		require.Equal(t, LabelUnknown, res.Label)
		require.Equal(t, 0.0, res.Confidence)
		require.Equal(t, RiskMedium, res.RiskLevel)
	}
}

func TestPostprocess_ConfidenceRangeAndTierConsistency(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		l := [2]float32{float32(r.NormFloat64() * 40), float32(r.NormFloat64() * 40)}
		res := Postprocess(RawOutput{Logits: l, Source: SourceModel})
		require.GreaterOrEqual(t, res.Confidence, 0.0)
		require.LessOrEqual(t, res.Confidence, 1.0)
		switch res.RiskLevel {
		case RiskLow:
			require.Equal(t, LabelBenign, res.Label)
		case RiskMedium:
			require.Equal(t, LabelMalignant, res.Label)
			require.Less(t, res.Confidence, 0.7)
		case RiskHigh:
			require.Equal(t, LabelMalignant, res.Label)
			require.GreaterOrEqual(t, res.Confidence, 0.7)
		default:
			t.Fatalf("unexpected risk %q", res.RiskLevel)
		}
	}
}

func TestSoftmax2_Stable(t *testing.T) {
	pb, pm, ok := softmax2([2]float32{1000, 1000})
	require.True(t, ok)
	require.InDelta(t, 0.5, pb, 1e-12)
	require.InDelta(t, 0.5, pm, 1e-12)
}
