package guard

// Head label values for the two binary heads.
const (
	JudgmentNo  = "no"
	JudgmentYes = "yes"
)

// Harmfulness rating values produced by the third head.
const (
	HarmNone     = 0.0
	HarmModerate = 0.5
	HarmSevere   = 1.0
)

// PredictionTriple is one classification outcome: two binary judgments plus
// a three-valued harmfulness rating. It is produced either by the student
// classifier's heads or by parsing the teacher's free-text verdict; both
// paths feed CompositeScore so the fusion rule is shared.
type PredictionTriple struct {
	Malicious   string  `json:"malicious"`
	Attacked    string  `json:"attacked"`
	Harmfulness float64 `json:"harmfulness"`
}

// Fusion weights. Either confirmed signal alone (0.4) lands below the unsafe
// threshold; two combined (0.8) clearly exceed it. Harmfulness is
// corroborating evidence, never a standalone trigger.
const (
	weightAttacked     = 0.4
	weightMalicious    = 0.4
	weightHarmModerate = 0.1
	weightHarmSevere   = 0.2
)

// CompositeScore fuses a prediction triple into a single risk score in
// {0.0, 0.5, 1.0}. The comparison at the 0.5 boundary is strictly greater
// than: a raw score of exactly 0.5 (one binary signal plus moderate
// harmfulness) is the "controversial" class, distinct from both safe and
// unsafe. Replacing `>` with `>=` silently reclassifies every such case as
// unsafe and breaks parity with the reference model.
func CompositeScore(t PredictionTriple) float64 {
	score := 0.0
	if t.Attacked == JudgmentYes {
		score += weightAttacked
	}
	if t.Malicious == JudgmentYes {
		score += weightMalicious
	}
	if t.Harmfulness == HarmModerate {
		score += weightHarmModerate
	}
	if t.Harmfulness == HarmSevere {
		score += weightHarmSevere
	}

	switch {
	case score > 0.5:
		return 1.0
	case score == 0.5:
		return 0.5
	default:
		return 0.0
	}
}
