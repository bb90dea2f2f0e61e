package eval

import "sort"

// Metrics is one evaluation result: classification quality plus sample
// accounting. NValid counts pairs that survived filtering; the gap to NTotal
// is parse failures plus out-of-class values.
type Metrics struct {
	Accuracy     float64 `json:"accuracy"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1           float64 `json:"f1"`
	NValid       int     `json:"n_valid"`
	NTotal       int     `json:"n_total"`
	NParseErrors int     `json:"n_parse_errors"`
}

// Compute evaluates predictions against labels under a score mode. Binary
// modes (strict, loose) score the unsafe class; exact macro-averages over
// the classes present.
func Compute(preds []*float64, labels []float64, mode ScoreMode) Metrics {
	predsClean, labelsClean := FilterPairs(preds, labels, mode)

	parseErrors := 0
	for _, p := range preds {
		if p == nil {
			parseErrors++
		}
	}

	m := Metrics{
		NValid:       len(labelsClean),
		NTotal:       len(labels),
		NParseErrors: parseErrors,
	}
	if len(labelsClean) == 0 {
		return m
	}

	m.Accuracy = accuracy(predsClean, labelsClean)
	if mode == ScoreModeExact {
		m.Precision, m.Recall, m.F1 = macroPRF(predsClean, labelsClean)
	} else {
		m.Precision, m.Recall, m.F1 = binaryPRF(predsClean, labelsClean, 1)
	}
	return m
}

func accuracy(preds, labels []int) float64 {
	correct := 0
	for i := range labels {
		if preds[i] == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}

func binaryPRF(preds, labels []int, positive int) (precision, recall, f1 float64) {
	var tp, fp, fn int
	for i := range labels {
		switch {
		case preds[i] == positive && labels[i] == positive:
			tp++
		case preds[i] == positive && labels[i] != positive:
			fp++
		case preds[i] != positive && labels[i] == positive:
			fn++
		}
	}
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// macroPRF averages per-class precision, recall and F1 over every class seen
// in either sequence.
func macroPRF(preds, labels []int) (precision, recall, f1 float64) {
	seen := map[int]struct{}{}
	for _, v := range labels {
		seen[v] = struct{}{}
	}
	for _, v := range preds {
		seen[v] = struct{}{}
	}
	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	for _, c := range classes {
		p, r, f := binaryPRF(preds, labels, c)
		precision += p
		recall += r
		f1 += f
	}
	n := float64(len(classes))
	return precision / n, recall / n, f1 / n
}
