package classifier

import "context"

// HeadIndices carries the argmax of each classification head in the fixed
// head order (malicious, attacked, harmfulness). Index-to-label resolution
// goes through the label-mapping artifact, not through hardcoded tables.
type HeadIndices struct {
	Malicious   int `json:"malicious"`
	Attacked    int `json:"attacked"`
	Harmfulness int `json:"harmfulness"`
}

// Predictor is the boundary to the tool-safety classifier runtime. The
// transformer forward pass itself lives behind this interface.
type Predictor interface {
	Predict(ctx context.Context, prompt string) (HeadIndices, error)
}

// TextClassification is a single-label classification with confidence,
// returned by the prompt-guard sequence classifier.
type TextClassification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// TextClassifier is the boundary to the prompt-injection classifier runtime.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (TextClassification, error)
}
