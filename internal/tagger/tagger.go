package tagger

import (
	"context"
	"io"
)

// Prediction is one classifier label with its confidence on a 0-100 scale.
type Prediction struct {
	Label      string
	Confidence float64
}

// Classifier submits image bytes to a remote tagging service and returns
// labeled confidence scores. Implementations must convert every failure,
// including transport errors, into a tagging-kind error so the caller's
// cleanup path always runs.
type Classifier interface {
	Classify(ctx context.Context, filename string, image io.Reader) ([]Prediction, error)
}
