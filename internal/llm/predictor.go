package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/raine/produce-shelf-life/internal/produce"
)

// ErrNoAnnotations is returned when a prediction carries none of the known labels.
var ErrNoAnnotations = errors.New("no known annotations in prediction")

// Predictor sends one image to an external vision model and returns the
// labeled annotations it produced, filtered to the known label vocabulary.
// A call is single-shot: failures are returned as-is, never retried.
type Predictor interface {
	// Predict takes a PNG encoded image.
	Predict(ctx context.Context, pngImage []byte) ([]produce.Annotation, error)
	// Name identifies the backend in logs.
	Name() string
}

// RawAnnotation is an annotation as the model or endpoint returned it.
type RawAnnotation struct {
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
}

// FilterKnown keeps the annotations whose label belongs to the vocabulary,
// in their original order, with the label normalized.
func FilterKnown(raw []RawAnnotation) []produce.Annotation {
	out := make([]produce.Annotation, 0, len(raw))
	for _, r := range raw {
		label, ok := produce.ParseLabel(r.DisplayName)
		if !ok {
			continue
		}
		out = append(out, produce.Annotation{Label: label, Text: strings.TrimSpace(r.Text)})
	}
	return out
}

// ParseAnnotationText splits free text of "Label: value" lines into raw
// annotations. List bullets and numbering in front of a label are ignored.
// Lines without a colon are skipped.
func ParseAnnotationText(text string) []RawAnnotation {
	var out []RawAnnotation
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "-•0123456789.) \t")
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		out = append(out, RawAnnotation{DisplayName: label, Text: value})
	}
	return out
}
