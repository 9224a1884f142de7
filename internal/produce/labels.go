package produce

import "strings"

// Label is one of the fixed annotation labels the vision model emits.
type Label string

const (
	LabelName          Label = "Name of the fruit/vegetable"
	LabelShelfLife     Label = "Minimum Estimated shelf life"
	LabelTemperature   Label = "Optimal storage temperature range"
	LabelHumidity      Label = "Optimal humidity range"
	LabelRefrigeration Label = "Refrigeration Required"
	LabelStorageTip    Label = "One key storage tip"
)

// labelConditions is not emitted by the model. It marks the line that
// ComposeLines builds out of the temperature and humidity annotations.
const labelConditions = "Optimal Storage Conditions"

var knownLabels = []Label{
	LabelName,
	LabelShelfLife,
	LabelTemperature,
	LabelHumidity,
	LabelRefrigeration,
	LabelStorageTip,
}

// KnownLabels returns the label vocabulary in prompt order.
func KnownLabels() []Label {
	out := make([]Label, len(knownLabels))
	copy(out, knownLabels)
	return out
}

// ParseLabel resolves a loosely written label ("**Refrigeration required**",
// "- One key storage tip") to the vocabulary.
func ParseLabel(s string) (Label, bool) {
	s = strings.Trim(strings.TrimSpace(s), "*-_# \t")
	for _, l := range knownLabels {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}

// Annotation is a single labeled text fragment returned by the model.
type Annotation struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// Line renders the annotation the way the extractor consumes it.
func (a Annotation) Line() string {
	return string(a.Label) + ":" + a.Text
}
