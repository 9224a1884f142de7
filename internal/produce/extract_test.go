package produce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDetails_EmptyInputYieldsSentinels(t *testing.T) {
	assert.Equal(t, NewRecord(), ParseDetails(nil))
	assert.Equal(t, NewRecord(), ParseAnalysis(""))
	assert.Equal(t, NewRecord(), Extract(nil))
}

func TestParseDetails_UnknownLabelsAreDropped(t *testing.T) {
	r := ParseDetails([]string{
		"Color: yellow",
		"no colon at all",
		"Calories per 100g: 89",
	})
	assert.Equal(t, NewRecord(), r)
}

func TestParseDetails_StripsEmphasisAndKeepsDefaults(t *testing.T) {
	r := ParseDetails([]string{
		"Name of the fruit/vegetable:**Banana",
		"Minimum Estimated shelf life:5 days",
	})

	assert.Equal(t, "Banana", r.Name)
	assert.Equal(t, "5 days", r.EstimatedShelfLife)
	assert.Equal(t, DefaultOptimalStorageConditions, r.OptimalStorageConditions)
	assert.Equal(t, DefaultRefrigerationRequired, r.RefrigerationRequired)
	assert.Equal(t, DefaultStorageTip, r.StorageTip)
}

func TestParseDetails_EmphasisWithWhitespace(t *testing.T) {
	r := ParseDetails([]string{
		"Refrigeration Required:** Yes",
		"One key storage tip:* Keep away from apples",
	})
	assert.Equal(t, "Yes", r.RefrigerationRequired)
	assert.Equal(t, "Keep away from apples", r.StorageTip)
}

func TestParseDetails_KeepsInlineEmphasis(t *testing.T) {
	r := ParseDetails([]string{
		"Name of the fruit/vegetable:*Organic* apples",
		"One key storage tip:***Store cold",
	})
	assert.Equal(t, "*Organic* apples", r.Name)
	assert.Equal(t, "Store cold", r.StorageTip)
}

func TestParseDetails_LastMatchingLineWins(t *testing.T) {
	r := ParseDetails([]string{
		"Name of the fruit/vegetable:Apple",
		"Minimum Estimated shelf life:2 weeks",
		"Name of the fruit/vegetable:Pear",
	})
	assert.Equal(t, "Pear", r.Name)
	assert.Equal(t, "2 weeks", r.EstimatedShelfLife)
}

func TestParseDetails_ValueKeepsLaterColons(t *testing.T) {
	r := ParseDetails([]string{"One key storage tip: Store at 4:00 ratio: none"})
	assert.Equal(t, "Store at 4:00 ratio: none", r.StorageTip)
}

func TestParseDetails_MatchesLabelInsideLine(t *testing.T) {
	r := ParseDetails([]string{"1. Name of the fruit/vegetable: Kiwi"})
	assert.Equal(t, "Kiwi", r.Name)
}

func TestComposeLines_TemperatureAndHumidity(t *testing.T) {
	lines := ComposeLines([]Annotation{
		{Label: LabelTemperature, Text: " 0-4°C "},
		{Label: LabelName, Text: "Carrot"},
		{Label: LabelHumidity, Text: "90-95%"},
	})

	assert.Equal(t, []string{
		"Name of the fruit/vegetable:Carrot",
		"Optimal Storage Conditions: Temperature: 0-4°C, Humidity: 90-95%",
	}, lines)
}

func TestComposeLines_UsesFirstOfEachKind(t *testing.T) {
	lines := ComposeLines([]Annotation{
		{Label: LabelTemperature, Text: "1-2°C"},
		{Label: LabelTemperature, Text: "8-10°C"},
		{Label: LabelHumidity, Text: "85%"},
	})
	assert.Equal(t, []string{"Optimal Storage Conditions: Temperature: 1-2°C, Humidity: 85%"}, lines)
}

func TestComposeLines_OnlyOneConditionKeepsOriginalLine(t *testing.T) {
	tests := []struct {
		name string
		in   Annotation
		want string
	}{
		{"temperature", Annotation{Label: LabelTemperature, Text: "0-4°C"}, "Optimal Storage Conditions: Optimal storage temperature range:0-4°C"},
		{"humidity", Annotation{Label: LabelHumidity, Text: "90%"}, "Optimal Storage Conditions: Optimal humidity range:90%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, ComposeLines([]Annotation{tt.in}))
		})
	}
}

func TestComposeLines_NoConditions(t *testing.T) {
	lines := ComposeLines([]Annotation{{Label: LabelStorageTip, Text: "Dry place"}})
	assert.Equal(t, []string{"One key storage tip:Dry place"}, lines)
}

func TestExtract_ComposedConditions(t *testing.T) {
	r := Extract([]Annotation{
		{Label: LabelName, Text: "Carrot"},
		{Label: LabelTemperature, Text: "0-4°C"},
		{Label: LabelHumidity, Text: " 95% "},
	})
	assert.Equal(t, "Temperature: 0-4°C, Humidity: 95%", r.OptimalStorageConditions)
}

func TestExtract_TemperatureOnly(t *testing.T) {
	r := Extract([]Annotation{{Label: LabelTemperature, Text: "10-13°C"}})
	assert.Equal(t, "Optimal storage temperature range:10-13°C", r.OptimalStorageConditions)
	assert.Equal(t, DefaultName, r.Name)
}

func TestExtract_FullRecord(t *testing.T) {
	r := Extract([]Annotation{
		{Label: LabelName, Text: "** Apple"},
		{Label: LabelShelfLife, Text: "4-6 weeks"},
		{Label: LabelTemperature, Text: "0-4°C"},
		{Label: LabelHumidity, Text: "90-95%"},
		{Label: LabelRefrigeration, Text: "Yes"},
		{Label: LabelStorageTip, Text: "Store away from ethylene-sensitive produce"},
	})

	assert.Equal(t, Record{
		Name:                     "Apple",
		EstimatedShelfLife:       "4-6 weeks",
		OptimalStorageConditions: "Temperature: 0-4°C, Humidity: 90-95%",
		RefrigerationRequired:    "Yes",
		StorageTip:               "Store away from ethylene-sensitive produce",
	}, r)
}

func TestParseLabel(t *testing.T) {
	l, ok := ParseLabel("**refrigeration required**")
	assert.True(t, ok)
	assert.Equal(t, LabelRefrigeration, l)

	l, ok = ParseLabel("- One key storage tip")
	assert.True(t, ok)
	assert.Equal(t, LabelStorageTip, l)

	_, ok = ParseLabel("Color")
	assert.False(t, ok)
}
