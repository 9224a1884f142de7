package produce

import "strings"

// ComposeLines renders annotations as "Label:Text" lines and folds the
// temperature and humidity annotations into a single storage conditions line.
//
// With both present the folded line is
// "Optimal Storage Conditions: Temperature: <T>, Humidity: <H>", built from
// the first line of each kind. With only one present that line is kept whole
// behind the "Optimal Storage Conditions: " prefix. The folded line always
// goes last.
func ComposeLines(annotations []Annotation) []string {
	lines := make([]string, 0, len(annotations))
	var temperature, humidity []string

	for _, a := range annotations {
		line := a.Line()
		isTemperature := strings.Contains(line, string(LabelTemperature))
		isHumidity := strings.Contains(line, string(LabelHumidity))
		if isTemperature {
			temperature = append(temperature, line)
		}
		if isHumidity {
			humidity = append(humidity, line)
		}
		if !isTemperature && !isHumidity {
			lines = append(lines, line)
		}
	}

	switch {
	case len(temperature) > 0 && len(humidity) > 0:
		lines = append(lines, labelConditions+": Temperature: "+valueOf(temperature[0])+", Humidity: "+valueOf(humidity[0]))
	case len(temperature) > 0:
		lines = append(lines, labelConditions+": "+temperature[0])
	case len(humidity) > 0:
		lines = append(lines, labelConditions+": "+humidity[0])
	}

	return lines
}

// fieldMatchers are checked in order for every line; the first one whose
// label appears in the line claims it.
var fieldMatchers = []struct {
	label string
	set   func(r *Record, v string)
}{
	{string(LabelName) + ":", func(r *Record, v string) { r.Name = v }},
	{string(LabelShelfLife) + ":", func(r *Record, v string) { r.EstimatedShelfLife = v }},
	{labelConditions + ":", func(r *Record, v string) { r.OptimalStorageConditions = v }},
	{string(LabelRefrigeration) + ":", func(r *Record, v string) { r.RefrigerationRequired = v }},
	{string(LabelStorageTip) + ":", func(r *Record, v string) { r.StorageTip = v }},
}

// ParseDetails maps analysis lines onto a Record.
//
// Lines are matched by label containment, not by structure, so small
// variations in the model's phrasing around a label still match. When several
// lines carry the same label the last one wins. Lines without a known label
// are dropped. Missing fields keep their sentinel defaults.
func ParseDetails(lines []string) Record {
	r := NewRecord()
	for _, line := range lines {
		for _, m := range fieldMatchers {
			if strings.Contains(line, m.label) {
				m.set(&r, valueOf(line))
				break
			}
		}
	}

	r.Name = stripEmphasis(r.Name)
	r.EstimatedShelfLife = stripEmphasis(r.EstimatedShelfLife)
	r.OptimalStorageConditions = stripEmphasis(r.OptimalStorageConditions)
	r.RefrigerationRequired = stripEmphasis(r.RefrigerationRequired)
	r.StorageTip = stripEmphasis(r.StorageTip)
	return r
}

// ParseAnalysis parses a newline separated analysis text.
func ParseAnalysis(text string) Record {
	if text == "" {
		return NewRecord()
	}
	return ParseDetails(strings.Split(text, "\n"))
}

// Extract turns filtered model annotations into a Record.
func Extract(annotations []Annotation) Record {
	return ParseDetails(ComposeLines(annotations))
}

// valueOf returns the trimmed text after the first colon.
func valueOf(line string) string {
	_, v, _ := strings.Cut(line, ":")
	return strings.TrimSpace(v)
}

// stripEmphasis removes a leading markdown marker such as "**" or "* ".
// A single "*" glued to a word is emphasis inside the value and is kept.
func stripEmphasis(v string) string {
	rest := strings.TrimLeft(v, "*")
	stars := len(v) - len(rest)
	if stars == 0 {
		return v
	}
	if stars == 1 && rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return v
	}
	return strings.TrimLeft(rest, " \t")
}
