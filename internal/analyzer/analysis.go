package analyzer

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Analysis is the summary derived from a payload's structured data.
type Analysis struct {
	Summary           string   `json:"summary"`
	SuccessEvaluation bool     `json:"successEvaluation"`
	KeyPoints         []string `json:"key_points"`
}

const missingSummary = "No structured data found. Stored raw payload for debugging."

var missingKeyPoints = []string{
	"Payload received but missing structuredData.",
	"Raw payload stored in events for later inspection.",
}

var trainingKeyPoints = []string{
	"Training request captured with timeline and format.",
	"Team size and expertise level clarified if available.",
	"Contact details and next steps prepared for follow-up.",
}

// trainingField is an optional structured-data field and the text used when it is missing.
type trainingField struct {
	key      string
	fallback string
}

var (
	fieldName     = trainingField{key: "name", fallback: "Unknown user"}
	fieldTopic    = trainingField{key: "topic", fallback: "Unspecified topic"}
	fieldTeamSize = trainingField{key: "team_size", fallback: "N/A"}
	fieldFormat   = trainingField{key: "training_format", fallback: "Unspecified format"}
	fieldTimeline = trainingField{key: "training_timeline", fallback: "No timeline provided"}
)

// BuildAnalysis derives an Analysis from extracted structured data. A nil
// value, or one carrying a note (the fallback wrapper), produces the
// missing-data analysis. rawPayload is accepted for parity with the stored
// record and is not inspected.
func BuildAnalysis(structuredData, rawPayload interface{}) Analysis {
	if structuredData == nil {
		return missingAnalysis()
	}
	doc, isObject := AsDocument(structuredData)
	if isObject && doc.Has("note") {
		return missingAnalysis()
	}

	return Analysis{
		Summary: fmt.Sprintf("%s requested training on '%s' for a team of %s, to be conducted in %s, scheduled %s.",
			doc.text(fieldName),
			doc.text(fieldTopic),
			doc.text(fieldTeamSize),
			doc.text(fieldFormat),
			doc.text(fieldTimeline),
		),
		SuccessEvaluation: true,
		KeyPoints:         append([]string(nil), trainingKeyPoints...),
	}
}

func missingAnalysis() Analysis {
	return Analysis{
		Summary:           missingSummary,
		SuccessEvaluation: false,
		KeyPoints:         append([]string(nil), missingKeyPoints...),
	}
}

// text renders a field for the summary sentence. Absent and null values fall
// back to the field's default; any other value, including "", 0 and false, is
// printed. A nil Document (structured data that is not an object) yields the
// default for every field.
func (d Document) text(f trainingField) string {
	v, ok := d.Lookup(f.key)
	if !ok {
		return f.fallback
	}
	return renderValue(v)
}

func renderValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
