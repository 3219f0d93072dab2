package analyzer

// FallbackNote marks a stored record whose payload carried no structured data.
const FallbackNote = "structuredData not found"

// structuredDataPaths lists the probed locations in priority order.
var structuredDataPaths = [][]string{
	{"structuredData"},
	{"analysis"},
	{"data", "structuredData"},
	{"event", "structuredData"},
}

// ExtractStructuredData returns the first non-null value found at one of the
// well-known structured-data locations, or nil when none is present.
func ExtractStructuredData(payload interface{}) interface{} {
	doc, ok := AsDocument(payload)
	if !ok {
		return nil
	}
	for _, path := range structuredDataPaths {
		if v, ok := doc.Lookup(path...); ok {
			return v
		}
	}
	return nil
}

// FallbackData wraps a raw payload for storage when no structured data was found.
func FallbackData(raw interface{}) map[string]interface{} {
	return map[string]interface{}{
		"note": FallbackNote,
		"raw":  raw,
	}
}
