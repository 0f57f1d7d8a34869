package property

// textCodes maps the textual flags and property types to their numeric codes.
var textCodes = map[string]float64{
	"Yes":        1,
	"No":         0,
	"House":      1,
	"Appartment": 2,
}

// NormalizeValue replaces Yes/No/House/Appartment by their codes. Any other
// value, text or number, is returned unchanged.
func NormalizeValue(v Value) Value {
	if !v.IsText() {
		return v
	}
	if code, ok := textCodes[v.text]; ok {
		return Number(code)
	}
	return v
}

// Normalize returns the record with every value normalized.
func Normalize(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = NormalizeValue(v)
	}
	return out
}
