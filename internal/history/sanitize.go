package history

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SanitizeScore maps a 1-10 dimension score to an integer in [1,10].
// Non-numeric and out-of-range input become 1.
func SanitizeScore(v any) int {
	f, ok := toFloat(v)
	if !ok {
		return 1
	}
	r := math.Round(f)
	if r < 1 || r > 10 {
		return 1
	}
	return int(r)
}

// SanitizeOverallScore clamps the overall score to [1.0,10.0] with one decimal.
func SanitizeOverallScore(v any) float64 {
	f, ok := toFloat(v)
	if !ok {
		return 1.0
	}
	f = math.Round(f*10) / 10
	return math.Max(1.0, math.Min(10.0, f))
}

// SanitizeYears floors years of experience to a non-negative integer.
func SanitizeYears(v any) int {
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return 0
	}
	return int(math.Floor(f))
}

// SanitizeText drops invalid UTF-8, NUL bytes and control characters other
// than tab and newline.
func SanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' {
			return r
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return -1
		}
		return r
	}, s)
}

func sanitizeStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if clean := strings.TrimSpace(SanitizeText(item)); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// sanitizeValue cleans every string inside decoded JSON.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return SanitizeText(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[SanitizeText(k)] = sanitizeValue(item)
		}
		return out
	default:
		return v
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
