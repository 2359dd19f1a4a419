package quiz

import (
	"encoding/json"
	"strings"
)

// resolveAnswer picks the canonical correct answer. Answer text naming an
// option wins, then a letter A-D (only with at least four options), then a
// numeric index. Unmatched text is kept as given; a missing or out-of-range
// answer falls back to the first option.
func resolveAnswer(answer any, options []string) string {
	switch v := answer.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			break
		}
		if opt, ok := matchOption(s, options); ok {
			return opt
		}
		if idx, ok := letterIndex(s); ok && len(options) >= 4 {
			return options[idx]
		}
		if stripped := stripOptionLabel(s); stripped != s {
			if opt, ok := matchOption(stripped, options); ok {
				return opt
			}
		}
		return s
	case json.Number:
		if i, err := v.Int64(); err == nil && i >= 0 && i < int64(len(options)) {
			return options[i]
		}
	case int:
		if v >= 0 && v < len(options) {
			return options[v]
		}
	}

	if len(options) > 0 {
		return options[0]
	}
	return ""
}

func matchOption(answer string, options []string) (string, bool) {
	want := Normalize(answer)
	if want == "" {
		return "", false
	}
	for _, opt := range options {
		if Normalize(opt) == want {
			return opt, true
		}
	}
	return "", false
}

// letterIndex maps "B", "(b)", "B)" or "b." to 1.
func letterIndex(s string) (int, bool) {
	s = strings.Trim(strings.TrimSpace(s), "()[].:")
	if len(s) != 1 {
		return 0, false
	}
	c := s[0]
	if c >= 'a' && c <= 'd' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'D' {
		return 0, false
	}
	return int(c - 'A'), true
}
