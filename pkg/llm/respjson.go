package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ExtractJSON locates the JSON payload inside raw model output. Models wrap
// JSON in markdown fences and explanatory prose, so the raw text is scanned
// for the first balanced object or array span instead of being parsed as-is.
func ExtractJSON(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if json.Valid([]byte(content)) && (strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")) {
		return content, nil
	}

	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON payload in output", ErrMalformed)
	}

	span, err := balancedSpan(content[start:])
	if err != nil {
		return "", err
	}

	return span, nil
}

// balancedSpan returns the prefix of s that forms one balanced {...} or
// [...] span, ignoring brackets inside JSON strings.
func balancedSpan(s string) (string, error) {
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1], nil
			}
		}
	}

	return "", fmt.Errorf("%w: unbalanced JSON payload in output", ErrMalformed)
}

// Number decodes a JSON number or a numeric string. Model output drifts
// between 85 and "85" for score fields; both are accepted.
type Number struct {
	value float64
	set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}

	n.value = v
	n.set = true
	return nil
}

func (n Number) Int() int {
	return int(n.value)
}

func (n Number) IsSet() bool {
	return n.set
}
