package moderation

import (
	"encoding/json"
	"fmt"
)

type verdictPayload struct {
	IsProfane    *bool   `json:"isProfane"`
	CleanVersion *string `json:"cleanVersion"`
	Reason       *string `json:"reason"`
}

// ExtractObject returns the first top-level balanced {...} span of raw.
// Braces inside JSON strings are ignored.
func ExtractObject(raw string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if start == -1 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseVerdict decodes a model answer into a Verdict for the given original text.
// isProfane is mandatory; cleanVersion and reason fall back to defaults.
func ParseVerdict(raw, original string) (Verdict, error) {
	object, ok := ExtractObject(raw)
	if !ok {
		return Verdict{}, fmt.Errorf("no JSON object in model output")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(object), &payload); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if payload.IsProfane == nil {
		return Verdict{}, fmt.Errorf("verdict is missing isProfane")
	}

	verdict := Verdict{Status: StatusClean, CleanText: original, Reason: "no issues found"}
	if *payload.IsProfane {
		verdict.Status = StatusFlagged
		verdict.Reason = "inappropriate content"
	}
	if payload.CleanVersion != nil && *payload.CleanVersion != "" {
		verdict.CleanText = *payload.CleanVersion
	}
	if payload.Reason != nil && *payload.Reason != "" {
		verdict.Reason = *payload.Reason
	}
	return verdict, nil
}
