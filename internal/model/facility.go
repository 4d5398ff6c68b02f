package model

import (
	"encoding/json"
	"strings"
)

// Facilities codec.
//
// Historically the facilities field has been written in two shapes: a JSON
// array of strings and a plain comma-separated string. Every read boundary
// must accept both; every write boundary must produce the canonical
// JSON-array form, because the search filter tests membership against the
// stored encoding. All format branching lives here; code downstream of the
// codec only ever sees a normalized []string.

// NormalizeFacilities converts any accepted facilities representation into
// an ordered sequence of non-empty tags.
//
// Accepted inputs:
//   - []string, or []any whose elements are strings (decoded JSON arrays)
//   - a string starting with "[" (JSON array; falls back to CSV on a
//     failed decode)
//   - a comma-separated string (split, trim, drop empties)
//
// The result preserves input order. Normalizing an already-normalized
// sequence returns the same sequence.
func NormalizeFacilities(v any) []string {
	switch fv := v.(type) {
	case nil:
		return []string{}
	case []string:
		return cleanTags(fv)
	case []any:
		tags := make([]string, 0, len(fv))
		for _, e := range fv {
			if s, ok := e.(string); ok {
				tags = append(tags, s)
			}
		}
		return cleanTags(tags)
	case string:
		return DecodeFacilities(fv)
	}
	return []string{}
}

// DecodeFacilities parses the stored (string) form of a facilities field.
// A leading "[" is tried as a JSON array first; anything else, or a JSON
// decode failure, is treated as comma-separated.
func DecodeFacilities(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}

	if strings.HasPrefix(s, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(s), &tags); err == nil {
			return cleanTags(tags)
		}
		// fall through: malformed array, treat as CSV
	}

	return cleanTags(strings.Split(s, ","))
}

// EncodeFacilities serializes tags into the canonical stored form: a JSON
// array of strings. Input is normalized first, so encoding is idempotent
// with decoding: DecodeFacilities(EncodeFacilities(x)) == cleaned x.
func EncodeFacilities(tags []string) string {
	cleaned := cleanTags(tags)
	b, err := json.Marshal(cleaned)
	if err != nil {
		// a []string cannot fail to marshal
		return "[]"
	}
	return string(b)
}

// cleanTags trims each tag and drops empties, preserving order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
