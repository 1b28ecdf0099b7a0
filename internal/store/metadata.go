package store

import "encoding/json"

// MarshalMetadata serializes a schema-less key/value bag to the opaque JSON
// text column backing Resource/Recommendation.Metadata. A nil map marshals
// to "{}" so the column is never empty.
func MarshalMetadata(m map[string]interface{}) string {
	if m == nil {
		m = map[string]interface{}{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// UnmarshalMetadata parses a Metadata/Tags column back into a map. An empty
// or malformed column yields an empty map rather than an error — the bag is
// advisory, not a contract.
func UnmarshalMetadata(raw string) map[string]interface{} {
	if raw == "" {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

// MarshalTags serializes a string tag map to its text column form.
func MarshalTags(tags map[string]string) string {
	if tags == nil {
		tags = map[string]string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// UnmarshalTags parses the Tags column back into a string map.
func UnmarshalTags(raw string) map[string]string {
	if raw == "" {
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return map[string]string{}
	}
	return m
}
