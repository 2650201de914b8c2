package object

import "sort"

// CollectDigests walks a serialized entity tree and returns the distinct
// content digests of every embedded array reference, sorted. A nested map
// counts as a reference when it carries a string "data" and a numeric
// "length" field.
func CollectDigests(m map[string]any) []string {
	seen := make(map[string]bool)
	walkDigests(m, seen)

	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func walkDigests(v any, seen map[string]bool) {
	switch node := v.(type) {
	case map[string]any:
		data, hasData := node["data"].(string)
		_, hasLength := node["length"].(float64)
		if hasData && hasLength && data != "" {
			seen[data] = true
		}
		for _, child := range node {
			walkDigests(child, seen)
		}
	case []any:
		for _, child := range node {
			walkDigests(child, seen)
		}
	}
}
