package access

import "fmt"

// Locked marker keys returned in place of redacted values.
const (
	MarkerLocked        = "_locked"
	MarkerRequiredLevel = "_required_level"
	MarkerPreview       = "_preview"
)

// FilterProduct redacts a product record down to exactly the fields the
// given level may view. Permitted values are copied unchanged; everything
// else is replaced with a locked marker carrying the required level and a
// lossy preview. The decision is made field by field against the sensitivity
// schema, so an unclassified field is always locked, never passed through.
func FilterProduct(fields map[string]any, level Level) map[string]any {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		if nested, ok := value.(map[string]any); ok && IsGroup(name) {
			out[name] = filterGroup(name, nested, level)
			continue
		}
		// A group key holding a non-object falls through here and, being
		// absent from the flat schema, requires after_rfq.
		need := Sensitivity(name)
		if level.Sufficient(need) {
			out[name] = value
			continue
		}
		out[name] = lockedMarker(need, preview(value))
	}
	return out
}

func filterGroup(group string, fields map[string]any, level Level) map[string]any {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		need := GroupSensitivity(group, name)
		if level.Sufficient(need) {
			out[name] = value
			continue
		}
		out[name] = lockedMarker(need, preview(value))
	}
	return out
}

func lockedMarker(need Level, hint string) map[string]any {
	return map[string]any{
		MarkerLocked:        true,
		MarkerRequiredLevel: need.String(),
		MarkerPreview:       hint,
	}
}

// preview produces a deliberately lossy hint of the hidden value. Short
// strings and all non-string values yield an empty hint so nothing can be
// reconstructed.
func preview(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	runes := []rune(s)
	if len(runes) < 8 {
		return ""
	}
	return fmt.Sprintf("%s***", string(runes[:3]))
}
