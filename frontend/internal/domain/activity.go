package frontend_domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/microsmart/portal/shared/domain"
)

// Activities prepares a feed for display.
func Activities(in []domain.Activity) []Activity {
	out := make([]Activity, 0, len(in))
	for _, a := range in {
		out = append(out, Activity{Activity: a, Summary: summarize(a.Details)})
	}
	return out
}

// summarize flattens an activity's details object into "key: value" pairs
// ordered by key. Anything that is not an object is shown as is.
func summarize(details json.RawMessage) string {
	if len(details) == 0 || string(details) == "null" {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(details, &fields); err != nil {
		return strings.Trim(string(details), `"`)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", strings.ReplaceAll(k, "_", " "), fields[k]))
	}
	return strings.Join(parts, ", ")
}
