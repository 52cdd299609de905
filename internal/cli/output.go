package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/coasterscan/internal/diff"
	"github.com/ppiankov/coasterscan/internal/model"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// formatValue renders a field value, with null for nil
func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

// printChanges lists suggested fields next to their current values
func printChanges(w io.Writer, kind model.Kind, current, suggested model.FieldMap) {
	for _, key := range diff.Keys(suggested, model.FieldNames(kind)) {
		fmt.Fprintf(w, "  %-16s %s -> %s\n", key, formatValue(current[key]), formatValue(suggested[key]))
	}
}

func splitFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
