// Package diff computes minimal field-level change sets.
package diff

import (
	"reflect"
	"sort"

	"github.com/ppiankov/coasterscan/internal/model"
)

// Compute returns the entries of proposed whose key is absent from current
// or whose value differs. Equality is strict: 1952 and 1952.0 differ, and
// null versus a value is a change.
func Compute(current, proposed model.FieldMap) model.FieldMap {
	changes := make(model.FieldMap)
	for key, value := range proposed {
		old, ok := current[key]
		if !ok || !reflect.DeepEqual(old, value) {
			changes[key] = value
		}
	}
	return changes
}

// Keys returns the changed field names in the order given by names, followed
// by any remaining keys
func Keys(changes model.FieldMap, names []string) []string {
	seen := make(map[string]bool, len(changes))
	var keys []string
	for _, name := range names {
		if _, ok := changes[name]; ok {
			keys = append(keys, name)
			seen[name] = true
		}
	}
	var rest []string
	for key := range changes {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
