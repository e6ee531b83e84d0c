package generator

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"text/template"
)

// funcMap is available to every template.
var funcMap = template.FuncMap{
	"join":       func(sep string, elems []string) string { return strings.Join(elems, sep) },
	"upper":      strings.ToUpper,
	"lower":      strings.ToLower,
	"hasPrefix":  strings.HasPrefix,
	"deref":      deref,
	"sortedKeys": sortedKeys,
	"add":        func(a, b int) int { return a + b },
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// sortedKeys returns the keys of any string-keyed map in order.
func sortedKeys(m any) ([]string, error) {
	v := reflect.ValueOf(m)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("sortedKeys: want a map with string keys, got %T", m)
	}
	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys, nil
}
