package tools

import (
	"math"
	"regexp"
	"strings"
)

// Argument validation helpers. The JSON decoder hands handlers a
// map[string]any; these enforce the catalog schemas: unknown keys are
// rejected, required fields must be present, and JSON numbers must be whole
// when an integer is expected.

func checkKeys(args map[string]any, allowed ...string) *Error {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		allowedSet[k] = struct{}{}
	}
	for k := range args {
		if _, ok := allowedSet[k]; !ok {
			return invalidRequest("unknown argument %q", k)
		}
	}
	return nil
}

func requireString(args map[string]any, key string) (string, *Error) {
	v, ok := args[key]
	if !ok {
		return "", invalidRequest("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", invalidRequest("argument %q must be a non-empty string", key)
	}
	return s, nil
}

func optionalString(args map[string]any, key, def string) (string, *Error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidRequest("argument %q must be a string", key)
	}
	return s, nil
}

func optionalInt(args map[string]any, key string, def int) (int, *Error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, invalidRequest("argument %q must be an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, invalidRequest("argument %q must be an integer", key)
	}
}

func optionalBool(args map[string]any, key string, def bool) (bool, *Error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, invalidRequest("argument %q must be a boolean", key)
	}
	return b, nil
}

var portIDRE = regexp.MustCompile(`^\d+/\d+/\d+$`)

// requirePortID validates the chassis/slot/port triple form, e.g. "1/1/19".
func requirePortID(args map[string]any, key string) (string, *Error) {
	s, err := requireString(args, key)
	if err != nil {
		return "", err
	}
	if !portIDRE.MatchString(s) {
		return "", invalidRequest("argument %q must be a port id of the form c/s/p", key)
	}
	return s, nil
}
