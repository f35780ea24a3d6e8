package agent

import "github.com/m-mizutani/goerr/v2"

// StringArg extracts a required string argument from a tool call
func StringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", goerr.New("missing required argument", goerr.V("key", key))
	}
	s, ok := v.(string)
	if !ok {
		return "", goerr.New("argument is not a string", goerr.V("key", key))
	}
	if s == "" {
		return "", goerr.New("argument is empty", goerr.V("key", key))
	}
	return s, nil
}

// OptionalStringArg extracts an optional string argument, returning the
// fallback when absent or not a string.
func OptionalStringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
