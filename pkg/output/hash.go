package output

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// strippedKeys names the solver-internal keys that vary run-to-run for
// an otherwise identical logical request (§4.6 meta.inputHash).
var strippedKeys = map[string]bool{"slots": true, "x": true, "model": true}

// InputHash returns the SHA-256 hex digest of input with strippedKeys
// removed at every nesting level. encoding/json already sorts map keys
// alphabetically when marshaling a map[string]interface{}, so the
// result is stable regardless of Go's randomised map iteration order.
func InputHash(input map[string]interface{}) (string, error) {
	cleaned := cleanCopy(input)
	encoded, err := json.Marshal(cleaned)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

func cleanCopy(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if strippedKeys[k] {
			continue
		}
		out[k] = cleanValue(v)
	}
	return out
}

func cleanValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cleanCopy(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cleanValue(e)
		}
		return out
	default:
		return v
	}
}
