package calcclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/iwvelando/valuecalc/pkg/mathutil"
)

// ParseResults decodes a service response and zips it against target by
// position: element i belongs to target[i] regardless of any name the
// service may echo. Extra elements are dropped, missing ones leave their
// targets out, and non-numeric elements are skipped.
//
// The response is either {"result": ...} or the value itself; a scalar is
// treated as a one-element array.
func ParseResults(body []byte, target []string) (Results, error) {
	var doc interface{}
	if err := json.Unmarshal(bytes.TrimSpace(body), &doc); err != nil {
		return nil, fmt.Errorf("calcclient: decode response: %w", err)
	}

	if obj, ok := doc.(map[string]interface{}); ok {
		if result, has := obj["result"]; has {
			doc = result
		}
	}

	values, ok := doc.([]interface{})
	if !ok {
		values = []interface{}{doc}
	}

	results := make(Results, len(target))
	for i := 0; i < len(values) && i < len(target); i++ {
		if v, ok := toFloat(values[i]); ok {
			results[target[i]] = v
		}
	}
	return results, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		return mathutil.ParseFloat(n)
	}
	return 0, false
}
