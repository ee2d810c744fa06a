package solution

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RawValue is a static parameter value as authored. Authors enter numbers
// and strings interchangeably, so both decode into the same textual form.
type RawValue string

// String returns the raw text.
func (v RawValue) String() string {
	return string(v)
}

// UnmarshalJSON accepts a JSON string, number, boolean or null.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}
	switch trimmed[0] {
	case '{', '[':
		return fmt.Errorf("value must be a string or number, got %s", trimmed)
	}
	*v = RawValue(trimmed)
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (v *RawValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("value must be a scalar, line %d", node.Line)
	}
	if node.Tag == "!!null" {
		*v = ""
		return nil
	}
	*v = RawValue(node.Value)
	return nil
}
