package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/iwvelando/valuecalc/internal/solution"
	"gopkg.in/yaml.v3"
)

// solutionKeyOrder is the order of the leading keys in exported YAML; any
// other key follows alphabetically.
var solutionKeyOrder = []string{
	"id", "client_id", "name", "industry_id", "technology_id", "solution_type_id",
	"variant", "status", "categories", "parameters", "calculations",
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"
	var raw json.RawMessage
	if !h.decodeJSON(w, r, &raw, op) {
		return
	}

	var sol solution.Solution
	if err := json.Unmarshal(raw, &sol); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid solution: %v", err), op)
		return
	}

	// Round-trip through the typed solution so values are normalized, then
	// back to a map to control key order.
	normalized, err := json.Marshal(sol)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode solution: %v", err), op)
		return
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(normalized, &payload); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode solution: %v", err), op)
		return
	}

	yamlBytes, err := marshalOrderedYAML(payload, solutionKeyOrder)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode solution: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"solutionYaml": string(yamlBytes),
		"warnings":     sol.Warnings(),
	})
}

func marshalOrderedYAML(payload map[string]interface{}, leading []string) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range leading {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedMap{items: items}
	return yaml.Marshal(ordered)
}

type orderedMap struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedMap) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}
