package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	DefaultJSONIndent = 4
	DefaultYAMLIndent = 2
)

// EncodeJSON indents nested values by indent spaces. A negative indent
// writes compact JSON on one line.
func EncodeJSON(v any, indent int) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if indent < 0 {
		out, err = json.Marshal(v)
	} else {
		out, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	}
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return out, nil
}

// DecodeJSON accepts comments and trailing commas.
func DecodeJSON(data []byte, v any) error {
	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// EncodeYAML writes block-style YAML, or flow style for every mapping and
// sequence when flow is set. Non-ASCII text is emitted as-is.
func EncodeYAML(v any, indent int, flow bool) ([]byte, error) {
	if indent <= 0 {
		indent = DefaultYAMLIndent
	}
	var doc yaml.Node
	if err := doc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if flow {
		setFlowStyle(&doc)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func setFlowStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style |= yaml.FlowStyle
	}
	for _, child := range n.Content {
		setFlowStyle(child)
	}
}

// DecodeYAML returns whatever the document holds: a map[string]any for a
// mapping, []any for a sequence, or a scalar. An empty or null document
// yields an empty, non-nil map.
func DecodeYAML(data []byte) (any, error) {
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if out == nil {
		return map[string]any{}, nil
	}
	return out, nil
}
