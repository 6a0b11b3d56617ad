package langfiles

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLCodec stores files as a single YAML mapping of string scalars.
type YAMLCodec struct{}

func (YAMLCodec) Name() string      { return "yaml" }
func (YAMLCodec) Extension() string { return ".yaml" }

func (YAMLCodec) Decode(data []byte) (*Messages, error) {
	messages := &Messages{}
	if isEmptyDocument(data) {
		return messages, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("langfiles: decode yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return messages, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level value is not a mapping", ErrNotFlat)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if valueNode.Kind == yaml.AliasNode && valueNode.Alias != nil {
			valueNode = valueNode.Alias
		}
		if valueNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: key %q", ErrNotFlat, keyNode.Value)
		}
		value := valueNode.Value
		if valueNode.Tag == "!!null" {
			value = ""
		}
		messages.Set(keyNode.Value, value)
	}
	return messages, nil
}

func (YAMLCodec) DecodeTree(data []byte) (map[string]any, error) {
	tree := map[string]any{}
	if isEmptyDocument(data) {
		return tree, nil
	}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("langfiles: decode yaml: %w", err)
	}
	return tree, nil
}

func (YAMLCodec) Encode(messages *Messages) ([]byte, error) {
	if messages.Len() == 0 {
		return []byte("{}\n"), nil
	}
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for key, value := range messages.All() {
		root.Content = append(root.Content,
			yamlString(key),
			yamlString(value),
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("langfiles: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("langfiles: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// yamlString builds a string scalar. Line breaks with no other content are
// double quoted; as block scalars they would read back empty.
func yamlString(value string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	if strings.ContainsAny(value, "\r\n") && strings.TrimSpace(value) == "" {
		node.Style = yaml.DoubleQuotedStyle
	}
	return node
}
