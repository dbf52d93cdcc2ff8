package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultNamePlaceholder is replaced with the customer's display name
const DefaultNamePlaceholder = "[Customer Name]"

// SystemPrompt is the flattened prompt text shared by all sessions
type SystemPrompt struct {
	Text        string
	Placeholder string
}

// For returns the prompt personalized for one customer
func (p SystemPrompt) For(name string) string {
	placeholder := p.Placeholder
	if placeholder == "" {
		placeholder = DefaultNamePlaceholder
	}
	return strings.ReplaceAll(p.Text, placeholder, name)
}

// LoadSystemPrompt reads a YAML prompt file and flattens it to plain text
func LoadSystemPrompt(path, placeholder string) (SystemPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SystemPrompt{}, fmt.Errorf("error reading prompt file: %w", err)
	}

	text, err := FlattenPrompt(data)
	if err != nil {
		return SystemPrompt{}, fmt.Errorf("error parsing prompt file %s: %w", path, err)
	}
	return SystemPrompt{Text: text, Placeholder: placeholder}, nil
}

// FlattenPrompt turns a YAML document into prompt text, walking top-level
// keys in document order. A string becomes a paragraph, a list becomes one
// line per item, and a nested mapping contributes one paragraph per value.
func FlattenPrompt(data []byte) (string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", err
	}
	if len(doc.Content) == 0 {
		return "", nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode {
		return strings.TrimSpace(root.Value), nil
	}
	if root.Kind != yaml.MappingNode {
		return "", fmt.Errorf("prompt document must be a mapping, got %s", kindName(root.Kind))
	}

	var b strings.Builder
	for i := 1; i < len(root.Content); i += 2 {
		value := root.Content[i]
		switch value.Kind {
		case yaml.MappingNode:
			for j := 1; j < len(value.Content); j += 2 {
				b.WriteString(nodeText(value.Content[j]))
				b.WriteString("\n\n")
			}
		default:
			b.WriteString(nodeText(value))
			b.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func nodeText(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return strings.TrimRight(n.Value, "\n")
	case yaml.AliasNode:
		return nodeText(n.Alias)
	case yaml.SequenceNode:
		lines := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			lines = append(lines, nodeText(item))
		}
		return strings.Join(lines, "\n")
	case yaml.MappingNode:
		parts := make([]string, 0, len(n.Content)/2)
		for i := 1; i < len(n.Content); i += 2 {
			parts = append(parts, nodeText(n.Content[i]))
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "scalar"
	}
}
