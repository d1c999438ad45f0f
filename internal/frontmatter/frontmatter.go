// Package frontmatter splits Markdown documents into a YAML header and a body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var bom = []byte{0xEF, 0xBB, 0xBF}

var (
	// ErrMissingClosingDelimiter indicates the document opened a front matter
	// block but never closed it.
	ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")
	// ErrNotMapping indicates the front matter block is valid YAML but not a
	// key/value mapping.
	ErrNotMapping = errors.New("front matter must be a mapping of keys to values")
	// ErrUnsupportedValue indicates a field whose value is neither a scalar nor
	// a list of scalars.
	ErrUnsupportedValue = errors.New("front matter values must be scalars or lists of scalars")
)

// Matter holds the decoded front matter fields. Values are either string or
// []string.
type Matter struct {
	Fields map[string]any
}

// String returns the scalar value of key, or "" when absent or a list.
func (m Matter) String(key string) string {
	if s, ok := m.Fields[key].(string); ok {
		return s
	}
	return ""
}

// Title returns the title field.
func (m Matter) Title() string {
	return m.String("title")
}

// Template returns the template requested by the document. "layout" is
// accepted as an alias.
func (m Matter) Template() string {
	if name := m.String("template"); name != "" {
		return name
	}
	return m.String("layout")
}

// Split separates a `---` delimited front matter block from the body.
//
// If the document does not open with a delimiter line, had is false and body
// is the full input (minus a leading BOM).
func Split(content []byte) (front []byte, body []byte, had bool, err error) {
	content = bytes.TrimPrefix(content, bom)

	first, rest, ok := cutLine(content)
	if !ok && len(first) == 0 {
		return nil, content, false, nil
	}
	if string(first) != delimiter {
		return nil, content, false, nil
	}
	if !ok {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	start := len(content) - len(rest)
	offset := start
	for offset <= len(content) {
		line, next, found := cutLine(content[offset:])
		if string(line) == delimiter {
			return content[start:offset], next, true, nil
		}
		if !found {
			break
		}
		offset = len(content) - len(next)
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// cutLine returns the first line of b without its terminator, the remainder
// after the terminator, and whether a terminator was found.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, rest, found
}

// Parse splits content and decodes its front matter. Documents without front
// matter yield an empty Matter and the whole content as body.
func Parse(content []byte) (Matter, []byte, error) {
	front, body, had, err := Split(content)
	if err != nil {
		return Matter{}, nil, fmt.Errorf("split front matter: %w", err)
	}
	if !had {
		return Matter{Fields: map[string]any{}}, body, nil
	}
	fields, err := Decode(front)
	if err != nil {
		return Matter{}, nil, fmt.Errorf("decode front matter: %w", err)
	}
	return Matter{Fields: fields}, body, nil
}

// Decode parses a raw YAML block (without delimiters) into simple fields.
// Scalars keep their literal text so dates and booleans reach templates as
// written.
func Decode(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return fields, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %w", key.Line, ErrNotMapping)
		}
		v, err := decodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key.Value, err)
		}
		fields[key.Value] = v
	}
	return fields, nil
}

func decodeValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind == yaml.AliasNode && item.Alias != nil {
				item = item.Alias
			}
			if item.Kind != yaml.ScalarNode {
				return nil, ErrUnsupportedValue
			}
			out = append(out, item.Value)
		}
		return out, nil
	default:
		return nil, ErrUnsupportedValue
	}
}
