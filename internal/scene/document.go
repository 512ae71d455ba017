// Package scene is the file-backed host: a YAML or JSON scene document exposed
// through the tree, position, and component accessors the core consumes.
package scene

import (
	"fmt"
	"strings"

	"github.com/conn-castle/rigkit/internal/codec"
	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/physbone"
)

// Format is a document encoding.
type Format = codec.Format

// Supported formats.
const (
	FormatYAML = codec.FormatYAML
	FormatJSON = codec.FormatJSON
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	return codec.FormatFor(path)
}

// Vec3 is a world-space position.
type Vec3 [3]float64

// Component is one typed attachment on a node.
type Component struct {
	Type     string           `json:"type" yaml:"type"`
	PhysBone *physbone.Config `json:"physBone,omitempty" yaml:"physBone,omitempty"`
}

// NodeSpec is a node as written in the document.
type NodeSpec struct {
	Name       string      `json:"name" yaml:"name"`
	Position   Vec3        `json:"position" yaml:"position,flow"`
	Components []Component `json:"components,omitempty" yaml:"components,omitempty"`
	Children   []*NodeSpec `json:"children,omitempty" yaml:"children,omitempty"`
}

// Document is the serialized scene.
type Document struct {
	Name  string      `json:"name" yaml:"name"`
	Roots []*NodeSpec `json:"roots" yaml:"roots"`
}

// Decode parses data in the given format. source names the document in errors.
func Decode(data []byte, format Format, source string) (*Document, error) {
	var doc Document
	if err := codec.Decode(data, format, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errkind.ErrMalformed, source, err)
	}
	return &doc, nil
}

// Encode serializes doc in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	return codec.Encode(doc, format)
}

func (d *Document) validate() error {
	stack := append([]*NodeSpec(nil), d.Roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			return fmt.Errorf("null node")
		}
		for i, c := range n.Components {
			if strings.TrimSpace(c.Type) == "" {
				return fmt.Errorf("node %q component %d has no type", n.Name, i)
			}
		}
		stack = append(stack, n.Children...)
	}
	return nil
}
