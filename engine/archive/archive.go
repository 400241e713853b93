// Package archive implements the hierarchical node/attribute format used to save and
// load scenes. Nodes carry a name, ordered key/value attributes and ordered children,
// and are encoded as YAML documents.
package archive

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingAttr is returned by typed getters when the key is absent.
var ErrMissingAttr = errors.New("archive: missing attribute")

// Attr is a single keyed field on a Node. Values are stored as strings.
type Attr struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Node is one element of the archive tree.
type Node struct {
	Name     string  `yaml:"name"`
	Attrs    []Attr  `yaml:"attrs,omitempty"`
	Children []*Node `yaml:"children,omitempty"`
}

// NewNode creates an empty node with the given name.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// AddChild appends a new named child and returns it.
func (n *Node) AddChild(name string) *Node {
	c := NewNode(name)
	n.Children = append(n.Children, c)
	return c
}

// Child returns the first child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every child with the given name in order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Has reports whether the attribute is present.
func (n *Node) Has(key string) bool {
	_, ok := n.lookup(key)
	return ok
}

func (n *Node) lookup(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetString sets or replaces an attribute, keeping its original position.
func (n *Node) SetString(key, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Value: value})
}

// String returns the attribute value.
func (n *Node) String(key string) (string, error) {
	v, ok := n.lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrMissingAttr, n.Name, key)
	}
	return v, nil
}

// StringOr returns the attribute value or def if absent.
func (n *Node) StringOr(key, def string) string {
	if v, ok := n.lookup(key); ok {
		return v
	}
	return def
}

// SetBool stores a boolean attribute.
func (n *Node) SetBool(key string, v bool) {
	n.SetString(key, strconv.FormatBool(v))
}

// Bool parses a boolean attribute.
func (n *Node) Bool(key string) (bool, error) {
	s, err := n.String(key)
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("archive: %s.%s: %w", n.Name, key, err)
	}
	return v, nil
}

// SetInt stores an integer attribute.
func (n *Node) SetInt(key string, v int64) {
	n.SetString(key, strconv.FormatInt(v, 10))
}

// Int parses an integer attribute.
func (n *Node) Int(key string) (int64, error) {
	s, err := n.String(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("archive: %s.%s: %w", n.Name, key, err)
	}
	return v, nil
}

// SetFloat stores a float attribute with full float32 precision.
func (n *Node) SetFloat(key string, v float32) {
	n.SetString(key, strconv.FormatFloat(float64(v), 'g', -1, 32))
}

// Float parses a float attribute.
func (n *Node) Float(key string) (float32, error) {
	s, err := n.String(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("archive: %s.%s: %w", n.Name, key, err)
	}
	return float32(v), nil
}

// SetVec stores a float vector as a space separated list.
func (n *Node) SetVec(key string, v ...float32) {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	n.SetString(key, strings.Join(parts, " "))
}

// Vec3 parses a three component vector attribute.
func (n *Node) Vec3(key string) ([3]float32, error) {
	var out [3]float32
	vals, err := n.vec(key, 3)
	if err != nil {
		return out, err
	}
	copy(out[:], vals)
	return out, nil
}

// Vec4 parses a four component vector attribute.
func (n *Node) Vec4(key string) ([4]float32, error) {
	var out [4]float32
	vals, err := n.vec(key, 4)
	if err != nil {
		return out, err
	}
	copy(out[:], vals)
	return out, nil
}

func (n *Node) vec(key string, size int) ([]float32, error) {
	s, err := n.String(key)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(s)
	if len(fields) != size {
		return nil, fmt.Errorf("archive: %s.%s: want %d components, got %d", n.Name, key, size, len(fields))
	}
	out := make([]float32, size)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("archive: %s.%s[%d]: %w", n.Name, key, i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// Encode writes the node tree as a YAML document.
//
// Parameters:
//   - w: the destination writer
//
// Returns:
//   - error: an error if encoding fails
func (n *Node) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("archive: encode %q: %w", n.Name, err)
	}
	return enc.Close()
}

// Decode reads a node tree from a YAML document.
//
// Parameters:
//   - r: the source reader
//
// Returns:
//   - *Node: the decoded root node
//   - error: an error if decoding fails
func Decode(r io.Reader) (*Node, error) {
	var n Node
	if err := yaml.NewDecoder(r).Decode(&n); err != nil {
		return nil, fmt.Errorf("archive: decode: %w", err)
	}
	return &n, nil
}
