// =============================================================================
// MX to MT101 Converter - XML Tree
// =============================================================================
//
// A minimal element tree built from encoding/xml tokens. Elements keep their
// namespace-qualified name, but every lookup below matches on the local name
// only, so documents with a default namespace and documents with prefixes are
// navigated the same way.
//
// NAVIGATION:
//   Child(name)      - first direct child with the local name
//   Path(a, b, c)    - Child(a).Child(b).Child(c), nil if any step is missing
//   Find(name)       - first descendant in document order
//   FindAll(name)    - every descendant in document order
//   Text()           - trimmed character data of the node and its descendants
//
// All methods are safe to call on a nil *Node.
//
// =============================================================================

package xmlparser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Node is one element of the parsed document.
type Node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Node

	// chardata holds the character data found directly inside this element,
	// interleaved text from children is kept on the children.
	chardata strings.Builder
}

// buildTree reads the whole document and returns its root element.
func buildTree(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var root *Node
	var stack []*Node

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name, Attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].chardata.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Name.Local)
	}

	return root, nil
}

// Child returns the first direct child whose local name matches.
func (n *Node) Child(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// Path descends through the named children in order.
func (n *Node) Path(locals ...string) *Node {
	current := n
	for _, local := range locals {
		current = current.Child(local)
		if current == nil {
			return nil
		}
	}
	return current
}

// Find returns the first descendant (depth-first, document order) whose
// local name matches. The node itself is not considered.
func (n *Node) Find(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
		if found := c.Find(local); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant whose local name matches, in document order.
func (n *Node) FindAll(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name.Local == local {
			out = append(out, c)
		}
		out = append(out, c.FindAll(local)...)
	}
	return out
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// Text returns the trimmed text content of the node, including the text of
// its descendants.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	n.collectText(&sb)
	return strings.TrimSpace(sb.String())
}

func (n *Node) collectText(sb *strings.Builder) {
	sb.WriteString(n.chardata.String())
	for _, c := range n.Children {
		c.collectText(sb)
	}
}
