package message

import (
	"encoding/xml"
	"io"
	"strings"
)

// xmlNode is a lightweight element tree used for namespace-agnostic lookups.
// Element and attribute names are stored by their local part only, on
// purpose: ISO 20022 documents change namespace with every schema release,
// and field extraction must survive that churn. Do not make this
// namespace-strict.
type xmlNode struct {
	name     string
	attrs    map[string]string
	text     string
	children []*xmlNode
}

// parseTree decodes raw XML into an xmlNode tree rooted at the document
// element. It returns an error only for malformed XML; callers translate
// that into a parser note, never a failure.
func parseTree(raw string) (*xmlNode, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))

	var root *xmlNode
	var stack []*xmlNode

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}

	if root == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

// findFirst resolves path one local name at a time. Each step matches any
// descendant, candidates are tried in document order, and the walk
// backtracks: when an earlier candidate cannot resolve the rest of the
// path, a later one that can still wins. It mirrors the //local-name()
// lookups the extraction contract is written against.
func (n *xmlNode) findFirst(path ...string) *xmlNode {
	if len(path) == 0 {
		return n
	}
	for _, c := range n.descendants(path[0]) {
		if m := c.findFirst(path[1:]...); m != nil {
			return m
		}
	}
	return nil
}

// findText returns the trimmed text content of the element at path, or ""
// when the element is absent or empty.
func (n *xmlNode) findText(path ...string) string {
	el := n.findFirst(path...)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.text)
}

func (n *xmlNode) descendants(name string) []*xmlNode {
	var out []*xmlNode
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
		out = append(out, c.descendants(name)...)
	}
	return out
}
