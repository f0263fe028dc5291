package protocol

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/tombee/awsdeck/internal/value"
)

// listWrappers are the element names AWS uses for list entries.
var listWrappers = map[string]bool{
	"member": true,
	"item":   true,
}

// Responses never carry a DTD; refusing one rules out entity expansion.
var (
	doctypePattern = regexp.MustCompile(`(?i)<!DOCTYPE`)
	entityPattern  = regexp.MustCompile(`(?i)<!ENTITY`)
)

var errDirective = errors.New("XML directives are not allowed")

type xmlNode struct {
	name     string
	text     strings.Builder
	children []*xmlNode
}

// parseXML decodes an XML document into a value tree:
//   - the document root becomes a single-key mapping {rootName: ...}
//   - leaf elements become string scalars
//   - an element whose children are all <member> or <item> becomes a sequence
//   - repeated sibling elements become a sequence under their shared name
//   - any other element with children becomes a mapping
//
// Documents with DOCTYPE or ENTITY declarations are rejected.
func parseXML(protocol string, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, empty(protocol)
	}
	if doctypePattern.Match(body) || entityPattern.Match(body) {
		return nil, malformed(protocol, errDirective)
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = true
	var root *xmlNode
	var stack []*xmlNode

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(protocol, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			} else if root == nil {
				root = node
			} else {
				return nil, malformed(protocol, errors.New("multiple root elements"))
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.Directive:
			return nil, malformed(protocol, errDirective)
		}
	}

	if root == nil {
		return nil, malformed(protocol, errors.New("no root element"))
	}
	if len(stack) != 0 {
		return nil, malformed(protocol, io.ErrUnexpectedEOF)
	}

	return map[string]any{root.name: root.toValue()}, nil
}

func (n *xmlNode) toValue() any {
	if len(n.children) == 0 {
		return strings.TrimSpace(n.text.String())
	}

	if n.isList() {
		items := make([]any, 0, len(n.children))
		for _, c := range n.children {
			items = append(items, c.toValue())
		}
		return items
	}

	counts := make(map[string]int, len(n.children))
	for _, c := range n.children {
		counts[c.name]++
	}

	out := make(map[string]any, len(counts))
	for _, c := range n.children {
		v := c.toValue()
		if counts[c.name] == 1 {
			out[c.name] = v
			continue
		}
		seq, _ := out[c.name].([]any)
		out[c.name] = append(seq, v)
	}
	return out
}

func (n *xmlNode) isList() bool {
	for _, c := range n.children {
		if !listWrappers[c.name] {
			return false
		}
	}
	return true
}

// encodeXML renders params as children of a root element. Mapping keys are
// emitted sorted, sequences as repeated elements.
func encodeXML(root string, params map[string]any) []byte {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	start := xml.StartElement{Name: xml.Name{Local: root}}
	_ = enc.EncodeToken(start)
	encodeXMLMap(enc, params)
	_ = enc.EncodeToken(start.End())
	_ = enc.Flush()
	return buf.Bytes()
}

func encodeXMLMap(enc *xml.Encoder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		encodeXMLValue(enc, k, m[k])
	}
}

func encodeXMLValue(enc *xml.Encoder, name string, v any) {
	if items, ok := v.([]any); ok {
		for _, item := range items {
			encodeXMLValue(enc, name, item)
		}
		return
	}

	start := xml.StartElement{Name: xml.Name{Local: name}}
	_ = enc.EncodeToken(start)
	if m, ok := v.(map[string]any); ok {
		encodeXMLMap(enc, m)
	} else {
		_ = enc.EncodeToken(xml.CharData(value.ToString(v)))
	}
	_ = enc.EncodeToken(start.End())
}
