// Package nodes defines the document tree that the parser produces and
// the HTML writer consumes.
package nodes

import "strings"

// Node is implemented by every element of a document tree.
type Node interface {
	Children() []Node
}

// Parent is implemented by nodes that can hold children.
type Parent interface {
	Node
	Append(children ...Node)
	SetChildren(children []Node)
}

// Element is the base for nodes that carry attributes and children.
// Embed it to satisfy Parent.
type Element struct {
	children []Node
	attrs    map[string]string
	classes  []string
	ids      []string
}

// Children returns the element's child nodes.
func (e *Element) Children() []Node { return e.children }

// Append adds children to the end of the element.
func (e *Element) Append(children ...Node) {
	e.children = append(e.children, children...)
}

// SetChildren replaces the element's children.
func (e *Element) SetChildren(children []Node) { e.children = children }

// Get returns the named attribute and whether it is set.
func (e *Element) Get(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// Set sets the named attribute.
func (e *Element) Set(key, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[key] = value
}

// Classes returns the element's CSS classes in insertion order.
func (e *Element) Classes() []string { return e.classes }

// AddClass appends a CSS class, ignoring duplicates.
func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.classes = append(e.classes, class)
}

// HasClass reports whether the element carries the given CSS class.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

// IDs returns the element's identifiers in insertion order.
func (e *Element) IDs() []string { return e.ids }

// AddID appends an identifier, ignoring duplicates.
func (e *Element) AddID(id string) {
	if id == "" {
		return
	}
	for _, existing := range e.ids {
		if existing == id {
			return
		}
	}
	e.ids = append(e.ids, id)
}

// Text is a leaf node holding character data.
type Text struct {
	Value string
}

// Children returns nil; text nodes are leaves.
func (t *Text) Children() []Node { return nil }

// NewText returns a text node holding s.
func NewText(s string) *Text { return &Text{Value: s} }

// EnumType identifies the numbering style of an enumerated list.
type EnumType string

// Enumeration styles.
const (
	EnumArabic     EnumType = "arabic"
	EnumUpperAlpha EnumType = "upperalpha"
	EnumLowerAlpha EnumType = "loweralpha"
)

// Document is the root of a parsed source file.
type Document struct {
	Element
	Source string // name of the input, used for error reports
}

// Section groups a title with its content.
type Section struct {
	Element
	Depth int // 1 for top-level sections
}

// Title holds a section's heading text.
type Title struct{ Element }

// Paragraph holds a run of inline content.
type Paragraph struct{ Element }

// NewParagraph returns a paragraph holding the given text.
func NewParagraph(text string) *Paragraph {
	p := &Paragraph{}
	p.Append(NewText(text))
	return p
}

// BulletList is an unordered list.
type BulletList struct{ Element }

// EnumeratedList is an ordered list.
type EnumeratedList struct {
	Element
	EnumType EnumType
}

// ListItem is a single entry in a bullet or enumerated list.
type ListItem struct{ Element }

// FieldList holds a sequence of fields.
type FieldList struct{ Element }

// Field is a single name/body pair; its children are a FieldName
// followed by a FieldBody.
type Field struct{ Element }

// FieldName holds a field's name text.
type FieldName struct{ Element }

// FieldBody holds a field's content.
type FieldBody struct{ Element }

// Comment holds source text excluded from output.
type Comment struct{ Element }

// AsText returns the concatenated text of n's subtree.
func AsText(n Node) string {
	var sb strings.Builder
	Walk(n, func(n Node, _ Parent) WalkStatus {
		if t, ok := n.(*Text); ok {
			sb.WriteString(t.Value)
		}
		return Continue
	})
	return sb.String()
}
