// Package html renders document trees as HTML pages. Question nodes are
// rendered with the CSS classes and data attributes that client-side
// script and stylesheets key off.
package html

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/matthewdargan/mcq"
	"github.com/matthewdargan/mcq/nodes"
)

// Options controls page-level output.
type Options struct {
	// Title overrides the page title; by default the first section
	// title is used.
	Title string
	// Stylesheet is emitted as a link element when non-empty.
	Stylesheet string
	// Language is the html element's lang attribute. Defaults to "en".
	Language string
}

// Writer renders documents with a fixed set of options.
type Writer struct {
	opts Options
}

// NewWriter returns a Writer using opts.
func NewWriter(opts Options) *Writer {
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Writer{opts: opts}
}

// WriteDocument renders doc as a complete HTML page.
func (w *Writer) WriteDocument(dst io.Writer, doc *nodes.Document) error {
	page := etree.NewDocument()
	root := page.CreateElement("html")
	root.CreateAttr("lang", w.opts.Language)

	head := root.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")
	head.CreateElement("title").SetText(w.pageTitle(doc))
	if w.opts.Stylesheet != "" {
		link := head.CreateElement("link")
		link.CreateAttr("rel", "stylesheet")
		link.CreateAttr("href", w.opts.Stylesheet)
	}

	body := root.CreateElement("body")
	r := &renderer{}
	for _, child := range doc.Children() {
		r.visit(body, child)
	}

	page.Indent(2)
	if _, err := io.WriteString(dst, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := page.WriteTo(dst); err != nil {
		return err
	}
	return nil
}

// RenderFragment renders a single node subtree, without the page
// skeleton. Intended for tests and previews.
func RenderFragment(n nodes.Node) (string, error) {
	doc := etree.NewDocument()
	r := &renderer{}
	r.visit(&doc.Element, n)
	doc.Indent(2)
	return doc.WriteToString()
}

// pageTitle picks the page title: the configured override or the first
// section title in the document.
func (w *Writer) pageTitle(doc *nodes.Document) string {
	if w.opts.Title != "" {
		return w.opts.Title
	}
	title := ""
	nodes.Each(doc, func(t *nodes.Title, _ nodes.Parent) {
		if title == "" {
			title = nodes.AsText(t)
		}
	})
	return title
}

// renderer walks the doctree building etree elements.
type renderer struct {
	depth int // current section depth, for heading levels
}

func (r *renderer) visit(parent *etree.Element, n nodes.Node) {
	switch v := n.(type) {
	case *nodes.Text:
		parent.CreateText(v.Value)
	case *nodes.Section:
		sec := parent.CreateElement("section")
		if ids := v.IDs(); len(ids) > 0 {
			sec.CreateAttr("id", ids[0])
		}
		r.depth++
		r.visitChildren(sec, v)
		r.depth--
	case *nodes.Title:
		level := r.depth
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		h := parent.CreateElement(fmt.Sprintf("h%d", level))
		r.visitChildren(h, v)
	case *nodes.Paragraph:
		r.visitChildren(parent.CreateElement("p"), v)
	case *nodes.BulletList:
		r.visitChildren(parent.CreateElement("ul"), v)
	case *nodes.EnumeratedList:
		ol := parent.CreateElement("ol")
		if v.EnumType == nodes.EnumUpperAlpha {
			ol.CreateAttr("type", "A")
		}
		r.visitChildren(ol, v)
	case *nodes.ListItem:
		r.visitChildren(parent.CreateElement("li"), v)
	case *nodes.FieldList:
		r.visitChildren(parent.CreateElement("dl"), v)
	case *nodes.Field:
		r.visitChildren(parent, v)
	case *nodes.FieldName:
		r.visitChildren(parent.CreateElement("dt"), v)
	case *nodes.FieldBody:
		r.visitChildren(parent.CreateElement("dd"), v)
	case *nodes.Comment:
		// Comments are excluded from output.
	case *mcq.Question:
		div := parent.CreateElement("div")
		div.CreateAttr("class", strings.Join(v.Classes(), " "))
		if ids := v.IDs(); len(ids) > 0 {
			div.CreateAttr("id", ids[0])
		}
		if v.Answer != "" {
			div.CreateAttr("data-answer", v.Answer)
		}
		r.visitChildren(div, v)
	case *mcq.Body:
		div := parent.CreateElement("div")
		div.CreateAttr("class", "mcq-body")
		r.visitChildren(div, v)
	case *mcq.ChoiceList:
		ol := parent.CreateElement("ol")
		ol.CreateAttr("class", "mcq-choices")
		ol.CreateAttr("type", "A")
		r.visitChildren(ol, v)
	case *mcq.Choice:
		li := parent.CreateElement("li")
		li.CreateAttr("class", "mcq-choice")
		li.CreateAttr("data-value", v.Value)
		li.CreateAttr("data-correct", strconv.FormatBool(v.IsCorrect))
		r.visitChildren(li, v)
	case *mcq.Feedback:
		div := parent.CreateElement("div")
		div.CreateAttr("class", "mcq-feedback")
		div.CreateAttr("data-correct", strconv.FormatBool(v.IsCorrect))
		r.visitChildren(div, v)
	default:
		// Unknown containers render their children transparently.
		r.visitChildren(parent, n)
	}
}

func (r *renderer) visitChildren(parent *etree.Element, n nodes.Node) {
	for _, child := range n.Children() {
		r.visit(parent, child)
	}
}
