// Package parse builds document trees from the reStructuredText subset
// the scan package tokenizes. Directives are resolved through a
// directive.Registry; their bodies are parsed recursively the same way.
package parse

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/matthewdargan/mcq/directive"
	"github.com/matthewdargan/mcq/nodes"
	"github.com/matthewdargan/mcq/scan"
)

// Parser converts source text into a nodes.Document.
type Parser struct {
	reg    *directive.Registry
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for parse warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// New returns a Parser that resolves directives through reg.
func New(reg *directive.Registry, opts ...Option) *Parser {
	p := &Parser{reg: reg}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse reads source text from r and returns its document tree. Directive
// errors are joined into the returned error; the document holds whatever
// parsed cleanly.
func (p *Parser) Parse(name string, r io.Reader) (*nodes.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return p.ParseString(name, string(data))
}

// ParseString parses source text from a string.
func (p *Parser) ParseString(name, input string) (*nodes.Document, error) {
	doc := &nodes.Document{Source: name}
	env := directive.NewEnv(name, p.logger)
	s := &state{parser: p, env: env, source: name}
	s.load(input, 1)
	s.parseBlocks(doc, 0, true)
	return doc, errors.Join(s.errs...)
}

// lineKind classifies one source line by its leading marker.
type lineKind int

const (
	kindBlank lineKind = iota
	kindText
	kindAdornment
	kindBullet
	kindEnum
	kindField
	kindComment
	kindDirective
)

// line is one classified source line.
type line struct {
	num    int      // 1-based line number, offset by the caller for nested blocks
	indent int      // leading whitespace, in bytes
	kind   lineKind
	marker string // directive name, field name, enum letter, or bullet
	text   string // text after the marker, or the whole line for kindText
	raw    string // the line as written, for nested reparsing
}

// state tracks one block-parsing pass over a run of lines.
type state struct {
	parser *Parser
	env    *directive.Env
	source string
	recs   []line
	idx    int
	errs   []error
}

// load tokenizes input and assembles per-line records. firstLine is the
// line number of input's first line in the original source.
func (s *state) load(input string, firstLine int) {
	raw := strings.Split(input, "\n")
	byNum := make(map[int]*line)
	sc := scan.New(s.source, strings.NewReader(input))
	for {
		tok := sc.Next()
		if tok.Type == scan.EOF {
			break
		}
		if tok.Type == scan.Error {
			s.errs = append(s.errs, fmt.Errorf("%s:%d: %s", s.source, firstLine+tok.Line-1, tok.Text))
			break
		}
		rec := byNum[tok.Line]
		if rec == nil {
			rec = &line{num: firstLine + tok.Line - 1}
			if tok.Line-1 < len(raw) {
				rec.raw = strings.TrimSuffix(raw[tok.Line-1], "\r")
			}
			byNum[tok.Line] = rec
		}
		switch tok.Type {
		case scan.BlankLine:
			rec.kind = kindBlank
		case scan.Space:
			rec.indent = len(tok.Text)
		case scan.Paragraph:
			if rec.kind == kindBlank {
				rec.kind = kindText
			}
			rec.text = tok.Text
		case scan.SectionAdornment:
			rec.kind = kindAdornment
			rec.text = tok.Text
		case scan.Bullet:
			rec.kind = kindBullet
			rec.marker = tok.Text
		case scan.EnumUpperAlpha:
			rec.kind = kindEnum
			rec.marker = tok.Text
		case scan.Field:
			rec.kind = kindField
			rec.marker = tok.Text
		case scan.Comment:
			rec.kind = kindComment
		case scan.Directive:
			rec.kind = kindDirective
			rec.marker = tok.Text
		}
	}
	// Flatten into line order; lines the scanner produced no token for
	// become blanks.
	last := 0
	for n := range byNum {
		if n > last {
			last = n
		}
	}
	for n := 1; n <= last; n++ {
		if rec, ok := byNum[n]; ok {
			s.recs = append(s.recs, *rec)
		} else {
			s.recs = append(s.recs, line{num: firstLine + n - 1, kind: kindBlank})
		}
	}
}

func (s *state) logger() *slog.Logger { return s.env.Logger }

// parseBlocks parses records at or beyond indent, appending block nodes
// to parent. Section titles are recognized only when sections is true
// (the document level).
func (s *state) parseBlocks(parent nodes.Parent, indent int, sections bool) {
	doc, _ := parent.(*nodes.Document)
	var stack []*nodes.Section
	var styles []byte

	container := func() nodes.Parent {
		if len(stack) > 0 {
			return stack[len(stack)-1]
		}
		return parent
	}

	for s.idx < len(s.recs) {
		rec := s.recs[s.idx]
		if rec.kind == kindBlank {
			s.idx++
			continue
		}
		if rec.indent < indent {
			return
		}
		if sections && doc != nil && rec.kind == kindText && rec.indent == 0 && s.isTitle() {
			adorn := s.recs[s.idx+1].text[0]
			depth := 0
			for i, c := range styles {
				if c == adorn {
					depth = i + 1
					break
				}
			}
			if depth == 0 {
				styles = append(styles, adorn)
				depth = len(styles)
			}
			for len(stack) >= depth {
				stack = stack[:len(stack)-1]
			}
			sec := &nodes.Section{Depth: depth}
			sec.AddID(directive.MakeID(rec.text))
			title := &nodes.Title{}
			title.Append(nodes.NewText(rec.text))
			sec.Append(title)
			container().Append(sec)
			stack = append(stack, sec)
			s.idx += 2
			continue
		}
		s.parseBlock(container())
	}
}

// isTitle reports whether the current text record is underlined by an
// adornment at least as long as the text.
func (s *state) isTitle() bool {
	if s.idx+1 >= len(s.recs) {
		return false
	}
	next := s.recs[s.idx+1]
	return next.kind == kindAdornment && next.indent == 0 &&
		len(next.text) >= len(s.recs[s.idx].text)
}

// parseBlock parses one block construct starting at the current record.
func (s *state) parseBlock(parent nodes.Parent) {
	rec := s.recs[s.idx]
	switch rec.kind {
	case kindDirective:
		s.parseDirective(parent)
	case kindComment:
		s.parseComment(parent)
	case kindBullet:
		s.parseBulletList(parent)
	case kindEnum:
		s.parseEnumList(parent)
	case kindField:
		s.parseFieldList(parent)
	case kindAdornment:
		// A transition or stray underline; nothing to render.
		s.idx++
	default:
		s.parseParagraph(parent)
	}
}

// parseParagraph folds consecutive text lines at the same indent into
// one paragraph.
func (s *state) parseParagraph(parent nodes.Parent) {
	rec := s.recs[s.idx]
	parts := []string{rec.text}
	s.idx++
	for s.idx < len(s.recs) {
		next := s.recs[s.idx]
		if next.kind != kindText || next.indent != rec.indent {
			break
		}
		parts = append(parts, next.text)
		s.idx++
	}
	p := &nodes.Paragraph{}
	p.Append(s.inlineText(strings.Join(parts, " "), rec.num)...)
	parent.Append(p)
}

// parseComment consumes a comment marker line and its indented block.
func (s *state) parseComment(parent nodes.Parent) {
	rec := s.recs[s.idx]
	s.idx++
	lines, _ := s.indentedBody(rec.indent)
	text := rec.text
	if rest := strings.TrimSpace(strings.Join(lines, "\n")); rest != "" {
		if text != "" {
			text += "\n"
		}
		text += rest
	}
	c := &nodes.Comment{}
	if text != "" {
		c.Append(nodes.NewText(text))
	}
	parent.Append(c)
}

// parseBulletList collects consecutive bullet items at the same indent.
func (s *state) parseBulletList(parent nodes.Parent) {
	list := &nodes.BulletList{}
	indent := s.recs[s.idx].indent
	for s.idx < len(s.recs) {
		rec := s.recs[s.idx]
		if rec.kind == kindBlank {
			if !s.nextIsItem(kindBullet, indent) {
				break
			}
			s.idx++
			continue
		}
		if rec.kind != kindBullet || rec.indent != indent {
			break
		}
		s.idx++
		list.Append(s.parseItem(rec))
	}
	parent.Append(list)
}

// parseEnumList collects consecutive upperalpha items at the same indent.
func (s *state) parseEnumList(parent nodes.Parent) {
	list := &nodes.EnumeratedList{EnumType: nodes.EnumUpperAlpha}
	indent := s.recs[s.idx].indent
	for s.idx < len(s.recs) {
		rec := s.recs[s.idx]
		if rec.kind == kindBlank {
			if !s.nextIsItem(kindEnum, indent) {
				break
			}
			s.idx++
			continue
		}
		if rec.kind != kindEnum || rec.indent != indent {
			break
		}
		s.idx++
		list.Append(s.parseItem(rec))
	}
	parent.Append(list)
}

// nextIsItem reports whether the next non-blank record continues a list
// of the given kind at the given indent.
func (s *state) nextIsItem(kind lineKind, indent int) bool {
	for i := s.idx; i < len(s.recs); i++ {
		if s.recs[i].kind == kindBlank {
			continue
		}
		return s.recs[i].kind == kind && s.recs[i].indent == indent
	}
	return false
}

// parseItem builds a list item from its marker record plus the indented
// block below it.
func (s *state) parseItem(rec line) *nodes.ListItem {
	item := &nodes.ListItem{}
	body, offset := s.indentedBody(rec.indent)
	lines := body
	if rec.text != "" {
		lines = append([]string{rec.text}, body...)
		offset = rec.num
	}
	if err := s.parseNested(lines, offset, item); err != nil {
		s.errs = append(s.errs, err)
	}
	return item
}

// parseFieldList collects consecutive fields at the same indent.
func (s *state) parseFieldList(parent nodes.Parent) {
	list := &nodes.FieldList{}
	indent := s.recs[s.idx].indent
	for s.idx < len(s.recs) {
		rec := s.recs[s.idx]
		if rec.kind == kindBlank {
			if !s.nextIsItem(kindField, indent) {
				break
			}
			s.idx++
			continue
		}
		if rec.kind != kindField || rec.indent != indent {
			break
		}
		s.idx++
		field := &nodes.Field{}
		name := &nodes.FieldName{}
		name.Append(nodes.NewText(rec.marker))
		body := &nodes.FieldBody{}
		lines, offset := s.indentedBody(rec.indent)
		if rec.text != "" {
			lines = append([]string{rec.text}, lines...)
			offset = rec.num
		}
		if err := s.parseNested(lines, offset, body); err != nil {
			s.errs = append(s.errs, err)
		}
		field.Append(name, body)
		list.Append(field)
	}
	parent.Append(list)
}

// parseDirective parses a directive invocation: marker line, option
// fields, and content block.
func (s *state) parseDirective(parent nodes.Parent) {
	rec := s.recs[s.idx]
	s.idx++

	spec, dir, ok := s.parser.reg.Lookup(rec.marker)
	if !ok {
		s.logger().Warn("unknown directive",
			"source", s.source, "line", rec.num, "directive", rec.marker)
		lines, _ := s.indentedBody(rec.indent)
		c := &nodes.Comment{}
		c.Append(nodes.NewText(strings.TrimSpace(rec.raw + "\n" + strings.Join(lines, "\n"))))
		parent.Append(c)
		return
	}

	// Option fields immediately follow the marker line.
	var rawOpts []directive.RawOption
	for s.idx < len(s.recs) {
		opt := s.recs[s.idx]
		if opt.kind != kindField || opt.indent <= rec.indent {
			break
		}
		s.idx++
		value := opt.text
		for s.idx < len(s.recs) {
			cont := s.recs[s.idx]
			if cont.kind != kindText || cont.indent <= opt.indent {
				break
			}
			value += " " + cont.text
			s.idx++
		}
		rawOpts = append(rawOpts, directive.RawOption{Name: opt.marker, Value: value, Line: opt.num})
	}

	content, offset := s.indentedBody(rec.indent)
	fail := func(err error) {
		s.errs = append(s.errs, err)
		s.logger().Warn("directive failed",
			"source", s.source, "line", rec.num, "directive", rec.marker, "error", err)
	}

	var args []string
	arg := strings.TrimSpace(rec.text)
	if arg != "" {
		if spec.FinalArgumentWhitespace {
			args = []string{arg}
		} else {
			args = strings.Fields(arg)
		}
	}
	if len(args) < spec.RequiredArguments {
		fail(fmt.Errorf("%s:%d: directive %q: %d argument(s) required, %d supplied",
			s.source, rec.num, rec.marker, spec.RequiredArguments, len(args)))
		return
	}
	if maxArgs := spec.RequiredArguments + spec.OptionalArguments; len(args) > maxArgs {
		fail(fmt.Errorf("%s:%d: directive %q: at most %d argument(s) allowed, %d supplied",
			s.source, rec.num, rec.marker, maxArgs, len(args)))
		return
	}
	if len(content) > 0 && !spec.HasContent {
		fail(fmt.Errorf("%s:%d: directive %q: no content permitted", s.source, rec.num, rec.marker))
		return
	}

	opts, err := spec.Validate(rawOpts)
	if err != nil {
		fail(fmt.Errorf("%s:%d: %w", s.source, rec.num, err))
		return
	}

	inst := &directive.Instance{
		Name:          rec.marker,
		Arguments:     args,
		Options:       opts,
		Content:       content,
		ContentOffset: offset,
		Line:          rec.num,
		Source:        s.source,
		Parser:        bodyParser{parser: s.parser, env: s.env, source: s.source},
		Env:           s.env,
	}
	produced, err := dir.Run(inst)
	if err != nil {
		fail(fmt.Errorf("%s:%d: directive %q: %w", s.source, rec.num, rec.marker, err))
		return
	}
	parent.Append(produced...)
}

// indentedBody gathers the dedented lines owned by a construct whose
// marker sits at markerIndent, advancing past them. Leading and trailing
// blank lines are dropped.
func (s *state) indentedBody(markerIndent int) ([]string, int) {
	start := s.idx
	end := s.idx
	for end < len(s.recs) {
		rec := s.recs[end]
		if rec.kind != kindBlank && rec.indent <= markerIndent {
			break
		}
		end++
	}
	// Trim surrounding blanks.
	for start < end && s.recs[start].kind == kindBlank {
		start++
	}
	last := end
	for last > start && s.recs[last-1].kind == kindBlank {
		last--
	}
	s.idx = end
	if start >= last {
		return nil, 0
	}
	dedent := -1
	for i := start; i < last; i++ {
		if rec := s.recs[i]; rec.kind != kindBlank && (dedent < 0 || rec.indent < dedent) {
			dedent = rec.indent
		}
	}
	lines := make([]string, 0, last-start)
	for i := start; i < last; i++ {
		rec := s.recs[i]
		if rec.kind == kindBlank || len(rec.raw) < dedent {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, rec.raw[dedent:])
	}
	return lines, s.recs[start].num
}

// parseNested reparses dedented lines as blocks appended to parent.
func (s *state) parseNested(lines []string, offset int, parent nodes.Parent) error {
	sub := &state{parser: s.parser, env: s.env, source: s.source}
	sub.load(strings.Join(lines, "\n"), offset)
	sub.parseBlocks(parent, 0, false)
	return errors.Join(sub.errs...)
}

// inlineText converts a run of text into inline nodes. Inline markup is
// passed through as plain text.
func (s *state) inlineText(text string, _ int) []nodes.Node {
	return []nodes.Node{nodes.NewText(text)}
}

// bodyParser adapts state construction to the directive.BodyParser
// interface so directives can nested-parse their content.
type bodyParser struct {
	parser *Parser
	env    *directive.Env
	source string
}

func (b bodyParser) ParseBody(lines []string, offset int, parent nodes.Parent) error {
	s := &state{parser: b.parser, env: b.env, source: b.source}
	return s.parseNested(lines, offset, parent)
}

func (b bodyParser) InlineText(text string, line int) []nodes.Node {
	s := &state{parser: b.parser, env: b.env, source: b.source}
	return s.inlineText(text, line)
}
