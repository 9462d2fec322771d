package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewdargan/mcq/directive"
	"github.com/matthewdargan/mcq/nodes"
)

// noteDirective records its Instance and produces one paragraph per
// content line, for asserting how invocations are parsed.
type noteDirective struct {
	inst *directive.Instance
}

var noteSpec = directive.Spec{
	Name:                    "note",
	RequiredArguments:       1,
	FinalArgumentWhitespace: true,
	HasContent:              true,
	Options: map[string]directive.Validator{
		"answer":   directive.UpperAlpha,
		"numbered": directive.Flag,
	},
}

func (d *noteDirective) Run(inst *directive.Instance) ([]nodes.Node, error) {
	d.inst = inst
	body := &nodes.Paragraph{}
	body.Append(inst.Parser.InlineText(inst.Arguments[0], inst.Line)...)
	return []nodes.Node{body}, nil
}

func newParser(t *testing.T) (*Parser, *noteDirective) {
	t.Helper()
	reg := directive.NewRegistry()
	d := &noteDirective{}
	require.NoError(t, reg.Register(noteSpec, d))
	return New(reg), d
}

func TestParseSections(t *testing.T) {
	p, _ := newParser(t)
	doc, err := p.ParseString("test.rst", strings.Join([]string{
		"Top Title",
		"=========",
		"",
		"Intro paragraph.",
		"",
		"Subsection",
		"----------",
		"",
		"Nested paragraph.",
		"",
		"Second Top",
		"==========",
		"",
		"More text.",
		"",
	}, "\n"))
	require.NoError(t, err)

	require.Len(t, doc.Children(), 2)
	top := doc.Children()[0].(*nodes.Section)
	assert.Equal(t, 1, top.Depth)
	assert.Equal(t, []string{"top-title"}, top.IDs())

	require.Len(t, top.Children(), 3)
	title := top.Children()[0].(*nodes.Title)
	assert.Equal(t, "Top Title", nodes.AsText(title))
	assert.Equal(t, "Intro paragraph.", nodes.AsText(top.Children()[1]))

	sub := top.Children()[2].(*nodes.Section)
	assert.Equal(t, 2, sub.Depth)
	assert.Equal(t, []string{"subsection"}, sub.IDs())

	second := doc.Children()[1].(*nodes.Section)
	assert.Equal(t, 1, second.Depth)
	assert.Equal(t, "Second TopMore text.", nodes.AsText(second))
}

func TestParseParagraphFolding(t *testing.T) {
	p, _ := newParser(t)
	doc, err := p.ParseString("test.rst", "first line\nsecond line\n\nnext paragraph\n")
	require.NoError(t, err)

	require.Len(t, doc.Children(), 2)
	assert.Equal(t, "first line second line", nodes.AsText(doc.Children()[0]))
	assert.Equal(t, "next paragraph", nodes.AsText(doc.Children()[1]))
}

func TestParseBulletList(t *testing.T) {
	p, _ := newParser(t)
	doc, err := p.ParseString("test.rst", "- one\n- two\n\n- three\n")
	require.NoError(t, err)

	require.Len(t, doc.Children(), 1)
	list := doc.Children()[0].(*nodes.BulletList)
	require.Len(t, list.Children(), 3)
	assert.Equal(t, "two", nodes.AsText(list.Children()[1]))
}

func TestParseEnumList(t *testing.T) {
	p, _ := newParser(t)
	doc, err := p.ParseString("test.rst", strings.Join([]string{
		"A. first choice",
		"B. second choice",
		"C. third choice",
		"",
	}, "\n"))
	require.NoError(t, err)

	require.Len(t, doc.Children(), 1)
	list := doc.Children()[0].(*nodes.EnumeratedList)
	assert.Equal(t, nodes.EnumUpperAlpha, list.EnumType)
	require.Len(t, list.Children(), 3)
	item := list.Children()[0].(*nodes.ListItem)
	assert.Equal(t, "first choice", nodes.AsText(item))
}

func TestParseEnumItemWithBody(t *testing.T) {
	p, _ := newParser(t)
	doc, err := p.ParseString("test.rst", strings.Join([]string{
		"A. first choice",
		"",
		"   :feedback: Not this one.",
		"",
		"B. second choice",
		"",
	}, "\n"))
	require.NoError(t, err)

	list := doc.Children()[0].(*nodes.EnumeratedList)
	require.Len(t, list.Children(), 2)
	item := list.Children()[0].(*nodes.ListItem)
	require.Len(t, item.Children(), 2)
	assert.IsType(t, &nodes.Paragraph{}, item.Children()[0])

	fields := item.Children()[1].(*nodes.FieldList)
	field := fields.Children()[0].(*nodes.Field)
	assert.Equal(t, "feedback", nodes.AsText(field.Children()[0]))
	assert.Equal(t, "Not this one.", nodes.AsText(field.Children()[1]))
}

func TestParseFieldList(t *testing.T) {
	p, _ := newParser(t)
	doc, err := p.ParseString("test.rst", ":author: Ada\n:status: draft\n")
	require.NoError(t, err)

	list := doc.Children()[0].(*nodes.FieldList)
	require.Len(t, list.Children(), 2)
	field := list.Children()[1].(*nodes.Field)
	assert.Equal(t, "status", nodes.AsText(field.Children()[0]))
	assert.Equal(t, "draft", nodes.AsText(field.Children()[1]))
}

func TestParseComment(t *testing.T) {
	p, _ := newParser(t)
	doc, err := p.ParseString("test.rst", ".. just a comment\n   with a second line\n")
	require.NoError(t, err)

	require.Len(t, doc.Children(), 1)
	c := doc.Children()[0].(*nodes.Comment)
	assert.Contains(t, nodes.AsText(c), "just a comment")
}

func TestParseDirective(t *testing.T) {
	p, d := newParser(t)
	doc, err := p.ParseString("test.rst", strings.Join([]string{
		".. note:: What is the answer?",
		"   :answer: b",
		"   :numbered:",
		"",
		"   Some content here.",
		"",
		"   A. one",
		"   B. two",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.NotNil(t, d.inst)

	assert.Equal(t, []string{"What is the answer?"}, d.inst.Arguments)
	assert.Equal(t, "B", d.inst.Options.String("answer"))
	assert.True(t, d.inst.Options.Has("numbered"))
	assert.Equal(t, 1, d.inst.Line)
	assert.Equal(t, 5, d.inst.ContentOffset)
	assert.Equal(t, []string{
		"Some content here.", "", "A. one", "B. two",
	}, d.inst.Content)
	require.Len(t, doc.Children(), 1)
}

func TestParseDirectiveBlankLineBeforeContent(t *testing.T) {
	p, d := newParser(t)
	_, err := p.ParseString("test.rst", strings.Join([]string{
		".. note:: prompt",
		"   :answer: b",
		"",
		"   body",
		"",
	}, "\n"))
	require.NoError(t, err)
	assert.Equal(t, "B", d.inst.Options.String("answer"))
	assert.Equal(t, []string{"body"}, d.inst.Content)
}

func TestParseUnknownDirective(t *testing.T) {
	p, _ := newParser(t)
	doc, err := p.ParseString("test.rst", ".. mystery:: anything\n   content\n")
	require.NoError(t, err)

	require.Len(t, doc.Children(), 1)
	c := doc.Children()[0].(*nodes.Comment)
	assert.Contains(t, nodes.AsText(c), "mystery")
}

func TestParseDirectiveErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "missing argument",
			input: ".. note::\n\n   content\n",
			want:  "1 argument(s) required",
		},
		{
			name:  "flag with argument",
			input: ".. note:: prompt\n   :numbered: yes\n",
			want:  "no argument is allowed",
		},
		{
			name:  "unknown option",
			input: ".. note:: prompt\n   :bogus: value\n",
			want:  "unknown option",
		},
		{
			name:  "invalid answer",
			input: ".. note:: prompt\n   :answer: AB\n",
			want:  "not a single letter A-Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newParser(t)
			_, err := p.ParseString("test.rst", tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseReader(t *testing.T) {
	p, _ := newParser(t)
	doc, err := p.Parse("test.rst", strings.NewReader("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "test.rst", doc.Source)
	assert.Equal(t, "hello", nodes.AsText(doc))
}
