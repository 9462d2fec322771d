// Copyright 2023 Matthew P. Dargan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scan lexically analyzes the reStructuredText subset that mcq
// documents use: paragraphs, section adornments, bullet lists, upperalpha
// enumerated lists, field lists, comments, and directives.
package scan

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Token represents a token or text string returned from the scanner.
type Token struct {
	Type Type   // The type of this item.
	Line int    // The line number on which this token appears
	Text string // The text of this item.
}

// Type identifies the type of lex items.
type Type int

const (
	EOF              Type = iota // EOF indicates an end-of-file character
	Error                        // Error occurred; value is text of error
	BlankLine                    // BlankLine separates elements
	Space                        // Space indents elements
	Paragraph                    // Paragraph is left-aligned text with no markup
	SectionAdornment             // SectionAdornment underlines a section title
	Bullet                       // Bullet starts a bullet list item
	EnumUpperAlpha               // EnumUpperAlpha starts a lettered list item; text is the letter
	Field                        // Field starts a field; text is the field name
	Comment                      // Comment starts a comment
	Directive                    // Directive starts a directive; text is the directive name
)

var typeNames = [...]string{
	EOF:              "EOF",
	Error:            "Error",
	BlankLine:        "BlankLine",
	Space:            "Space",
	Paragraph:        "Paragraph",
	SectionAdornment: "SectionAdornment",
	Bullet:           "Bullet",
	EnumUpperAlpha:   "EnumUpperAlpha",
	Field:            "Field",
	Comment:          "Comment",
	Directive:        "Directive",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func (i Token) String() string {
	switch {
	case i.Type == EOF:
		return "EOF"
	case i.Type == Error:
		return "error: " + i.Text
	case len(i.Text) > 10:
		return fmt.Sprintf("%s: %.10q...", i.Type, i.Text)
	}
	return fmt.Sprintf("%s: %q", i.Type, i.Text)
}

const eof = -1

// stateFn represents the state of the scanner as a function that returns the next state.
type stateFn func(*Scanner) stateFn

// Scanner holds the state of the scanner.
type Scanner struct {
	r         io.ByteReader // reads input bytes
	done      bool          // are we done scanning?
	name      string        // name of the input; used only for error reports
	buf       []byte        // I/O buffer, re-used
	input     string        // line of text being scanned
	lastRune  rune          // most recent return from next()
	lastWidth int           // size of that rune
	line      int           // line number in input
	pos       int           // current position in the input
	start     int           // start position of this item
	token     Token         // token to return to parser
	midline   bool          // a marker was emitted; the line's remainder is pending
}

// loadLine reads the next line of input and stores it in (appends it to) the input.
// (l.input may have data left over when we are called.)
// It strips carriage returns to make subsequent processing simpler.
func (l *Scanner) loadLine() {
	l.buf = l.buf[:0]
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			l.done = true
			break
		}
		if c != '\r' { // There will never be a \r in l.input.
			l.buf = append(l.buf, c)
		}
		if c == '\n' {
			break
		}
	}
	// Reset to beginning of input buffer if there is nothing pending.
	if l.start == l.pos {
		l.input = string(l.buf)
		l.start = 0
		l.pos = 0
	} else {
		l.input += string(l.buf)
	}
}

// readRune reads the next rune from the input.
func (l *Scanner) readRune() (rune, int) {
	if !l.done && l.pos == len(l.input) {
		l.loadLine()
	}
	if len(l.input) == l.pos {
		return eof, 0
	}
	return utf8.DecodeRuneInString(l.input[l.pos:])
}

// next returns the next rune in the input.
func (l *Scanner) next() rune {
	l.lastRune, l.lastWidth = l.readRune()
	l.pos += l.lastWidth
	return l.lastRune
}

// peek returns but does not consume the next rune in the input.
func (l *Scanner) peek() rune {
	r, _ := l.readRune()
	return r
}

// lineRest returns the unconsumed current line starting at the pending
// token, without its trailing newline.
func (l *Scanner) lineRest() string {
	s := l.input[l.start:]
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

// emit passes an item back to the client.
func (l *Scanner) emit(t Type) stateFn {
	text := l.input[l.start:l.pos]
	l.token = Token{t, l.line, text}
	if t == BlankLine {
		l.line++
	}
	l.start = l.pos
	return nil
}

// ignore skips over the pending input before this point.
// It tracks newlines in the ignored text, so use it only
// for text that is skipped without calling l.next.
func (l *Scanner) ignore() {
	l.line += strings.Count(l.input[l.start:l.pos], "\n")
	l.start = l.pos
}

// New creates and returns a new scanner.
func New(name string, r io.ByteReader) *Scanner {
	return &Scanner{r: r, name: name, line: 1}
}

// Next returns the next token.
func (l *Scanner) Next() Token {
	l.lastRune = eof
	l.lastWidth = 0
	l.token = Token{EOF, l.line, "EOF"}
	state := lexAny
	for {
		state = state(l)
		if state == nil {
			return l.token
		}
	}
}

const (
	bullets    = "*+-•‣⁃"
	adornments = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

var (
	directivePattern = regexp.MustCompile(`^\.\.[ \t]+([A-Za-z][A-Za-z0-9_-]*)::(?:[ \t]|$)`)
	fieldPattern     = regexp.MustCompile(`^:([A-Za-z][A-Za-z0-9 _.-]*):(?:[ \t]|$)`)
)

// lexAny scans the next construct. Markers (directives, comments, fields,
// lettered enumerators, bullets) are recognized only at the start of a
// line's content; once a marker is emitted the rest of the line is
// scanned by lexRest.
func lexAny(l *Scanner) stateFn {
	if l.midline {
		return lexRest
	}
	switch r := l.next(); {
	case r == eof:
		return nil
	case r == '\n':
		return l.emit(BlankLine)
	case r == ' ' || r == '\t':
		return lexIndent
	case l.isDirective(r):
		return lexDirective
	case l.isComment(r):
		return lexComment
	case l.isField(r):
		return lexField
	case l.isEnum(r):
		return lexEnum
	case l.isBullet(r):
		return lexBullet
	case l.isAdornment(r):
		return lexUntilEOL(l, SectionAdornment)
	default:
		return lexUntilEOL(l, Paragraph)
	}
}

// lexRest scans the remainder of a line after a marker token. The run of
// whitespace separating the marker from its text is dropped.
func lexRest(l *Scanner) stateFn {
	l.midline = false
	for {
		r := l.peek()
		if r != ' ' && r != '\t' {
			break
		}
		l.next()
	}
	l.ignore()
	switch l.peek() {
	case eof:
		return nil
	case '\n':
		l.pos++
		l.ignore()
		return lexAny
	}
	return lexUntilEOL(l, Paragraph)
}

// lexUntilEOL scans a lex item until a newline or end-of-file and skips
// the line terminator if present.
func lexUntilEOL(l *Scanner, typ Type) stateFn {
	for {
		switch l.peek() {
		case eof:
			return l.emit(typ)
		case '\n':
			i := l.emit(typ)
			l.pos++
			l.ignore()
			return i
		}
		l.next()
	}
}

// lexIndent scans a run of leading spaces and tabs.
func lexIndent(l *Scanner) stateFn {
	for {
		r := l.peek()
		if r != ' ' && r != '\t' {
			break
		}
		l.next()
	}
	return l.emit(Space)
}

// lexDirective scans a directive marker, emitting the directive name.
// The argument text, if any, is left for lexRest.
func lexDirective(l *Scanner) stateFn {
	m := directivePattern.FindStringSubmatchIndex(l.lineRest())
	nameStart, nameEnd := m[2], m[3]
	l.pos = l.start + nameStart
	l.ignore()
	l.pos += nameEnd - nameStart
	i := l.emit(Directive)
	l.pos += len("::")
	l.ignore()
	l.midline = true
	return i
}

// lexComment scans a comment marker. The marker is known to be present.
func lexComment(l *Scanner) stateFn {
	l.next()
	i := l.emit(Comment)
	l.midline = true
	return i
}

// lexField scans a field marker, emitting the field name without its
// surrounding colons.
func lexField(l *Scanner) stateFn {
	m := fieldPattern.FindStringSubmatchIndex(l.lineRest())
	nameStart, nameEnd := m[2], m[3]
	l.pos = l.start + nameStart
	l.ignore()
	l.pos += nameEnd - nameStart
	i := l.emit(Field)
	l.pos++ // closing colon
	l.ignore()
	l.midline = true
	return i
}

// lexEnum scans an upperalpha enumerator, emitting the letter.
func lexEnum(l *Scanner) stateFn {
	i := l.emit(EnumUpperAlpha)
	l.pos++ // trailing dot
	l.ignore()
	l.midline = true
	return i
}

// lexBullet scans a bullet marker.
func lexBullet(l *Scanner) stateFn {
	i := l.emit(Bullet)
	l.midline = true
	return i
}

// isDirective reports whether the scanner is on a directive marker.
func (l *Scanner) isDirective(r rune) bool {
	return r == '.' && directivePattern.MatchString(l.lineRest())
}

// isComment reports whether the scanner is on a comment.
func (l *Scanner) isComment(r rune) bool {
	if r != '.' {
		return false
	}
	rest := l.lineRest()
	if !strings.HasPrefix(rest, "..") || strings.HasPrefix(rest, "...") {
		return false
	}
	return len(rest) == 2 || rest[2] == ' ' || rest[2] == '\t'
}

// isField reports whether the scanner is on a field marker.
func (l *Scanner) isField(r rune) bool {
	return r == ':' && fieldPattern.MatchString(l.lineRest())
}

// isEnum reports whether the scanner is on an upperalpha enumerator:
// a single capital letter followed by a dot and whitespace or the end
// of the line.
func (l *Scanner) isEnum(r rune) bool {
	if r < 'A' || r > 'Z' {
		return false
	}
	rest := l.lineRest()
	if len(rest) < 2 || rest[1] != '.' {
		return false
	}
	return len(rest) == 2 || rest[2] == ' ' || rest[2] == '\t'
}

// isBullet reports whether the scanner is on a bullet.
func (l *Scanner) isBullet(r rune) bool {
	if !strings.ContainsRune(bullets, r) {
		return false
	}
	switch l.peek() {
	case ' ', '\t', '\n', eof:
		return true
	}
	return false
}

// isAdornment reports whether the scanner is on a section adornment:
// a line consisting of a single punctuation character repeated at least
// twice.
func (l *Scanner) isAdornment(r rune) bool {
	if !strings.ContainsRune(adornments, r) {
		return false
	}
	rest := strings.TrimRight(l.lineRest(), " \t")
	return len(rest) > 1 && rest == strings.Repeat(rest[:1], len(rest))
}
