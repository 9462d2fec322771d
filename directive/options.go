package directive

import (
	"fmt"
	"strings"
	"unicode"
)

// Validator normalizes and validates one raw option value.
type Validator func(raw string) (string, error)

// OptionError describes an invalid or unknown directive option.
type OptionError struct {
	Directive string
	Option    string
	Line      int
	Reason    string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("directive %q: option %q (line %d): %s", e.Directive, e.Option, e.Line, e.Reason)
}

// Unchanged accepts any value, trimmed of surrounding whitespace.
func Unchanged(raw string) (string, error) {
	return strings.TrimSpace(raw), nil
}

// Flag accepts only an empty value; flags take no argument.
func Flag(raw string) (string, error) {
	if strings.TrimSpace(raw) != "" {
		return "", fmt.Errorf("no argument is allowed; %q supplied", strings.TrimSpace(raw))
	}
	return "", nil
}

// ClassOption normalizes a whitespace-separated list of CSS class names
// and rejoins them with single spaces.
func ClassOption(raw string) (string, error) {
	names := strings.Fields(raw)
	if len(names) == 0 {
		return "", fmt.Errorf("class names required")
	}
	for i, name := range names {
		id := MakeID(name)
		if id == "" {
			return "", fmt.Errorf("cannot make %q into a class name", name)
		}
		names[i] = id
	}
	return strings.Join(names, " "), nil
}

// UpperAlpha accepts a single letter A-Z, uppercasing it if needed.
func UpperAlpha(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 1 {
		return "", fmt.Errorf("%q is not a single letter A-Z", s)
	}
	r := rune(s[0])
	switch {
	case r >= 'A' && r <= 'Z':
		return s, nil
	case r >= 'a' && r <= 'z':
		return strings.ToUpper(s), nil
	}
	return "", fmt.Errorf("%q is not a single letter A-Z", s)
}

// MakeID converts s into an identifier usable as a CSS class or HTML id:
// lowercased, with runs of non-alphanumeric characters collapsed into
// single hyphens and leading digits or hyphens dropped.
func MakeID(s string) string {
	var sb strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if hyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			hyphen = false
			if sb.Len() == 0 && unicode.IsDigit(r) {
				continue
			}
			sb.WriteRune(r)
		default:
			hyphen = true
		}
	}
	return sb.String()
}

// Options holds a directive invocation's validated options.
type Options struct {
	values map[string]string
}

// RawOption is an option as collected by the parser, before validation.
type RawOption struct {
	Name  string
	Value string
	Line  int
}

// Validate checks raw options against the spec, returning the validated
// set. Unknown, duplicate, and invalid options are reported as
// *OptionError.
func (s Spec) Validate(raw []RawOption) (Options, error) {
	opts := Options{values: make(map[string]string, len(raw))}
	for _, ro := range raw {
		v, ok := s.Options[ro.Name]
		if !ok {
			return Options{}, &OptionError{Directive: s.Name, Option: ro.Name, Line: ro.Line, Reason: "unknown option"}
		}
		if _, dup := opts.values[ro.Name]; dup {
			return Options{}, &OptionError{Directive: s.Name, Option: ro.Name, Line: ro.Line, Reason: "duplicate option"}
		}
		normalized, err := v(ro.Value)
		if err != nil {
			return Options{}, &OptionError{Directive: s.Name, Option: ro.Name, Line: ro.Line, Reason: err.Error()}
		}
		opts.values[ro.Name] = normalized
	}
	return opts, nil
}

// Has reports whether the named option was supplied.
func (o Options) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// String returns the named option's validated value, or "" if unset.
func (o Options) String(name string) string {
	return o.values[name]
}

// Classes splits the named option's value into class names.
func (o Options) Classes(name string) []string {
	return strings.Fields(o.values[name])
}
