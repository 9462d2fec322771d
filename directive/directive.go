// Package directive provides the registration and invocation machinery
// that markup extensions plug into: directive specs with validated
// options, a name registry, and document transforms.
package directive

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/matthewdargan/mcq/nodes"
)

// Directive is implemented by markup extensions. Run converts one
// directive invocation into document nodes.
type Directive interface {
	Run(inst *Instance) ([]nodes.Node, error)
}

// Spec declares how a directive's invocations are parsed.
type Spec struct {
	// Name is the directive name as written in markup.
	Name string
	// RequiredArguments is the number of arguments the directive needs.
	RequiredArguments int
	// OptionalArguments is the number of extra arguments accepted.
	OptionalArguments int
	// FinalArgumentWhitespace allows the last argument to contain
	// whitespace, consuming the rest of the argument text.
	FinalArgumentWhitespace bool
	// HasContent allows an indented content block.
	HasContent bool
	// Options maps option names to their validators.
	Options map[string]Validator
}

// Instance is one parsed directive invocation, handed to Run.
type Instance struct {
	Name          string
	Arguments     []string
	Options       Options
	Content       []string // dedented content block lines
	ContentOffset int      // line number of the first content line
	Line          int      // line number of the directive marker
	Source        string   // name of the input
	Parser        BodyParser
	Env           *Env
}

// BodyParser lets a directive parse nested markup without depending on
// the parser package.
type BodyParser interface {
	// ParseBody parses content lines as blocks, appending the resulting
	// nodes to parent. offset is the line number of lines[0] in the
	// original source.
	ParseBody(lines []string, offset int, parent nodes.Parent) error
	// InlineText converts a run of argument or prompt text into inline
	// nodes.
	InlineText(text string, line int) []nodes.Node
}

// Env carries per-build state shared by directives and transforms.
type Env struct {
	Source   string
	Logger   *slog.Logger
	counters map[string]int
}

// NewEnv returns an Env for one source document. A nil logger is
// replaced with a discarding one.
func NewEnv(source string, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Env{Source: source, Logger: logger, counters: make(map[string]int)}
}

// Count increments and returns the named counter. The first call
// returns 1.
func (e *Env) Count(name string) int {
	e.counters[name]++
	return e.counters[name]
}

// Transform rewrites a parsed document after all directives have run.
type Transform interface {
	// Priority orders transforms; lower runs first.
	Priority() int
	Apply(doc *nodes.Document, env *Env) error
}

// Registry maps directive names to implementations and holds the
// transform pipeline.
type Registry struct {
	directives map[string]registered
	transforms []Transform
}

type registered struct {
	spec Spec
	dir  Directive
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{directives: make(map[string]registered)}
}

// Register adds a directive under its spec name. Re-registering a name
// is an error.
func (r *Registry) Register(spec Spec, d Directive) error {
	if spec.Name == "" {
		return fmt.Errorf("directive spec has no name")
	}
	if _, ok := r.directives[spec.Name]; ok {
		return fmt.Errorf("directive %q already registered", spec.Name)
	}
	r.directives[spec.Name] = registered{spec: spec, dir: d}
	return nil
}

// Lookup returns the spec and implementation registered under name.
func (r *Registry) Lookup(name string) (Spec, Directive, bool) {
	reg, ok := r.directives[name]
	return reg.spec, reg.dir, ok
}

// AddTransform adds a document transform to the pipeline.
func (r *Registry) AddTransform(t Transform) {
	r.transforms = append(r.transforms, t)
}

// ApplyTransforms runs the registered transforms over doc in priority
// order. The first failing transform stops the pipeline.
func (r *Registry) ApplyTransforms(doc *nodes.Document, env *Env) error {
	ordered := append([]Transform(nil), r.transforms...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	for _, t := range ordered {
		if err := t.Apply(doc, env); err != nil {
			return err
		}
	}
	return nil
}

// discardHandler drops all records so Env never needs a nil check
// around its logger.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
