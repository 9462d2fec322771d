package mcq

import (
	"github.com/matthewdargan/mcq/directive"
	"github.com/matthewdargan/mcq/nodes"
)

// DirectiveName is the name the directive is registered under.
const DirectiveName = "mcq"

// Spec declares the mcq directive: one prompt argument that may contain
// whitespace, an indented content block, and the five documented options.
var Spec = directive.Spec{
	Name:                    DirectiveName,
	RequiredArguments:       1,
	FinalArgumentWhitespace: true,
	HasContent:              true,
	Options: map[string]directive.Validator{
		"answer":        directive.UpperAlpha,
		"class":         directive.ClassOption,
		"name":          directive.Unchanged,
		"numbered":      directive.Flag,
		"show_feedback": directive.Flag,
	},
}

// Directive builds a Question node from one mcq invocation.
//
// The node hierarchy produced here, after the transforms run, is:
//
//   - Question
//     - Body
//       - prompt and additional content
//     - ChoiceList
//       - Choice
//         - content
//         - Feedback
type Directive struct{}

// Run implements directive.Directive.
func (Directive) Run(inst *directive.Instance) ([]nodes.Node, error) {
	q := &Question{
		Answer:       inst.Options.String("answer"),
		Name:         inst.Options.String("name"),
		Numbered:     inst.Options.Has("numbered"),
		ShowFeedback: inst.Options.Has("show_feedback"),
	}
	q.AddClass("mcq")
	if q.Numbered {
		q.AddClass("numbered")
	}
	if q.ShowFeedback {
		q.AddClass("show-feedback")
	}
	for _, c := range inst.Options.Classes("class") {
		q.AddClass(c)
	}
	if q.Name != "" {
		q.AddID("mcq-" + directive.MakeID(q.Name))
	}
	ordinal := inst.Env.Count(DirectiveName)
	inst.Env.Logger.Debug("mcq question",
		"source", inst.Source, "line", inst.Line, "ordinal", ordinal, "name", q.Name)

	// The argument becomes the prompt, ahead of any body content.
	prompt := &nodes.Paragraph{}
	prompt.Append(inst.Parser.InlineText(inst.Arguments[0], inst.Line)...)
	body := &Body{}
	body.Append(prompt)
	if err := inst.Parser.ParseBody(inst.Content, inst.ContentOffset, body); err != nil {
		return nil, err
	}
	q.Append(body)
	return []nodes.Node{q}, nil
}

// Setup registers the mcq directive and its transforms with reg.
func Setup(reg *directive.Registry) error {
	if err := reg.Register(Spec, Directive{}); err != nil {
		return err
	}
	reg.AddTransform(ChoicesTransform{})
	reg.AddTransform(FeedbackTransform{})
	return nil
}
