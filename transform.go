package mcq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewdargan/mcq/directive"
	"github.com/matthewdargan/mcq/nodes"
)

// Transform priorities; choices must be lettered before feedback fields
// can attach to them.
const (
	choicesPriority  = 200
	feedbackPriority = 201
)

// ChoicesTransform converts each upperalpha enumerated list inside a
// Question into a ChoiceList of lettered Choice nodes, marking the one
// that matches the question's answer.
type ChoicesTransform struct{}

// Priority implements directive.Transform.
func (ChoicesTransform) Priority() int { return choicesPriority }

// Apply implements directive.Transform.
func (ChoicesTransform) Apply(doc *nodes.Document, env *directive.Env) error {
	var errs []error
	nodes.Each(doc, func(q *Question, _ nodes.Parent) {
		var qid string
		if ids := q.IDs(); len(ids) > 0 {
			qid = ids[0]
		}
		matched := false
		// Replacing a list splices new Choice nodes into the tree, and
		// those may hold upperalpha lists of their own. Re-scan the live
		// tree until none remain so nested lists are converted too.
		for {
			list, parent := nextUpperAlphaList(q)
			if list == nil {
				break
			}
			choices := &ChoiceList{}
			over := false
			for i, item := range list.Children() {
				if i >= 26 {
					errs = append(errs, fmt.Errorf("%s: mcq has more than 26 choices", env.Source))
					over = true
					break
				}
				letter := string(rune('A' + i))
				choice := &Choice{
					Value:      letter,
					QuestionID: qid,
					IsCorrect:  letter == q.Answer,
				}
				if choice.IsCorrect {
					matched = true
				}
				choice.Append(item.Children()...)
				choices.Append(choice)
			}
			if over {
				break
			}
			nodes.Replace(parent, list, choices)
		}
		if q.Answer != "" && !matched {
			env.Logger.Warn("mcq answer matches no choice",
				"source", env.Source, "answer", q.Answer, "name", q.Name)
		}
		if q.Answer == "" {
			env.Logger.Warn("mcq has no answer option; no choice marked correct",
				"source", env.Source, "name", q.Name)
		}
	})
	return errors.Join(errs...)
}

// nextUpperAlphaList returns the first upperalpha enumerated list still
// present in the tree under root, with its parent.
func nextUpperAlphaList(root nodes.Node) (*nodes.EnumeratedList, nodes.Parent) {
	var list *nodes.EnumeratedList
	var parent nodes.Parent
	nodes.Walk(root, func(n nodes.Node, p nodes.Parent) nodes.WalkStatus {
		if l, ok := n.(*nodes.EnumeratedList); ok && l.EnumType == nodes.EnumUpperAlpha {
			list, parent = l, p
			return nodes.Stop
		}
		return nodes.Continue
	})
	return list, parent
}

// FeedbackTransform replaces each field list holding a "feedback" field
// inside a Choice with a Feedback node carrying the field's content.
type FeedbackTransform struct{}

// Priority implements directive.Transform.
func (FeedbackTransform) Priority() int { return feedbackPriority }

// Apply implements directive.Transform.
func (FeedbackTransform) Apply(doc *nodes.Document, _ *directive.Env) error {
	nodes.Each(doc, func(choice *Choice, _ nodes.Parent) {
		nodes.Each(choice, func(list *nodes.FieldList, parent nodes.Parent) {
			body, ok := feedbackBody(list)
			if !ok {
				return
			}
			fb := &Feedback{IsCorrect: choice.IsCorrect}
			children := body.Children()
			if len(children) == 1 {
				if p, isPara := children[0].(*nodes.Paragraph); isPara {
					fb.Append(p)
					nodes.Replace(parent, list, fb)
					return
				}
			}
			fb.Append(children...)
			nodes.Replace(parent, list, fb)
		})
	})
	return nil
}

// feedbackBody returns the body of the first field in list whose name is
// "feedback", compared case-insensitively.
func feedbackBody(list *nodes.FieldList) (*nodes.FieldBody, bool) {
	for _, child := range list.Children() {
		field, ok := child.(*nodes.Field)
		if !ok {
			continue
		}
		var name *nodes.FieldName
		var body *nodes.FieldBody
		for _, fc := range field.Children() {
			switch v := fc.(type) {
			case *nodes.FieldName:
				name = v
			case *nodes.FieldBody:
				body = v
			}
		}
		if name == nil || body == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(nodes.AsText(name)), "feedback") {
			return body, true
		}
	}
	return nil, false
}
