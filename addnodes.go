package mcq

import "github.com/matthewdargan/mcq/nodes"

// Question is the root node one mcq directive produces. Its children are
// a Body followed by, after transforms run, one or more ChoiceLists.
type Question struct {
	nodes.Element
	Answer       string // letter of the correct choice; empty for none
	Name         string // stable identifier from the name option
	Numbered     bool
	ShowFeedback bool
}

// Body wraps the question prompt and any additional prompt content.
type Body struct{ nodes.Element }

// ChoiceList is an upperalpha enumerated list converted into answer
// choices.
type ChoiceList struct{ nodes.Element }

// Choice is a single lettered answer.
type Choice struct {
	nodes.Element
	Value      string // the choice letter, A-Z
	IsCorrect  bool
	QuestionID string // HTML id of the owning question; empty when unnamed
}

// Feedback holds explanatory text for one choice.
type Feedback struct {
	nodes.Element
	IsCorrect bool
}
