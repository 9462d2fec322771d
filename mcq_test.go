package mcq_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewdargan/mcq"
	"github.com/matthewdargan/mcq/directive"
	"github.com/matthewdargan/mcq/nodes"
	"github.com/matthewdargan/mcq/parse"
)

func buildDoc(t *testing.T, src string) *nodes.Document {
	t.Helper()
	reg := directive.NewRegistry()
	require.NoError(t, mcq.Setup(reg))
	doc, err := parse.New(reg).ParseString("test.rst", src)
	require.NoError(t, err)
	require.NoError(t, reg.ApplyTransforms(doc, directive.NewEnv("test.rst", nil)))
	return doc
}

func question(t *testing.T, doc *nodes.Document) *mcq.Question {
	t.Helper()
	var q *mcq.Question
	nodes.Each(doc, func(n *mcq.Question, _ nodes.Parent) {
		q = n
	})
	require.NotNil(t, q, "document has no question")
	return q
}

func choices(q *mcq.Question) []*mcq.Choice {
	var cs []*mcq.Choice
	nodes.Each[*mcq.Choice](q, func(c *mcq.Choice, _ nodes.Parent) {
		cs = append(cs, c)
	})
	return cs
}

const fullQuestion = `.. mcq:: Which planet is largest?
   :answer: B
   :name: planets
   :numbered:
   :show_feedback:
   :class: quiz

   Pick the single best answer.

   A. Mars

      :feedback: Mars is small.

   B. Jupiter

      :feedback: Correct!

   C. Venus
`

func TestQuestion(t *testing.T) {
	doc := buildDoc(t, fullQuestion)
	q := question(t, doc)

	assert.Equal(t, "B", q.Answer)
	assert.Equal(t, "planets", q.Name)
	assert.True(t, q.Numbered)
	assert.True(t, q.ShowFeedback)
	assert.Equal(t, []string{"mcq", "numbered", "show-feedback", "quiz"}, q.Classes())
	assert.Equal(t, []string{"mcq-planets"}, q.IDs())

	require.Len(t, q.Children(), 1)
	body := q.Children()[0].(*mcq.Body)
	require.GreaterOrEqual(t, len(body.Children()), 3)
	assert.Equal(t, "Which planet is largest?", nodes.AsText(body.Children()[0]))
	assert.Equal(t, "Pick the single best answer.", nodes.AsText(body.Children()[1]))
	assert.IsType(t, &mcq.ChoiceList{}, body.Children()[2])
}

func TestChoices(t *testing.T) {
	doc := buildDoc(t, fullQuestion)
	q := question(t, doc)

	cs := choices(q)
	require.Len(t, cs, 3)
	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, want, cs[i].Value)
		assert.Equal(t, "mcq-planets", cs[i].QuestionID)
	}
	assert.False(t, cs[0].IsCorrect)
	assert.True(t, cs[1].IsCorrect)
	assert.False(t, cs[2].IsCorrect)
	assert.Contains(t, nodes.AsText(cs[1]), "Jupiter")
}

func TestFeedback(t *testing.T) {
	doc := buildDoc(t, fullQuestion)
	cs := choices(question(t, doc))
	require.Len(t, cs, 3)

	var fbs []*mcq.Feedback
	nodes.Each[*mcq.Feedback](cs[0], func(fb *mcq.Feedback, _ nodes.Parent) {
		fbs = append(fbs, fb)
	})
	require.Len(t, fbs, 1)
	assert.False(t, fbs[0].IsCorrect)
	assert.Equal(t, "Mars is small.", nodes.AsText(fbs[0]))

	fbs = nil
	nodes.Each[*mcq.Feedback](cs[1], func(fb *mcq.Feedback, _ nodes.Parent) {
		fbs = append(fbs, fb)
	})
	require.Len(t, fbs, 1)
	assert.True(t, fbs[0].IsCorrect)

	// No field lists survive inside choices.
	nodes.Each[*nodes.FieldList](question(t, doc), func(_ *nodes.FieldList, _ nodes.Parent) {
		t.Error("field list was not replaced by feedback")
	})
}

func TestChoicesLetteredByPosition(t *testing.T) {
	doc := buildDoc(t, `.. mcq:: Pick one.
   :answer: A

   C. written as C
   A. written as A
`)
	cs := choices(question(t, doc))
	require.Len(t, cs, 2)
	assert.Equal(t, "A", cs[0].Value)
	assert.Equal(t, "B", cs[1].Value)
	assert.True(t, cs[0].IsCorrect)
	assert.Contains(t, nodes.AsText(cs[0]), "written as C")
}

func TestNestedChoiceListConverted(t *testing.T) {
	doc := buildDoc(t, `.. mcq:: Pick one.
   :answer: B

   A. outer one

      A. inner one
      B. inner two

   B. outer two
`)
	q := question(t, doc)

	// No raw upperalpha list survives, however deeply nested.
	nodes.Each[*nodes.EnumeratedList](q, func(l *nodes.EnumeratedList, _ nodes.Parent) {
		if l.EnumType == nodes.EnumUpperAlpha {
			t.Error("upperalpha list was not converted to choices")
		}
	})

	var lists []*mcq.ChoiceList
	nodes.Each[*mcq.ChoiceList](q, func(l *mcq.ChoiceList, _ nodes.Parent) {
		lists = append(lists, l)
	})
	require.Len(t, lists, 2)

	cs := choices(q)
	require.Len(t, cs, 4)
	outer := lists[0].Children()
	require.Len(t, outer, 2)

	var inner []*mcq.Choice
	nodes.Each[*mcq.Choice](outer[0].(*mcq.Choice), func(c *mcq.Choice, _ nodes.Parent) {
		inner = append(inner, c)
	})
	// The first element is the outer choice itself.
	require.Len(t, inner, 3)
	assert.Equal(t, "A", inner[1].Value)
	assert.Equal(t, "B", inner[2].Value)
	assert.Contains(t, nodes.AsText(inner[1]), "inner one")
	// Lettering restarts per list, so B matches in both.
	assert.True(t, inner[2].IsCorrect)
	assert.True(t, outer[1].(*mcq.Choice).IsCorrect)
}

func TestQuestionWithoutName(t *testing.T) {
	doc := buildDoc(t, `.. mcq:: Anonymous question?
   :answer: A

   A. yes
   B. no
`)
	q := question(t, doc)
	assert.Empty(t, q.IDs())
	for _, c := range choices(q) {
		assert.Empty(t, c.QuestionID)
	}
}

func TestAnswerMatchesNoChoice(t *testing.T) {
	doc := buildDoc(t, `.. mcq:: Pick one.
   :answer: D

   A. one
   B. two
`)
	for _, c := range choices(question(t, doc)) {
		assert.False(t, c.IsCorrect)
	}
}

func TestQuestionWithoutAnswer(t *testing.T) {
	doc := buildDoc(t, `.. mcq:: Pick one.

   A. one
   B. two
`)
	q := question(t, doc)
	assert.Empty(t, q.Answer)
	for _, c := range choices(q) {
		assert.False(t, c.IsCorrect)
	}
}

func TestUnrelatedListsUntouched(t *testing.T) {
	doc := buildDoc(t, `.. mcq:: Pick one.
   :answer: A

   Steps to consider:

   - first step
   - second step

   A. one
   B. two
`)
	q := question(t, doc)
	var bullets []*nodes.BulletList
	nodes.Each[*nodes.BulletList](q, func(b *nodes.BulletList, _ nodes.Parent) {
		bullets = append(bullets, b)
	})
	require.Len(t, bullets, 1, "bullet list should survive the transforms")
	require.Len(t, choices(q), 2)
}

func TestTooManyChoices(t *testing.T) {
	q := &mcq.Question{Answer: "A"}
	q.AddClass("mcq")
	list := &nodes.EnumeratedList{EnumType: nodes.EnumUpperAlpha}
	for i := 0; i < 27; i++ {
		item := &nodes.ListItem{}
		item.Append(nodes.NewParagraph("choice"))
		list.Append(item)
	}
	q.Append(list)
	doc := &nodes.Document{Source: "test.rst"}
	doc.Append(q)

	err := mcq.ChoicesTransform{}.Apply(doc, directive.NewEnv("test.rst", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than 26 choices")
}

func TestFeedbackCaseInsensitive(t *testing.T) {
	doc := buildDoc(t, `.. mcq:: Pick one.
   :answer: A

   A. one

      :Feedback: Good.

   B. two
`)
	cs := choices(question(t, doc))
	var fbs []*mcq.Feedback
	nodes.Each[*mcq.Feedback](cs[0], func(fb *mcq.Feedback, _ nodes.Parent) {
		fbs = append(fbs, fb)
	})
	require.Len(t, fbs, 1)
	assert.Equal(t, "Good.", nodes.AsText(fbs[0]))
}

func TestSetupRejectsDoubleRegistration(t *testing.T) {
	reg := directive.NewRegistry()
	require.NoError(t, mcq.Setup(reg))
	assert.Error(t, mcq.Setup(reg))
}

func TestMultipleQuestions(t *testing.T) {
	src := strings.Join([]string{
		".. mcq:: First?",
		"   :answer: A",
		"",
		"   A. one",
		"   B. two",
		"",
		".. mcq:: Second?",
		"   :answer: B",
		"",
		"   A. one",
		"   B. two",
		"",
	}, "\n")
	doc := buildDoc(t, src)

	var qs []*mcq.Question
	nodes.Each[*mcq.Question](doc, func(q *mcq.Question, _ nodes.Parent) {
		qs = append(qs, q)
	})
	require.Len(t, qs, 2)
	assert.Equal(t, "A", qs[0].Answer)
	assert.Equal(t, "B", qs[1].Answer)
}
