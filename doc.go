/*
Package mcq implements a multiple choice question extension for
reStructuredText documents.

The extension recognizes an "mcq" directive and converts it into a small
tree of typed nodes: a question prompt, a list of lettered answer choices,
and optional per-choice feedback. The HTML writer renders those nodes with
CSS classes and data attributes that stylesheets and client-side script
can hook into.

Example:

	.. mcq:: Write your question statement here.
	   :numbered:
	   :answer: B

	   You can add additional text for the prompt too.

	   A. Answer one

	      :feedback: Use this field list syntax to explain why this
	                 answer is right/wrong.

	   B. Answer two

	      :feedback: Use this field list syntax to explain why this
	                 answer is right/wrong.

	   C. Answer three

	      :feedback: Use this field list syntax to explain why this
	                 answer is right/wrong.

Directive options:

  - answer: the letter of the correct choice (A-Z)
  - class: extra CSS class names for the rendered question
  - name: stable identifier; rendered as the HTML id "mcq-<name>"
  - numbered: adds the "numbered" class so CSS counters can number
    questions
  - show_feedback: adds the "show-feedback" class so client-side script
    can reveal feedback interactively

Call [Setup] to register the directive and its transforms with a
directive registry, then parse documents with the parse package and
render them with the html package. The builder package and the mcqbuild
command wire those steps together for whole source trees.
*/
package mcq
