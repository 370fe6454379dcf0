package rocq

import (
	"regexp"
	"strings"
)

var stepPattern = regexp.MustCompile(`(?s)(.*?\.)\s`)

// Step is one lexical segment of a proof body.
type Step struct {
	Index  int
	Text   string
	Bullet bool
}

// Segment splits a proof body into steps: shortest runs ending in a period
// that is followed by whitespace. A bullet ("-", then "+") leading a step is
// emitted as its own step before the rest of it.
func Segment(proof string) []Step {
	var steps []Step
	push := func(text string, bullet bool) {
		steps = append(steps, Step{Index: len(steps), Text: text, Bullet: bullet})
	}

	for _, m := range stepPattern.FindAllString(proof+" ", -1) {
		step := strings.TrimSpace(m)
		if strings.HasPrefix(step, "-") {
			push("-", true)
			step = step[1:]
		}
		if strings.HasPrefix(step, "+") {
			push("+", true)
			step = step[1:]
		}
		push(strings.TrimSpace(step), false)
	}
	return steps
}

// Texts returns the text of each step in order.
func Texts(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Text
	}
	return out
}
