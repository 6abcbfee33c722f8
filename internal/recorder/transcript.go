package recorder

import "strings"

type FragmentKind int

const (
	// Partial is an interim hypothesis that may still change.
	Partial FragmentKind = iota
	// Final is a settled piece of the transcript.
	Final
)

func (k FragmentKind) String() string {
	if k == Final {
		return "final"
	}
	return "partial"
}

// Fragment is one unit of speech-to-text output. Speech adapters build them
// with PartialFragment and FinalFragment.
type Fragment struct {
	Kind FragmentKind
	Text string
}

func PartialFragment(text string) Fragment {
	return Fragment{Kind: Partial, Text: text}
}

func FinalFragment(text string) Fragment {
	return Fragment{Kind: Final, Text: text}
}

// Project joins the text of every final fragment with a single space, in
// the order given. Partial fragments are skipped.
func Project(fragments []Fragment) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f.Kind == Final {
			parts = append(parts, f.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Accumulator holds the answer for the current question. It is a projection
// of the full fragment history, so whoever calls Reset must also reset the
// history upstream.
type Accumulator struct {
	answer string
}

// OnFragments replaces the answer with the projection of history.
func (a *Accumulator) OnFragments(history []Fragment) string {
	a.answer = Project(history)
	return a.answer
}

func (a *Accumulator) Answer() string {
	return a.answer
}

func (a *Accumulator) Reset() {
	a.answer = ""
}
