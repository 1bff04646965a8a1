// Package command scans finalized transcripts for keyword and color-name
// triggers and converts them into discrete match events.
package command

import "strings"

// Category identifies the kind of trigger found in a transcript.
type Category int

const (
	// Affirm fires when the transcript contains an acknowledgement word.
	Affirm Category = iota

	// Greet fires when the transcript contains a greeting word.
	Greet

	// New fires when the transcript contains "new".
	New

	// Color fires when the transcript names a known color.
	Color
)

// String returns the lowercase category name used on the UI boundary.
func (c Category) String() string {
	switch c {
	case Affirm:
		return "affirm"
	case Greet:
		return "greet"
	case New:
		return "new"
	case Color:
		return "color"
	}
	return "unknown"
}

// RGB is a color triple attached to Color matches.
type RGB struct {
	R, G, B uint8
}

// Match is a single trigger extracted from a transcript. ColorValue is only
// set when Category is Color.
type Match struct {
	Category   Category
	ColorValue *RGB
}

// Keyword lists per category. Matching is substring-based on a lowercase
// copy of the transcript; "okay" also matches via its "ok" prefix.
var (
	affirmWords = []string{"ok", "okay"}
	greetWords  = []string{"hi", "hello", "hey"}
)

// Matcher evaluates transcripts against the keyword lists and the color
// table. It is stateless and safe for concurrent use; matching the same
// transcript twice yields identical results.
type Matcher struct {
	colors []namedColor
}

// NewMatcher creates a Matcher with the default color table.
func NewMatcher() *Matcher {
	return &Matcher{colors: defaultColorTable}
}

// Scan evaluates text and returns zero or more matches. All four categories
// are checked independently and can co-occur. Color matching is
// first-entry-wins over the table in definition order; the table deliberately
// lists multi-word names before the single-word names they contain, since
// matching is substring-based rather than word-boundary based. At most one
// Color match is emitted per transcript.
func (m *Matcher) Scan(text string) []Match {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var matches []Match

	if containsAny(lower, affirmWords) {
		matches = append(matches, Match{Category: Affirm})
	}
	if containsAny(lower, greetWords) {
		matches = append(matches, Match{Category: Greet})
	}
	if strings.Contains(lower, "new") {
		matches = append(matches, Match{Category: New})
	}

	for _, c := range m.colors {
		if strings.Contains(lower, c.name) {
			rgb := c.rgb
			matches = append(matches, Match{Category: Color, ColorValue: &rgb})
			break
		}
	}

	return matches
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
