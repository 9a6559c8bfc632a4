package differ

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/bibsync/bibsync/pkg/bibtex"
)

// CompareKind selects how a tracked field's old and new values are
// compared when deciding whether the change is worth reporting.
type CompareKind int

const (
	// CompareSimilarity flags a change when the normalized similarity
	// ratio between old and new values falls below the threshold.
	CompareSimilarity CompareKind = iota
	// CompareSet splits both values on a separator and flags a change on
	// any set inequality, ignoring order.
	CompareSet
)

// TrackedField configures change classification for one field. The
// classification is purely advisory: it drives the change report and
// never affects merge correctness.
type TrackedField struct {
	Key       string      // lower-cased field key
	Label     string      // label used in the report ("abstract", "files", ...)
	Kind      CompareKind
	Threshold float64 // CompareSimilarity: report below this ratio
	Junk      string  // CompareSimilarity: characters treated as noise
	Separator string  // CompareSet: element separator
}

// similarityJunk is the whitespace/punctuation charset ignored as noise
// when computing similarity ratios.
const similarityJunk = " \t\n,.:;!?"

// DefaultTrackedFields returns the stock classifier configuration:
// abstracts legitimately get rewritten so the bar is low, titles are
// expected to stay near-identical even after minor cleanup, and
// attachment lists compare as unordered sets.
func DefaultTrackedFields() []TrackedField {
	return []TrackedField{
		{Key: "abstract", Label: "abstract", Kind: CompareSimilarity, Threshold: 0.5, Junk: similarityJunk},
		{Key: "file", Label: "files", Kind: CompareSet, Separator: ";"},
		{Key: "title", Label: "title", Kind: CompareSimilarity, Threshold: 0.8, Junk: similarityJunk},
	}
}

// classify compares the post-update values of the tracked fields against
// their captured pre-update values and returns the labels that fired, in
// tracked order.
func (d *Differ) classify(target *bibtex.Entry, old map[string]string) []string {
	var changed []string
	for _, tf := range d.tracked {
		field, ok := target.Fields.Get(tf.Key)
		if !ok {
			continue
		}
		if tf.changed(field.Value, old[tf.Key]) {
			changed = append(changed, tf.Label)
		}
	}
	return changed
}

func (tf *TrackedField) changed(newValue, oldValue string) bool {
	switch tf.Kind {
	case CompareSet:
		return !equalSets(newValue, oldValue, tf.Separator)
	default:
		return similarity(newValue, oldValue, tf.Junk) < tf.Threshold
	}
}

// similarity computes the difflib sequence ratio between two strings at
// character granularity, with junk characters ignored as noise.
func similarity(a, b, junk string) float64 {
	isJunk := func(s string) bool { return strings.Contains(junk, s) }
	m := difflib.NewMatcherWithJunk(splitChars(a), splitChars(b), true, isJunk)
	return m.Ratio()
}

func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}

func equalSets(a, b, separator string) bool {
	setA := toSet(a, separator)
	setB := toSet(b, separator)
	if len(setA) != len(setB) {
		return false
	}
	for elem := range setA {
		if !setB[elem] {
			return false
		}
	}
	return true
}

func toSet(s, separator string) map[string]bool {
	set := make(map[string]bool)
	for _, elem := range strings.Split(s, separator) {
		set[elem] = true
	}
	return set
}
