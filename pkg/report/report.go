// Package report builds the human-readable change log out of a merged
// block sequence: one group per source venue, one line per new or
// materially updated entry. The report is a plain value; rendering to
// markdown or YAML is decided by the caller.
package report

import "github.com/bibsync/bibsync/pkg/bibtex"

// Fallback labels for entries missing a title or a source venue.
const (
	noTitle       = "No Title"
	unknownSource = "Unknown"
)

// Line is one reported entry.
type Line struct {
	Title   string   `yaml:"title"`
	URL     string   `yaml:"url,omitempty"`
	New     bool     `yaml:"new,omitempty"`
	Changed []string `yaml:"changed,omitempty"`
}

// Group collects the lines of one source venue, in append order.
type Group struct {
	Source string `yaml:"source"`
	Lines  []Line `yaml:"entries"`
}

// Report is the grouped change log. Group order is first-appearance
// order of the sources in the merged sequence, not sorted; determinism
// follows from the deterministic block order.
type Report struct {
	Groups []Group `yaml:"sources"`
}

// Empty reports whether nothing was new or updated.
func (r *Report) Empty() bool {
	return len(r.Groups) == 0
}

// Total returns the number of reported lines across all groups.
func (r *Report) Total() int {
	total := 0
	for _, g := range r.Groups {
		total += len(g.Lines)
	}
	return total
}

// FromBlocks walks the merged sequence and collects the log lines. New
// entries are always reported; updated entries only when at least one
// tracked classifier fired; untouched entries never.
func FromBlocks(blocks []*bibtex.Block) *Report {
	r := &Report{}
	index := make(map[string]int)

	for _, block := range blocks {
		entry := block.Entry
		if entry == nil || entry.Fields == nil {
			continue
		}

		line, ok := entryLine(entry)
		if !ok {
			continue
		}

		source := entry.Field("booktitle")
		if source == "" {
			source = entry.Field("journaltitle")
		}
		if source == "" {
			source = unknownSource
		}

		i, ok := index[source]
		if !ok {
			i = len(r.Groups)
			index[source] = i
			r.Groups = append(r.Groups, Group{Source: source})
		}
		r.Groups[i].Lines = append(r.Groups[i].Lines, line)
	}

	return r
}

func entryLine(entry *bibtex.Entry) (Line, bool) {
	line := Line{
		Title: entry.Field("title"),
		URL:   entry.Field("url"),
	}
	if line.Title == "" {
		line.Title = noTitle
	}

	if entry.New {
		line.New = true
		return line, true
	}
	if !entry.Updated || len(entry.Changed) == 0 {
		return Line{}, false
	}
	line.Changed = entry.Changed
	return line, true
}
