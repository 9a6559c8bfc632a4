// Package bibtex provides a format-preserving parser for BibTeX/biblatex
// documents. Every parsed block keeps its exact source span so that an
// untouched document serializes back to the original byte sequence.
package bibtex

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockKind identifies the kind of a parsed block.
type BlockKind string

const (
	// BlockBlank is whitespace or other filler text between directives.
	BlockBlank BlockKind = "blank"
	// BlockComment is an @comment directive kept as raw text.
	BlockComment BlockKind = "comment"
	// BlockEntry is a bibliographic entry.
	BlockEntry BlockKind = "entry"
)

// JoinMarker joins the segments of a `#`-concatenated field value into one
// normalized value string.
const JoinMarker = "#"

// Field is one `key = value` pair inside an entry. Raw holds the exact
// source text of the pair (including leading whitespace and the trailing
// comma when present) and is emitted verbatim unless the value changes.
type Field struct {
	Name  string // original-case key
	Value string // normalized value, segments joined with JoinMarker
	Raw   string // exact source span of `key = value [,]`
}

// Entry is the bibliographic unit of a document.
type Entry struct {
	Type   string // entry type, e.g. "inproceedings"
	ID     string // citation key; empty only for malformed input
	Raw    string // exact source span from `@` to the closing delimiter
	Fields *FieldMap

	// Status flags set during merging, consumed by the change report.
	New     bool
	Updated bool
	Changed []string // labels of tracked fields that materially changed
}

// Field returns the value of the named field (lower-cased key), or the
// empty string when absent.
func (e *Entry) Field(key string) string {
	if e.Fields == nil {
		return ""
	}
	if f, ok := e.Fields.Get(key); ok {
		return f.Value
	}
	return ""
}

var (
	trailingSpaceNL  = regexp.MustCompile(`[ \t]+\n`)
	trailingSpaceEnd = regexp.MustCompile(`[ \t]+$`)
	trailingSpaceRaw = regexp.MustCompile(`[ \t]+("|\})(\s*,?\s*)$`)
)

// StripTrailingSpaces removes trailing whitespace before newlines from the
// entry's raw text and from each field. A field whose value changes marks
// the entry updated so serialization re-renders it.
func (e *Entry) StripTrailingSpaces() {
	e.Raw = trailingSpaceNL.ReplaceAllString(e.Raw, "\n")

	if e.Fields == nil {
		return
	}
	for _, key := range e.Fields.Keys() {
		f, _ := e.Fields.Get(key)
		f.Raw = trailingSpaceNL.ReplaceAllString(f.Raw, "\n")
		clean := trailingSpaceNL.ReplaceAllString(f.Value, "\n")
		clean = trailingSpaceEnd.ReplaceAllString(clean, "")
		if clean == f.Value {
			continue
		}
		e.Updated = true
		f.Value = clean
		f.Raw = trailingSpaceRaw.ReplaceAllString(f.Raw, "$1$2")
	}
}

// Block is a maximal unit of a parsed document. Entry is nil unless Kind is
// BlockEntry.
type Block struct {
	Kind  BlockKind
	Raw   string
	Entry *Entry
}

// Text returns the serialized form of the block. Unmodified blocks emit
// their original raw span byte for byte; a modified entry is re-rendered
// from its type, id, and ordered fields.
func (b *Block) Text() string {
	if b.Kind != BlockEntry || b.Entry == nil {
		return b.Raw
	}
	if b.Entry.Updated {
		return renderEntry(b.Entry)
	}
	// The entry raw, not the block raw: trailing-space cleanup rewrites
	// the entry span without marking it updated.
	return b.Entry.Raw
}

// Document is an ordered sequence of blocks covering its source text with
// no gaps or overlaps.
type Document struct {
	Blocks []*Block
}

// Keyed returns the ordered keyed view of the document. Entries key as
// "id#<id>", comments as "raw#<text>", blanks as "blank#<index>". When
// ignoreBlanks is set, blank blocks are dropped from the view.
func (d *Document) Keyed(ignoreBlanks bool) *BlockMap {
	keyed := NewBlockMap()
	for i, block := range d.Blocks {
		var key string
		switch block.Kind {
		case BlockBlank:
			if ignoreBlanks {
				continue
			}
			key = fmt.Sprintf("blank#%d", i)
		case BlockComment:
			key = "raw#" + block.Raw
		case BlockEntry:
			key = EntryKey(block.Entry.ID)
		}
		keyed.Set(key, block)
	}
	return keyed
}

// EntryKey returns the composite key for an entry id.
func EntryKey(id string) string {
	return "id#" + id
}

// IsEntryKey reports whether a composite key denotes an entry.
func IsEntryKey(key string) bool {
	return strings.HasPrefix(key, "id#")
}
