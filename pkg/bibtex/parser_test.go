package bibtex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibsync/bibsync/pkg/errors"
)

const sampleDoc = `% curated by hand

@Article{knuth1984,
  author       = {Donald E. Knuth},
  title        = {Literate Programming},
  journaltitle = {The Computer Journal},
  year         = {1984},
}

@InProceedings{smith2023,
  author    = {Jane Smith},
  title     = {Parsing in Anger},
  booktitle = {USENIX Security},
  url       = {https://example.org/smith2023},
}

@Comment{jabref-meta: databaseType:biblatex;}
`

func TestParseBlockSequence(t *testing.T) {
	doc, err := Parse(sampleDoc)
	require.NoError(t, err)

	var kinds []BlockKind
	for _, b := range doc.Blocks {
		kinds = append(kinds, b.Kind)
	}
	assert.Equal(t, []BlockKind{
		BlockBlank, BlockEntry,
		BlockBlank, BlockEntry,
		BlockBlank, BlockComment,
		BlockBlank,
	}, kinds)

	assert.Equal(t, "% curated by hand\n\n", doc.Blocks[0].Raw)
	assert.Equal(t, "\n", doc.Blocks[6].Raw)
}

func TestParseRoundTrip(t *testing.T) {
	doc, err := Parse(sampleDoc)
	require.NoError(t, err)

	assert.Equal(t, sampleDoc, Render(doc.Blocks),
		"parsing then serializing an untouched document must reproduce it exactly")
}

func TestParseRoundTripFixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "curated.bib"))
	require.NoError(t, err)

	doc, err := Parse(string(data))
	require.NoError(t, err)
	assert.Equal(t, string(data), Render(doc.Blocks))
}

func TestParseEntry(t *testing.T) {
	doc, err := Parse(sampleDoc)
	require.NoError(t, err)

	entry := doc.Blocks[1].Entry
	require.NotNil(t, entry)
	assert.Equal(t, "Article", entry.Type)
	assert.Equal(t, "knuth1984", entry.ID)
	assert.Equal(t, []string{"author", "title", "journaltitle", "year"}, entry.Fields.Keys())
	assert.Equal(t, "Literate Programming", entry.Field("title"))

	title, ok := entry.Fields.Get("title")
	require.True(t, ok)
	assert.Equal(t, "title", title.Name)
	assert.Equal(t, "\n  title        = {Literate Programming},", title.Raw)
}

func TestParseConcatenatedValue(t *testing.T) {
	doc, err := Parse(`@Misc{m1,
  note = {part one} # {part two},
}
`)
	require.NoError(t, err)

	entry := doc.Blocks[1].Entry
	require.NotNil(t, entry)
	assert.Equal(t, "part one#part two", entry.Field("note"))
}

func TestParseQuotedAndNumericValues(t *testing.T) {
	doc, err := Parse(`@Misc{m2,
  title = "A {Quoted} Title",
  year  = 1999,
}
`)
	require.NoError(t, err)

	entry := doc.Blocks[1].Entry
	require.NotNil(t, entry)
	assert.Equal(t, "A {Quoted} Title", entry.Field("title"))
	assert.Equal(t, "1999", entry.Field("year"))
}

func TestParseParenBody(t *testing.T) {
	doc, err := Parse(`@Misc(m3,
  title = {Parens},
)
`)
	require.NoError(t, err)

	entry := doc.Blocks[1].Entry
	require.NotNil(t, entry)
	assert.Equal(t, "m3", entry.ID)
	assert.Equal(t, "Parens", entry.Field("title"))
}

func TestParseNestedBraces(t *testing.T) {
	doc, err := Parse(`@Misc{m4,
  title = {The {BSD} Kernel {Internals}},
}
`)
	require.NoError(t, err)
	assert.Equal(t, "The {BSD} Kernel {Internals}", doc.Blocks[1].Entry.Field("title"))
}

func TestParseRecoversFromMalformedEntry(t *testing.T) {
	text := `@Article{broken,
  title = oops no closing

@Article{good,
  title = {Survivor},
}
`
	doc, err := Parse(text)
	require.NoError(t, err)

	var entries []*Entry
	for _, b := range doc.Blocks {
		if b.Kind == BlockEntry {
			entries = append(entries, b.Entry)
		}
	}
	require.Len(t, entries, 1, "the malformed entry is dropped, the rest of the document parses")
	assert.Equal(t, "good", entries[0].ID)
}

func TestParseUnsupportedDirective(t *testing.T) {
	_, err := Parse(`@String{pub = {ACM}}`)
	require.Error(t, err)
	assert.True(t, errors.IsNotImplemented(err))

	_, err = Parse(`@Preamble{"\relax"}`)
	require.Error(t, err)
	assert.True(t, errors.IsNotImplemented(err))
}

func TestParseCommentKeepsRawSpan(t *testing.T) {
	text := "@Comment{jabref-meta: grouping:\n0 AllEntriesGroup:;\n}"
	doc, err := Parse(text)
	require.NoError(t, err)

	require.Len(t, doc.Blocks, 3) // leading blank, comment, trailing blank
	assert.Equal(t, BlockComment, doc.Blocks[1].Kind)
	assert.Equal(t, text, doc.Blocks[1].Raw)
}

func TestKeyed(t *testing.T) {
	doc, err := Parse(sampleDoc)
	require.NoError(t, err)

	keyed := doc.Keyed(false)
	assert.True(t, keyed.Has("id#knuth1984"))
	assert.True(t, keyed.Has("id#smith2023"))
	assert.True(t, keyed.Has("blank#0"))

	noBlanks := doc.Keyed(true)
	for _, key := range noBlanks.Keys() {
		assert.False(t, strings.HasPrefix(key, "blank#"))
	}
	assert.Equal(t, 3, noBlanks.Len()) // two entries and one comment
}
