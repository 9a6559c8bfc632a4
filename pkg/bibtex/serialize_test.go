package bibtex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUpdatedEntry(t *testing.T) {
	doc, err := Parse(`@Article{a1,
  title = {Old Title},
  year  = {2001},
}
`)
	require.NoError(t, err)

	entry := doc.Blocks[1].Entry
	title, _ := entry.Fields.Get("title")
	title.Value = "New Title"
	title.Raw = "\n  title = {New Title},"
	entry.Updated = true

	assert.Equal(t, `@Article{a1,
  title = {New Title},
  year  = {2001},
}
`, Render(doc.Blocks))
}

func TestRenderAppendsMissingNewline(t *testing.T) {
	entry := &Entry{
		Type:    "Misc",
		ID:      "m1",
		Fields:  NewFieldMap(),
		Updated: true,
	}
	entry.Fields.Set("title", &Field{Name: "title", Value: "T", Raw: "\n  title = {T},"})

	block := &Block{Kind: BlockEntry, Entry: entry}
	assert.Equal(t, "@Misc{m1,\n  title = {T},\n}", block.Text())
}

func TestStripTrailingSpaces(t *testing.T) {
	doc, err := Parse("@Misc{m1,\n  title = {Spaces Inside   \n    Here},  \n}\n")
	require.NoError(t, err)

	entry := doc.Blocks[1].Entry
	entry.StripTrailingSpaces()

	assert.True(t, entry.Updated, "a value change must force re-rendering")
	assert.Equal(t, "Spaces Inside\n    Here", entry.Field("title"))
	assert.NotContains(t, entry.Raw, " \n")
}

func TestStripTrailingSpacesNoChange(t *testing.T) {
	doc, err := Parse("@Misc{m1,\n  title = {Clean},\n}\n")
	require.NoError(t, err)

	entry := doc.Blocks[1].Entry
	entry.StripTrailingSpaces()

	assert.False(t, entry.Updated)
	assert.Equal(t, "@Misc{m1,\n  title = {Clean},\n}", entry.Raw)
}

func TestBracesBalanced(t *testing.T) {
	assert.True(t, BracesBalanced("{a {nested} value}"))
	assert.True(t, BracesBalanced(`escaped \{ does not count`))
	assert.False(t, BracesBalanced("{unclosed"))
	assert.False(t, BracesBalanced("closes too early }{"))
}
