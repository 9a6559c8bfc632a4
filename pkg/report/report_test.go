package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibsync/bibsync/pkg/bibtex"
)

func blocks(t *testing.T, text string) []*bibtex.Block {
	t.Helper()
	doc, err := bibtex.Parse(text)
	require.NoError(t, err)
	return doc.Blocks
}

func TestFromBlocksGroupsBySource(t *testing.T) {
	bs := blocks(t, `@InProceedings{a,
  title     = {First Paper},
  booktitle = {USENIX Security},
  url       = {https://example.org/a},
}

@Article{b,
  title        = {Second Paper},
  journaltitle = {Transactions on Networking},
}

@InProceedings{c,
  title     = {Third Paper},
  booktitle = {USENIX Security},
}
`)

	r := FromBlocks(bs)
	require.Len(t, r.Groups, 2, "same-source entries share a group")
	assert.Equal(t, "USENIX Security", r.Groups[0].Source)
	assert.Equal(t, "Transactions on Networking", r.Groups[1].Source)
	assert.Equal(t, 3, r.Total())
	assert.False(t, r.Empty())

	first := r.Groups[0].Lines[0]
	assert.Equal(t, "First Paper", first.Title)
	assert.Equal(t, "https://example.org/a", first.URL)
	assert.True(t, first.New)
}

func TestFromBlocksSkipsUntouchedEntries(t *testing.T) {
	bs := blocks(t, `@Article{a,
  title = {Untouched},
}
`)
	bs[1].Entry.New = false

	r := FromBlocks(bs)
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Total())
}

func TestFromBlocksUpdatedNeedsChangedLabels(t *testing.T) {
	bs := blocks(t, `@Article{a,
  title = {Silently Absorbed},
}

@Article{b,
  title = {Reported Update},
}
`)
	for _, b := range bs {
		if b.Entry != nil {
			b.Entry.New = false
			b.Entry.Updated = true
		}
	}
	bs[3].Entry.Changed = []string{"title"}

	r := FromBlocks(bs)
	require.Equal(t, 1, r.Total(),
		"updates below the classifier bar are absorbed without a log line")
	assert.Equal(t, "Reported Update", r.Groups[0].Lines[0].Title)
	assert.Equal(t, []string{"title"}, r.Groups[0].Lines[0].Changed)
}

func TestFromBlocksFallbackLabels(t *testing.T) {
	bs := blocks(t, `@Misc{a,
  note = {no title, no venue},
}
`)

	r := FromBlocks(bs)
	require.Equal(t, 1, r.Total())
	assert.Equal(t, "Unknown", r.Groups[0].Source)
	assert.Equal(t, "No Title", r.Groups[0].Lines[0].Title)
}

func TestJoinLabels(t *testing.T) {
	assert.Equal(t, "", joinLabels(nil))
	assert.Equal(t, "abstract", joinLabels([]string{"abstract"}))
	assert.Equal(t, "abstract and title", joinLabels([]string{"abstract", "title"}))
	assert.Equal(t, "abstract, files, and title", joinLabels([]string{"abstract", "files", "title"}))
}
