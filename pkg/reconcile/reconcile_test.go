package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibsync/bibsync/pkg/bibtex"
)

func keyed(t *testing.T, text string) *bibtex.BlockMap {
	t.Helper()
	doc, err := bibtex.Parse(text)
	require.NoError(t, err)
	return doc.Keyed(true)
}

func TestFixDuplicateIDsRemapsByURL(t *testing.T) {
	main := keyed(t, `@Article{smith2023tls,
  title = {Measuring TLS},
  url   = {https://example.org/smith2023},
}
`)
	update := keyed(t, `@Article{smith2023measuring,
  title = {Measuring TLS},
  url   = {https://example.org/smith2023},
}
`)

	fixed := FixDuplicateIDs(main, update)

	require.True(t, fixed.Has("id#smith2023tls"),
		"the regenerated entry is rekeyed onto the curated id")
	assert.False(t, fixed.Has("id#smith2023measuring"))

	block, _ := fixed.Get("id#smith2023tls")
	assert.Equal(t, "smith2023tls", block.Entry.ID)
}

func TestFixDuplicateIDsLeavesDistinctURLs(t *testing.T) {
	main := keyed(t, `@Article{a,
  url = {https://example.org/a},
}
`)
	update := keyed(t, `@Article{b,
  url = {https://example.org/b},
}
`)

	fixed := FixDuplicateIDs(main, update)
	assert.Equal(t, []string{"id#b"}, fixed.Keys())
}

func TestFixDuplicateIDsAmbiguousURLDisabled(t *testing.T) {
	main := keyed(t, `@Article{a,
  url = {https://example.org/shared},
}

@Article{b,
  url = {https://example.org/shared},
}
`)
	update := keyed(t, `@Article{c,
  url = {https://example.org/shared},
}
`)

	fixed := FixDuplicateIDs(main, update)
	assert.Equal(t, []string{"id#c"}, fixed.Keys(),
		"an ambiguous curated URL never anchors a remap")
}

func TestFixDuplicateIDsEntriesWithoutURL(t *testing.T) {
	main := keyed(t, "@Article{a,\n  title = {A},\n}\n")
	update := keyed(t, "@Article{b,\n  title = {A},\n}\n")

	fixed := FixDuplicateIDs(main, update)
	assert.Equal(t, []string{"id#b"}, fixed.Keys())
}

func TestFixDuplicateIDsSameIDUntouched(t *testing.T) {
	text := `@Article{a,
  url = {https://example.org/a},
}
`
	fixed := FixDuplicateIDs(keyed(t, text), keyed(t, text))
	assert.Equal(t, []string{"id#a"}, fixed.Keys())
}

func TestFixDuplicateIDsPreservesUpdateOrder(t *testing.T) {
	main := keyed(t, `@Article{curated,
  url = {https://example.org/x},
}
`)
	update := keyed(t, `@Article{zzz,
  url = {https://example.org/zzz},
}

@Article{xgen,
  url = {https://example.org/x},
}

@Article{aaa,
  url = {https://example.org/aaa},
}
`)

	fixed := FixDuplicateIDs(main, update)
	assert.Equal(t, []string{"id#zzz", "id#curated", "id#aaa"}, fixed.Keys())
}
