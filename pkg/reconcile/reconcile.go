// Package reconcile resolves identity drift between a curated document
// and its regenerated counterpart. Collectors derive citation keys from
// scraped metadata, so the same real-world item can come back under a
// different key; the URL is the stable secondary identity used to map it
// back onto the curated entry before merging.
package reconcile

import (
	"github.com/bibsync/bibsync/pkg/bibtex"
	"github.com/bibsync/bibsync/pkg/logging"
)

// FixDuplicateIDs remaps update entry ids to the ids of curated entries
// exposing the same URL, so a regenerated key never produces a duplicate
// of an entry already in main. A URL shared by two main entries is
// ambiguous and disables reconciliation for that URL. Only update ids are
// rewritten, never main's; the returned map preserves update's order.
func FixDuplicateIDs(main, update *bibtex.BlockMap) *bibtex.BlockMap {
	urlToEntry := make(map[string]*bibtex.Entry)
	duplicateURLs := make(map[string]bool)

	for _, key := range main.Keys() {
		block, _ := main.Get(key)
		if block.Entry == nil || block.Entry.Fields == nil {
			continue
		}
		url := block.Entry.Field("url")
		if url == "" {
			continue
		}
		if duplicateURLs[url] {
			continue
		}
		if _, ok := urlToEntry[url]; ok {
			// Ambiguous: two curated entries share this URL.
			delete(urlToEntry, url)
			duplicateURLs[url] = true
			logging.Warn().Str("url", url).Msg("duplicate url in main, reconciliation disabled for it")
			continue
		}
		urlToEntry[url] = block.Entry
	}

	output := bibtex.NewBlockMap()
	for _, key := range update.Keys() {
		block, _ := update.Get(key)
		if block.Entry == nil || block.Entry.Fields == nil {
			output.Set(key, block)
			continue
		}
		url := block.Entry.Field("url")
		original, ok := urlToEntry[url]
		if url == "" || !ok {
			output.Set(key, block)
			continue
		}
		if block.Entry.ID == original.ID {
			output.Set(key, block)
			continue
		}

		logging.Info().
			Str("from", block.Entry.ID).
			Str("to", original.ID).
			Str("url", url).
			Msg("remapping regenerated entry id")
		block.Entry.ID = original.ID
		output.Set(bibtex.EntryKey(original.ID), block)
	}

	return output
}
