// Package merge splices regenerated entries into a curated document
// without disturbing it. Existing blocks keep their relative order
// unconditionally; new entries are inserted at a lexicographically
// plausible position anchored on the longest already-sorted backbone of
// the curated sequence.
package merge

import (
	"sort"

	"golang.org/x/text/cases"

	"github.com/bibsync/bibsync/pkg/bibtex"
	"github.com/bibsync/bibsync/pkg/differ"
	"github.com/bibsync/bibsync/pkg/logging"
)

// separatorRaw is the blank block inserted after each spliced entry.
const separatorRaw = "\n\n"

// Merge absorbs update into main and returns the merged block sequence.
// Entries present in both are diffed and updated in place through d;
// entries only in update are inserted near their sorted position; main
// blocks are never reordered. Non-entry blocks in update are dropped.
func Merge(main, update *bibtex.BlockMap, d *differ.Differ) []*bibtex.Block {
	fold := cases.Fold()

	// Only regenerated entries carry information; comments and blanks in
	// the update document are collector boilerplate.
	for _, key := range append([]string(nil), update.Keys()...) {
		if !bibtex.IsEntryKey(key) {
			update.Delete(key)
			continue
		}
		block, _ := update.Get(key)
		block.Entry.StripTrailingSpaces()
	}

	// Update entries common to both documents, in main's order.
	modified := 0
	for _, key := range main.Keys() {
		if !bibtex.IsEntryKey(key) {
			continue
		}
		mainBlock, _ := main.Get(key)
		if mainBlock.Entry != nil {
			mainBlock.Entry.New = false
		}
		upBlock, ok := update.Get(key)
		if !ok {
			continue
		}
		if d.Update(mainBlock.Entry, upBlock.Entry) {
			modified++
		}
	}

	// Sort the keys new to main the way JabRef sorts: case-insensitively.
	var newKeys []string
	for _, key := range update.Keys() {
		if !main.Has(key) {
			newKeys = append(newKeys, key)
		}
	}
	sort.Slice(newKeys, func(i, j int) bool {
		return fold.String(newKeys[i]) < fold.String(newKeys[j])
	})

	// The backbone: the longest non-decreasing subsequence of main's
	// entry keys. Keys outside it are presumed intentionally out of
	// order (grouped by hand) and never anchor an insertion.
	var oldKeys, oldSortKeys []string
	for _, key := range main.Keys() {
		if bibtex.IsEntryKey(key) {
			oldKeys = append(oldKeys, key)
			oldSortKeys = append(oldSortKeys, fold.String(key))
		}
	}
	backbone := longestIncreasingSubsequence(oldKeys, oldSortKeys)

	logging.Debug().
		Int("common_modified", modified).
		Int("new", len(newKeys)).
		Int("backbone", len(backbone)).
		Msg("merging documents")

	var result []*bibtex.Block
	var lastSeparator *bibtex.Block

	appendNew := func(key string, separatorFirst bool) {
		block, _ := update.Get(key)
		sep := &bibtex.Block{Kind: bibtex.BlockBlank, Raw: separatorRaw}
		if separatorFirst {
			result = append(result, sep, block)
		} else {
			result = append(result, block, sep)
		}
		lastSeparator = sep
	}

	newIdx, backboneIdx := 0, 0
	for _, key := range main.Keys() {
		block, _ := main.Get(key)
		if !bibtex.IsEntryKey(key) {
			result = append(result, block)
			continue
		}

		if backboneIdx == len(backbone) || key != backbone[backboneIdx] {
			// Out-of-order key, or the backbone is exhausted: no
			// insertion point here.
			result = append(result, block)
			continue
		}

		// Insert every pending new key sorting strictly before this one.
		for newIdx < len(newKeys) && fold.String(newKeys[newIdx]) < fold.String(key) {
			appendNew(newKeys[newIdx], false)
			newIdx++
		}

		result = append(result, block)
		backboneIdx++

		if backboneIdx == len(backbone) {
			// Everything left sorts after the last anchor.
			for newIdx < len(newKeys) {
				appendNew(newKeys[newIdx], true)
				newIdx++
			}
		}
	}

	// Only reached with pending keys when main has no entries at all.
	for newIdx < len(newKeys) {
		appendNew(newKeys[newIdx], false)
		newIdx++
	}

	// Avoid a dangling blank paragraph at end of file.
	if len(result) > 0 && result[len(result)-1] == lastSeparator && lastSeparator != nil {
		lastSeparator.Raw = "\n"
	}

	return result
}
