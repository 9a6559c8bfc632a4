// Package differ provides field-level change detection between two
// versions of the same bibliographic entry, and applies those changes to
// the curated entry in place. Diffing and applying are separate steps so
// each can be tested on its own; a nil diff means the curated entry is
// left untouched.
package differ

import (
	"regexp"

	"github.com/bibsync/bibsync/pkg/bibtex"
)

// FieldChange records one field whose normalized value differs between
// the curated entry and its regenerated counterpart.
type FieldChange struct {
	Key string        // lower-cased field key
	Old *bibtex.Field // curated field
	New *bibtex.Field // regenerated field
}

// NewField records a field present only in the regenerated entry.
type NewField struct {
	Key   string
	Field *bibtex.Field
}

// EntryDiff is the patch produced by Diff: the fields to append and the
// fields to overwrite. It never contains deletions; fields missing from
// the regenerated entry carry no information and are kept as-is.
type EntryDiff struct {
	NewFields     []NewField
	UpdatedFields []FieldChange
}

// Differ diffs and merges entries honoring an ignore set of volatile
// fields and a set of tracked classifier fields.
type Differ struct {
	ignoreFields map[string]bool
	tracked      []TrackedField
}

// New creates a Differ with the default ignore set and tracked fields.
func New(opts ...Option) *Differ {
	d := &Differ{
		ignoreFields: make(map[string]bool),
		tracked:      DefaultTrackedFields(),
	}
	for _, key := range DefaultIgnoreFields() {
		d.ignoreFields[key] = true
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Diff computes the patch that absorbs the difference between target and
// update. It returns nil when the entries are byte-identical, when no
// field actually changed, or when every changed field is in the ignore
// set; churn from volatile fields alone never rewrites an entry.
func (d *Differ) Diff(target, update *bibtex.Entry) *EntryDiff {
	if target.Raw == update.Raw {
		return nil
	}
	if target.Fields == nil || update.Fields == nil {
		return nil
	}

	diff := &EntryDiff{}
	for _, key := range update.Fields.Keys() {
		field, _ := update.Fields.Get(key)
		old, ok := target.Fields.Get(key)
		if !ok {
			diff.NewFields = append(diff.NewFields, NewField{Key: key, Field: field})
			continue
		}
		if old.Value == field.Value {
			continue
		}
		diff.UpdatedFields = append(diff.UpdatedFields, FieldChange{Key: key, Old: old, New: field})
	}

	if len(diff.NewFields) == 0 && len(diff.UpdatedFields) == 0 {
		return nil
	}
	if d.onlyIgnored(diff) {
		return nil
	}
	return diff
}

// onlyIgnored reports whether every changed field is in the ignore set.
func (d *Differ) onlyIgnored(diff *EntryDiff) bool {
	for _, nf := range diff.NewFields {
		if !d.ignoreFields[nf.Key] {
			return false
		}
	}
	for _, fc := range diff.UpdatedFields {
		if !d.ignoreFields[fc.Key] {
			return false
		}
	}
	return true
}

var lastNonComma = regexp.MustCompile(`([^,])([\s]*)$`)

// Apply mutates target in place per the diff: updated fields keep their
// position in the field order and take the regenerated raw text and
// value; new fields append at the end. The previously-last field is
// rewritten to end with a comma, since appended fields start on a new
// line and the curated last field may have omitted its separator.
func Apply(target *bibtex.Entry, diff *EntryDiff) {
	if diff == nil {
		return
	}

	target.Updated = true
	for _, fc := range diff.UpdatedFields {
		field, ok := target.Fields.Get(fc.Key)
		if !ok {
			continue
		}
		field.Raw = fc.New.Raw
		field.Value = fc.New.Value
	}

	if last := target.Fields.Last(); last != nil {
		if m := lastNonComma.FindStringSubmatch(last.Raw); m != nil {
			last.Raw = last.Raw[:len(last.Raw)-len(m[0])] + m[1] + ","
		}
	}

	for _, nf := range diff.NewFields {
		target.Fields.Set(nf.Key, nf.Field)
	}
}

// Update diffs update against target and, when the difference is
// material, applies it and classifies the change. Target is marked as a
// pre-existing entry either way. It reports whether target was modified.
func (d *Differ) Update(target, update *bibtex.Entry) bool {
	target.New = false

	if target.Raw == update.Raw {
		return false
	}

	old := make(map[string]string, len(d.tracked))
	for _, tf := range d.tracked {
		old[tf.Key] = target.Field(tf.Key)
	}

	diff := d.Diff(target, update)
	if diff == nil {
		return false
	}

	Apply(target, diff)
	target.Changed = d.classify(target, old)
	return true
}
