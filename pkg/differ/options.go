package differ

// Option configures a Differ.
type Option func(*Differ)

// DefaultIgnoreFields returns the volatile fields whose changes alone
// never justify rewriting an entry: regenerated access dates and the
// derived year/yearmonth index recompute on every collector run.
func DefaultIgnoreFields() []string {
	return []string{"date", "urldate", "year", "yearmonth"}
}

// WithIgnoreFields replaces the ignore set.
func WithIgnoreFields(fields ...string) Option {
	return func(d *Differ) {
		d.ignoreFields = make(map[string]bool, len(fields))
		for _, f := range fields {
			d.ignoreFields[f] = true
		}
	}
}

// WithTrackedFields replaces the tracked classifier fields.
func WithTrackedFields(tracked ...TrackedField) Option {
	return func(d *Differ) {
		d.tracked = tracked
	}
}
