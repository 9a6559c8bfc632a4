package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// collapseAbove is the line count past which a source's entries are
// wrapped in a collapsible section.
const collapseAbove = 8

// Markdown renders the report: a header per source, a count, and the
// entry lines, collapsed in a <details> section when long.
func (r *Report) Markdown(w io.Writer) error {
	for _, group := range r.Groups {
		details := len(group.Lines) > collapseAbove

		if _, err := fmt.Fprintf(w, "\n# %s\n\n", group.Source); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "**%d** new or updated entries\n\n", len(group.Lines)); err != nil {
			return err
		}
		if details {
			if _, err := fmt.Fprint(w, "<details>\n\n"); err != nil {
				return err
			}
		}
		for _, line := range group.Lines {
			if _, err := fmt.Fprint(w, line.markdown()); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if details {
			if _, err := fmt.Fprint(w, "</details>\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func (l *Line) markdown() string {
	title := l.Title
	if l.URL != "" {
		title = fmt.Sprintf("[%s](%s)", title, l.URL)
	}
	if l.New {
		return fmt.Sprintf("- %s  \n  _New entry_\n", title)
	}
	return fmt.Sprintf("- %s  \n  _Updated %s_\n", title, joinLabels(l.Changed))
}

// joinLabels joins classifier labels with an "and" before the last when
// exactly two, commas when more.
func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	if len(labels) == 1 {
		return labels[0]
	}

	joined := append([]string(nil), labels...)
	joined[len(joined)-1] = "and " + joined[len(joined)-1]
	if len(joined) == 2 {
		return strings.Join(joined, " ")
	}
	return strings.Join(joined, ", ")
}

// YAML renders the report as YAML for machine consumers.
func (r *Report) YAML(w io.Writer) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
