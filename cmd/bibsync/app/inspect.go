package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibsync/bibsync/internal/sources"
	"github.com/bibsync/bibsync/pkg/bibtex"
)

// newInspectCommand creates the inspect command, a parser exerciser that
// reports what bibsync sees in a document.
func (a *App) newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.bib>",
		Short: "Parse a bibliography and print block statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := sources.NewFile(args[0]).Document(cmd.Context())
			if err != nil {
				return err
			}

			var entries, comments, blanks, fields int
			for _, block := range doc.Blocks {
				switch block.Kind {
				case bibtex.BlockEntry:
					entries++
					if block.Entry.Fields != nil {
						fields += block.Entry.Fields.Len()
					}
				case bibtex.BlockComment:
					comments++
				case bibtex.BlockBlank:
					blanks++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", args[0])
			fmt.Fprintf(out, "  entries:  %d\n", entries)
			fmt.Fprintf(out, "  fields:   %d\n", fields)
			fmt.Fprintf(out, "  comments: %d\n", comments)
			fmt.Fprintf(out, "  blanks:   %d\n", blanks)
			return nil
		},
	}
}
