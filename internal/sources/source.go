// Package sources defines the boundary between the merge core and
// whatever produced a document. The core requires a well-formed document
// and places no constraint on how it was produced; site-specific
// collectors live upstream of this interface.
package sources

import (
	"context"

	"github.com/bibsync/bibsync/pkg/bibtex"
)

// Source provides one parsed bibliographic document.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Document parses and returns the document.
	Document(ctx context.Context) (*bibtex.Document, error)
}
