package sources

import (
	"context"
	"os"

	"github.com/bibsync/bibsync/pkg/bibtex"
	"github.com/bibsync/bibsync/pkg/errors"
	"github.com/bibsync/bibsync/pkg/logging"
)

// FileSource reads a document from a local file.
type FileSource struct {
	path string
}

// NewFile creates a source backed by the file at path.
func NewFile(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.path
}

// Document reads and parses the file.
func (s *FileSource) Document(ctx context.Context) (*bibtex.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}

	doc, err := bibtex.Parse(string(data))
	if err != nil {
		return nil, errors.WrapParse("bibtex", s.path, err)
	}

	logging.Debug().
		Str("file", s.path).
		Int("blocks", len(doc.Blocks)).
		Msg("parsed document")
	return doc, nil
}
