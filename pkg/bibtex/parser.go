package bibtex

import (
	"fmt"
	"strings"

	"github.com/bibsync/bibsync/pkg/errors"
	"github.com/bibsync/bibsync/pkg/logging"
)

// Parse converts raw document text into its ordered block sequence. The
// concatenation of all block raw spans reconstructs the input exactly for
// well-formed documents. A syntax error local to one entry drops that
// entry and resumes at the next `@` directive; an @string or @preamble
// directive fails the whole parse with ErrNotImplemented since the
// grammar subset in use does not exercise macro expansion.
func Parse(text string) (*Document, error) {
	p := &parser{src: text}
	doc := &Document{}

	for {
		start := p.pos
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			doc.Blocks = append(doc.Blocks, &Block{Kind: BlockBlank, Raw: p.src[start:]})
			return doc, nil
		}
		p.pos += at
		doc.Blocks = append(doc.Blocks, &Block{Kind: BlockBlank, Raw: p.src[start:p.pos]})

		cmdStart := p.pos
		p.pos++ // consume '@'

		block, err := p.parseCommand(cmdStart)
		if err != nil {
			if errors.Is(err, errors.ErrNotImplemented) {
				return nil, err
			}
			// Local syntax error: drop the entry and resync at the
			// next directive marker.
			logging.Warn().
				Int("offset", p.pos).
				Int("line", p.line(p.pos)).
				Err(err).
				Msg("skipping malformed entry")
			continue
		}
		doc.Blocks = append(doc.Blocks, block)
	}
}

type parser struct {
	src string
	pos int
}

// syntaxError marks a recoverable error inside a single directive.
type syntaxError struct {
	offset int
	msg    string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.offset, e.msg)
}

func (p *parser) errorf(format string, args ...any) error {
	return &syntaxError{offset: p.pos, msg: fmt.Sprintf(format, args...)}
}

func (p *parser) line(offset int) int {
	if offset > len(p.src) {
		offset = len(p.src)
	}
	return strings.Count(p.src[:offset], "\n") + 1
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

// parseCommand parses one directive starting at the `@` at cmdStart; the
// leading `@` has already been consumed.
func (p *parser) parseCommand(cmdStart int) (*Block, error) {
	name := p.scanName()
	if name == "" {
		return nil, p.errorf("expected directive name after '@'")
	}

	p.skipSpace()
	var bodyEnd byte
	switch p.peek() {
	case '{':
		bodyEnd = '}'
	case '(':
		bodyEnd = ')'
	default:
		return nil, p.errorf("expected '{' or '(' after @%s", name)
	}
	p.pos++

	switch strings.ToLower(name) {
	case "comment":
		if err := p.skipBalanced(bodyEnd); err != nil {
			return nil, err
		}
		return &Block{Kind: BlockComment, Raw: p.src[cmdStart:p.pos]}, nil
	case "string", "preamble":
		return nil, errors.NewParseError("bibtex", "",
			fmt.Sprintf("@%s directives are not supported", name), errors.ErrNotImplemented)
	}

	entry, err := p.parseEntryBody(name, bodyEnd)
	if err != nil {
		return nil, err
	}
	entry.Raw = p.src[cmdStart:p.pos]
	return &Block{Kind: BlockEntry, Raw: entry.Raw, Entry: entry}, nil
}

// skipBalanced consumes body text up to and including the closing
// delimiter, tracking nested braces.
func (p *parser) skipBalanced(bodyEnd byte) error {
	depth := 0
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == bodyEnd && depth == 0:
			p.pos++
			return nil
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth < 0 {
				return p.errorf("unbalanced '}'")
			}
		}
		p.pos++
	}
	return p.errorf("unterminated body, expected %q", string(bodyEnd))
}

func (p *parser) parseEntryBody(entryType string, bodyEnd byte) (*Entry, error) {
	key, err := p.scanEntryKey(bodyEnd)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Type:   entryType,
		ID:     key,
		Fields: NewFieldMap(),
		New:    true,
	}

	for {
		fieldStart := p.pos

		name := p.scanFieldName()
		var value string
		haveValue := false
		if name != "" {
			p.skipSpace()
			if p.peek() != '=' {
				return nil, p.errorf("expected '=' after field name %q", name)
			}
			p.pos++
			value, err = p.parseValue(bodyEnd)
			if err != nil {
				return nil, err
			}
			haveValue = true
		}

		p.skipSpace()
		comma := false
		if p.peek() == ',' {
			p.pos++
			comma = true
		}

		if name != "" && haveValue {
			entry.Fields.Set(strings.ToLower(name), &Field{
				Name:  name,
				Value: value,
				Raw:   p.src[fieldStart:p.pos],
			})
		}

		if !comma {
			break
		}
	}

	p.skipSpace()
	if p.peek() != bodyEnd {
		return nil, p.errorf("expected %q to close entry %q", string(bodyEnd), key)
	}
	p.pos++
	return entry, nil
}

// parseValue parses one field value: `#`-separated parts, each a braced
// string, a quoted string, a number, or a bare name. Parts are flattened
// into a single normalized value joined on JoinMarker.
func (p *parser) parseValue(bodyEnd byte) (string, error) {
	var parts []string
	for {
		part, err := p.parseValuePart(bodyEnd)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)

		p.skipSpace()
		if p.peek() != '#' {
			break
		}
		p.pos++
	}
	return strings.Join(parts, JoinMarker), nil
}

func (p *parser) parseValuePart(bodyEnd byte) (string, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '{':
		p.pos++
		return p.scanString('}', true)
	case c == '"':
		p.pos++
		return p.scanString('"', false)
	case isDigit(c):
		start := p.pos
		for !p.eof() && isDigit(p.src[p.pos]) {
			p.pos++
		}
		return p.src[start:p.pos], nil
	case isNameByte(c):
		// Bare macro name; kept verbatim, never expanded.
		return p.scanName(), nil
	default:
		return "", p.errorf("expected field value")
	}
}

// scanString consumes text until the end delimiter at brace depth zero,
// keeping nested braces in the returned text. The delimiter is consumed
// but not returned.
func (p *parser) scanString(end byte, braced bool) (string, error) {
	start := p.pos
	depth := 0
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == end && depth == 0:
			s := p.src[start:p.pos]
			p.pos++
			return s, nil
		case c == '{':
			depth++
		case c == '}':
			if braced {
				depth--
			} else if depth > 0 {
				depth--
			} else {
				return "", p.errorf("unbalanced '}' in value")
			}
		}
		p.pos++
	}
	return "", p.errorf("unterminated value, expected %q", string(end))
}

func (p *parser) scanName() string {
	p.skipSpace()
	start := p.pos
	for !p.eof() && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// scanFieldName is scanName restricted to names that do not start with a
// digit, so numeric values are never mistaken for field names.
func (p *parser) scanFieldName() string {
	p.skipSpace()
	if isDigit(p.peek()) {
		return ""
	}
	return p.scanName()
}

func (p *parser) scanEntryKey(bodyEnd byte) (string, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if isSpace(c) || c == ',' || c == bodyEnd {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected entry key")
	}
	return p.src[start:p.pos], nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isNameByte follows the BibTeX name charset: anything but whitespace and
// the structural punctuation.
func isNameByte(c byte) bool {
	if isSpace(c) {
		return false
	}
	switch c {
	case '"', '#', '%', '\'', '(', ')', ',', '=', '{', '}', '@':
		return false
	}
	return true
}
