package dict

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parse reads a dictionary into a Document. Line endings are unified,
// whitespace runs (tab, U+3000, U+00A0 included) collapse to a single space,
// blank lines are dropped and comment lines are collected in order.
func Parse(b []byte) (*Document, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrInvalid)
	}
	b = bytes.TrimPrefix(b, []byte("\ufeff"))
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	s = strings.NewReplacer("\r", "\n", "\f", "\n").Replace(s)

	d := &Document{}
	if s == "" {
		return d, nil
	}
	raw := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	d.Lines = len(raw)
	pragmaSeen := false
	for _, line := range raw {
		line = normalizeLine(line)
		if line == "" {
			d.Blank++
			continue
		}
		if strings.HasPrefix(line, "#") {
			if line == PragmaHeader {
				if pragmaSeen {
					continue
				}
				pragmaSeen = true
			}
			d.Comments = append(d.Comments, line)
			continue
		}
		d.Entries = append(d.Entries, newEntry(line))
	}
	if pragmaSeen && d.Comments[0] != PragmaHeader {
		d.Comments = movePragmaFirst(d.Comments)
	}
	return d, nil
}

func normalizeLine(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	lastSpace := false
	for _, r := range line {
		if isBlankRune(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.Trim(b.String(), " ")
}

func isBlankRune(r rune) bool {
	switch r {
	case ' ', '\t', '\v', '\u3000', '\u00a0':
		return true
	}
	return false
}

func movePragmaFirst(comments []string) []string {
	out := make([]string, 0, len(comments))
	out = append(out, PragmaHeader)
	for _, c := range comments {
		if c != PragmaHeader {
			out = append(out, c)
		}
	}
	return out
}

// Render serializes the document with one line per comment or entry and a
// trailing newline. An empty document renders as no bytes.
func Render(d *Document) []byte {
	if d == nil || (len(d.Comments) == 0 && len(d.Entries) == 0) {
		return nil
	}
	var buf bytes.Buffer
	for _, c := range d.Comments {
		buf.WriteString(c)
		buf.WriteByte('\n')
	}
	for _, e := range d.Entries {
		buf.WriteString(e.Line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
