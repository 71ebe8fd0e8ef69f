// Package dict reads, normalizes, sorts and rewrites line-oriented dictionary
// files such as IME phrase and lexicon tables.
package dict

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalid   = errors.New("invalid")
	ErrOutOfDate = errors.New("out of date")
	timeNow      = func() time.Time { return time.Now().UTC() }
)

// PragmaHeader marks a dictionary file that has already been formatted.
const PragmaHeader = "# 𝙵𝙾𝚁𝙼𝙰𝚃 𝚘𝚛𝚐.𝚊𝚝𝚎𝚕𝚒𝚎𝚛𝙸𝚗𝚖𝚞.𝚟𝚌𝚑𝚎𝚠𝚒𝚗𝚐.𝚞𝚜𝚎𝚛𝙻𝚊𝚗𝚐𝚞𝚊𝚐𝚎𝙼𝚘𝚍𝚎𝚕𝙳𝚊𝚝𝚊.𝚏𝚘𝚛𝚖𝚊𝚝𝚝𝚎𝚍"

// OutOfDateError is returned in check mode when the sorted document differs
// from what is on disk. It satisfies errors.Is(err, ErrOutOfDate).
type OutOfDateError struct {
	Path string
}

func (e *OutOfDateError) Error() string {
	if e == nil || strings.TrimSpace(e.Path) == "" {
		return "out of date"
	}
	return e.Path + " is not sorted"
}

func (e *OutOfDateError) Is(target error) bool {
	return target == ErrOutOfDate
}

type Options struct {
	KeyField    int  `json:"key_field"` // 1-based; 0 sorts by the whole line
	Numeric     bool `json:"numeric"`
	Reverse     bool `json:"reverse"`
	Unique      bool `json:"unique"`
	Pragma      bool `json:"pragma"`
	TrustPragma bool `json:"trust_pragma"`
	Check       bool `json:"check"`
}

func (o Options) Validate() error {
	if o.KeyField < 0 {
		return fmt.Errorf("%w: key field must be >= 0, got %d", ErrInvalid, o.KeyField)
	}
	return nil
}

// Entry is one normalized, non-comment dictionary line.
type Entry struct {
	Line   string
	Fields []string
}

func newEntry(line string) Entry {
	return Entry{Line: line, Fields: strings.Split(line, " ")}
}

// Key returns the sort key for a 1-based field, or the whole line for 0.
// Missing fields yield the empty string.
func (e Entry) Key(field int) string {
	if field <= 0 {
		return e.Line
	}
	if field > len(e.Fields) {
		return ""
	}
	return e.Fields[field-1]
}

// Document is a parsed dictionary: comment lines first, then entries.
type Document struct {
	Comments []string
	Entries  []Entry
	Lines    int
	Blank    int
}

func (d *Document) HasPragma() bool {
	return len(d.Comments) > 0 && d.Comments[0] == PragmaHeader
}

type Report struct {
	ID         string `json:"id"`
	Input      string `json:"input"`
	Output     string `json:"output"`
	Lines      int    `json:"lines"`
	Entries    int    `json:"entries"`
	Comments   int    `json:"comments"`
	Blank      int    `json:"blank"`
	Duplicates int    `json:"duplicates"`
	Changed    bool   `json:"changed"`
	Skipped    bool   `json:"skipped"`
	Checked    bool   `json:"checked"`
}

func (r *Report) Summary() string {
	if r == nil {
		return ""
	}
	switch {
	case r.Skipped:
		return fmt.Sprintf("%s: already formatted, skipped", r.Output)
	case r.Checked && r.Changed:
		return fmt.Sprintf("%s: not sorted (%d entries)", r.Input, r.Entries)
	case r.Checked:
		return fmt.Sprintf("%s: sorted (%d entries)", r.Input, r.Entries)
	case !r.Changed:
		return fmt.Sprintf("%s: unchanged (%d entries)", r.Output, r.Entries)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: wrote %d entries", r.Output, r.Entries)
	if r.Duplicates > 0 {
		fmt.Fprintf(&b, ", removed %d duplicates", r.Duplicates)
	}
	return b.String()
}
