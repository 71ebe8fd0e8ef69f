package dict

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amirbrooks/dictsort/internal/ctxlog"
)

// Sorter sorts dictionary files with a fixed set of options.
type Sorter struct {
	opts Options
}

func NewSorter(opts Options) (*Sorter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Sorter{opts: opts}, nil
}

// SortItems reads input, sorts it and writes the result to output. An empty
// output means in place. Output is only rewritten when its content changes.
func (s *Sorter) SortItems(ctx context.Context, input, output string) (*Report, error) {
	log := ctxlog.FromContext(ctx)
	start := timeNow()

	input = ExpandHome(input)
	if output == "" {
		output = input
	} else {
		output = ExpandHome(output)
	}
	r := &Report{ID: newULID(), Input: input, Output: output, Checked: s.opts.Check}
	log = log.With("run", r.ID)

	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, input)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalid, input)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}
	log.Debug("Input read.", "path", input, "bytes", len(data))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inPlace := samePath(input, output)
	if s.opts.TrustPragma && inPlace && firstLine(data) == PragmaHeader {
		log.Debug("Pragma header present, skipping.", "path", input)
		r.Skipped = true
		return r, nil
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	r.Lines = doc.Lines
	r.Blank = doc.Blank
	r.Duplicates = doc.Sort(s.opts)
	r.Entries = len(doc.Entries)
	r.Comments = len(doc.Comments)
	log.Debug("Document sorted.", "entries", r.Entries, "comments", r.Comments, "duplicates", r.Duplicates)

	rendered := Render(doc)
	existing := data
	if !inPlace {
		existing, err = os.ReadFile(output)
		switch {
		case errors.Is(err, os.ErrNotExist):
			existing = nil
			r.Changed = true
		case err != nil:
			return nil, err
		}
	}
	r.Changed = r.Changed || !bytes.Equal(existing, rendered)

	if s.opts.Check {
		if r.Changed {
			return r, &OutOfDateError{Path: output}
		}
		return r, nil
	}
	if !r.Changed {
		log.Debug("Output already up to date.", "path", output)
		return r, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Write through symlinks so the link survives and its target is sorted.
	if err := atomicWriteFile(resolveLink(output), rendered, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("write %s: %w", output, err)
	}
	log.Info("Dictionary sorted.", "input", input, "output", output, "entries", r.Entries, "duration", timeNow().Sub(start))
	return r, nil
}

// SortItems sorts input into output with the given options.
func SortItems(ctx context.Context, input, output string, opts Options) (*Report, error) {
	s, err := NewSorter(opts)
	if err != nil {
		return nil, err
	}
	return s.SortItems(ctx, input, output)
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	aa, errA := filepath.Abs(resolveLink(a))
	bb, errB := filepath.Abs(resolveLink(b))
	if errA != nil || errB != nil {
		return false
	}
	return aa == bb
}

// resolveLink follows symlinks when path exists and returns path unchanged
// otherwise.
func resolveLink(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func firstLine(b []byte) string {
	b = bytes.TrimPrefix(b, []byte("\ufeff"))
	line, _, _ := bytes.Cut(b, []byte("\n"))
	return string(bytes.TrimSuffix(line, []byte("\r")))
}
