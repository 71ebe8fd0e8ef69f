package dict

import (
	"errors"
	"math"
	"sort"
	"strconv"
)

// Sort orders the entries in place and returns how many duplicates were
// removed. Ordering is stable; ties on the key fall back to the whole line.
func (d *Document) Sort(opts Options) int {
	entries := d.Entries
	less := func(a, b Entry) bool {
		ka, kb := a.Key(opts.KeyField), b.Key(opts.KeyField)
		if opts.Numeric {
			na, nb := parseNumber(ka), parseNumber(kb)
			if na != nb {
				return na < nb
			}
		} else if ka != kb {
			return ka < kb
		}
		return a.Line < b.Line
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if opts.Reverse {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})

	removed := 0
	if opts.Unique {
		entries, removed = dedupeEntries(entries)
	}
	d.Entries = entries
	if opts.Pragma && !d.HasPragma() {
		d.Comments = append([]string{PragmaHeader}, d.Comments...)
	}
	return removed
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	// Out-of-range keys come back as ±Inf and keep their place at the ends.
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(f) {
		return 0
	}
	return f
}

// dedupeEntries drops exact duplicates from a sorted slice.
func dedupeEntries(in []Entry) ([]Entry, int) {
	seen := map[string]bool{}
	out := in[:0]
	for _, e := range in {
		if seen[e.Line] {
			continue
		}
		seen[e.Line] = true
		out = append(out, e)
	}
	return out, len(in) - len(out)
}
