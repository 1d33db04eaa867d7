// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lift

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kortschak/liftgff/align"
)

// Disposition is the fate of a GFF3 line.
type Disposition int

const (
	Undecided Disposition = iota
	Header
	SequenceRegion
	Keep
	SequenceRemoved
	PositionRemoved
)

func (d Disposition) String() string {
	switch d {
	case Undecided:
		return "undecided"
	case Header:
		return "header"
	case SequenceRegion:
		return "sequence-region"
	case Keep:
		return "keep"
	case SequenceRemoved:
		return "sequence-removed"
	case PositionRemoved:
		return "position-removed"
	default:
		return fmt.Sprintf("Disposition(%d)", int(d))
	}
}

// Removed returns whether d is a removal.
func (d Disposition) Removed() bool {
	return d == SequenceRemoved || d == PositionRemoved
}

// Conversion is a feature line rewritten onto a new sequence.
type Conversion struct {
	NewID string
	Text  string
}

// Result is the classification of the lines of a GFF3 file.
type Result struct {
	// Tree is the hierarchy used for the classification.
	Tree *Tree

	// Lines is the text of each line up to any ##FASTA directive.
	Lines []string
	// Disposition is the fate of each line.
	Disposition []Disposition
	// Converted holds the rewritten text of kept features.
	Converted map[int]Conversion
}

// Classify reads the GFF3 data in r, which must be the data t was built from,
// and decides the disposition of each line using the alignments in idx.
//
// A feature on a sequence absent from idx is removed along with its group as
// SequenceRemoved. A feature whose start or end is not covered by exactly one
// alignment block is removed along with its group as PositionRemoved.
// Removal of a group overrides features of the group that were already kept.
func Classify(r io.Reader, t *Tree, idx *align.Index) (*Result, error) {
	res := &Result{
		Tree:        t,
		Disposition: make([]Disposition, t.Len()),
		Converted:   make(map[int]Conversion),
	}
	err := lines(r, func(n, line int, text string) (bool, error) {
		if n == t.FASTA {
			return true, nil
		}
		if n >= t.Len() {
			return false, fmt.Errorf("line %d not in feature tree", line)
		}
		res.Lines = append(res.Lines, text)

		if isComment(text) {
			if strings.HasPrefix(strings.TrimSpace(text), regionDirective) {
				res.Disposition[n] = SequenceRegion
			} else {
				res.Disposition[n] = Header
			}
			return false, nil
		}

		if d := res.Disposition[n]; d != Undecided && d != Keep {
			return false, nil
		}
		f := strings.Split(text, "\t")
		if len(f) < numFields {
			return false, &FeatureError{Line: line, Text: text, Err: fmt.Errorf("%d fields", len(f))}
		}
		if !idx.Has(f[seqIDField]) {
			res.remove(n, SequenceRemoved)
			return false, nil
		}
		start, err := strconv.Atoi(strings.TrimSpace(f[startField]))
		if err != nil {
			return false, &FeatureError{Line: line, Text: text, Err: err}
		}
		end, err := strconv.Atoi(strings.TrimSpace(f[endField]))
		if err != nil {
			return false, &FeatureError{Line: line, Text: text, Err: err}
		}
		m, ok := idx.Map(f[seqIDField], start, end)
		if !ok {
			res.remove(n, PositionRemoved)
			return false, nil
		}
		f[seqIDField] = m.NewID
		f[startField] = strconv.Itoa(m.Start)
		f[endField] = strconv.Itoa(m.End)
		res.Disposition[n] = Keep
		res.Converted[n] = Conversion{NewID: m.NewID, Text: strings.Join(f, "\t")}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// remove marks every line in the group of line n with d.
func (r *Result) remove(n int, d Disposition) {
	for _, l := range r.Tree.Group(n) {
		r.Disposition[l] = d
	}
}

// Counts holds the number of features written by Emit.
type Counts struct {
	Updated int
	Removed int
}

// Emit writes the result in file order. Kept features are written to updated
// in their converted form, each new sequence being introduced by its region
// directive from regions before its first feature. Header lines are written
// verbatim to updated and removed features are written verbatim to removed.
// Input sequence-region directives are not written.
func (r *Result) Emit(updated, removed io.Writer, regions map[string]align.Region) (Counts, error) {
	uw := bufio.NewWriter(updated)
	rw := bufio.NewWriter(removed)

	var c Counts
	seen := make(map[string]bool)
	for n, text := range r.Lines {
		switch d := r.Disposition[n]; d {
		case Keep:
			conv := r.Converted[n]
			if !seen[conv.NewID] {
				reg, ok := regions[conv.NewID]
				if !ok {
					return c, fmt.Errorf("no sequence region for %q", conv.NewID)
				}
				fmt.Fprintln(uw, reg)
				seen[conv.NewID] = true
			}
			uw.WriteString(conv.Text)
			uw.WriteByte('\n')
			c.Updated++
		case Header:
			uw.WriteString(text)
			uw.WriteByte('\n')
		case SequenceRemoved, PositionRemoved:
			rw.WriteString(text)
			rw.WriteByte('\n')
			c.Removed++
		case SequenceRegion:
			// Replaced by directives derived from the alignments.
		default:
			return c, fmt.Errorf("unclassified line %d: %v", n, d)
		}
	}
	err := uw.Flush()
	if err != nil {
		return c, err
	}
	return c, rw.Flush()
}
