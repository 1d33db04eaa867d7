// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package align provides types and functions for reading the alignment blocks
// written by fasta_diff and mapping annotation coordinates through them.
//
// An alignment block records a region of an old sequence that is unchanged in
// a new sequence, other than by offset and possibly by sequence name. Block
// coordinates are zero-based and half-open.
package align

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/biogo/feat"
	"github.com/biogo/store/interval"
)

// Record is a single alignment block.
type Record struct {
	OldID    string
	OldStart int
	OldEnd   int
	NewID    string
	NewStart int
	NewEnd   int
}

var (
	// ErrFieldCount is returned when an alignment line does not have six fields.
	ErrFieldCount = errors.New("unexpected number of fields")

	// ErrInvertedRecord is returned when an alignment block ends before it starts.
	ErrInvertedRecord = errors.New("inverted alignment block")
)

// RecordError is the error returned for a malformed alignment line.
type RecordError struct {
	// Line is the 1-based line number of the record.
	Line int
	Text string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("malformed alignment record at line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Index is a set of alignment blocks indexed by old sequence name.
// An Index is not mutated after it is returned by Read and so may be
// shared between goroutines.
type Index struct {
	records []Record
	blocks  map[string]*interval.IntTree
}

// ReadFile reads an alignment table from the named file.
func ReadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	idx, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read alignments from %s: %w", path, err)
	}
	return idx, nil
}

// Read reads an alignment table from r. The table has no header and each
// line holds the six tab-separated fields old_id, old_start, old_end, new_id,
// new_start and new_end. Lines holding only white space are ignored. r is
// read to completion but is not closed.
func Read(r io.Reader) (*Index, error) {
	// column indices for fasta_diff output.
	const (
		oldIDField = iota
		oldStartField
		oldEndField
		newIDField
		newStartField
		newEndField
		numFields
	)

	idx := &Index{blocks: make(map[string]*interval.IntTree)}
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		f := strings.Split(line, "\t")
		if len(f) != numFields {
			return nil, &RecordError{Line: n, Text: line, Err: ErrFieldCount}
		}

		rec := Record{OldID: f[oldIDField], NewID: f[newIDField]}
		for _, c := range []struct {
			dst *int
			src string
		}{
			{dst: &rec.OldStart, src: f[oldStartField]},
			{dst: &rec.OldEnd, src: f[oldEndField]},
			{dst: &rec.NewStart, src: f[newStartField]},
			{dst: &rec.NewEnd, src: f[newEndField]},
		} {
			var err error
			*c.dst, err = strconv.Atoi(strings.TrimSpace(c.src))
			if err != nil {
				return nil, &RecordError{Line: n, Text: line, Err: err}
			}
		}
		if rec.OldEnd < rec.OldStart {
			return nil, &RecordError{Line: n, Text: line, Err: ErrInvertedRecord}
		}

		t, ok := idx.blocks[rec.OldID]
		if !ok {
			t = &interval.IntTree{}
			idx.blocks[rec.OldID] = t
		}
		err := t.Insert(block{uid: uintptr(len(idx.records)), Record: rec}, true)
		if err != nil {
			return nil, &RecordError{Line: n, Text: line, Err: err}
		}
		idx.records = append(idx.records, rec)
	}
	err := sc.Err()
	if err != nil {
		return nil, err
	}
	for _, t := range idx.blocks {
		t.AdjustRanges()
	}
	return idx, nil
}

// Len returns the number of alignment blocks in the index.
func (idx *Index) Len() int { return len(idx.records) }

// Has returns whether the index holds any block on the old sequence id.
func (idx *Index) Has(id string) bool {
	_, ok := idx.blocks[id]
	return ok
}

// Covering returns the blocks on the old sequence id that cover the 1-based
// position p, ordered by old start. A block covers p if OldStart < p <= OldEnd,
// so no block covers a position less than one.
func (idx *Index) Covering(id string, p int) []Record {
	t, ok := idx.blocks[id]
	if !ok || p < 1 {
		return nil
	}
	hits := t.Get(position(p))
	recs := make([]Record, len(hits))
	for i, h := range hits {
		recs[i] = h.(block).Record
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].OldStart < recs[j].OldStart })
	return recs
}

// Mapping is the location of an annotation in the new sequence space.
// Start and End are 1-based and closed.
type Mapping struct {
	NewID string
	Start int
	End   int
}

// Map returns the location in the new sequence space of the 1-based closed
// interval [start, end] on the old sequence id. Each end must be covered by
// exactly one block for the interval to be mapped; otherwise Map returns false.
// The end points may be mapped by different blocks, and the new sequence name
// is taken from the block covering start.
func (idx *Index) Map(id string, start, end int) (Mapping, bool) {
	s := idx.Covering(id, start)
	if len(s) != 1 {
		return Mapping{}, false
	}
	e := idx.Covering(id, end)
	if len(e) != 1 {
		return Mapping{}, false
	}
	return Mapping{
		NewID: s[0].NewID,
		Start: start - s[0].OldStart + s[0].NewStart,
		End:   end - e[0].OldStart + e[0].NewStart,
	}, true
}

// block is an interval.IntInterface wrapping an alignment block
// on its old sequence coordinates.
type block struct {
	uid uintptr
	Record
}

func (b block) Overlap(r interval.IntRange) bool {
	return b.OldStart < r.End && r.Start < b.OldEnd
}
func (b block) ID() uintptr { return b.uid }
func (b block) Range() interval.IntRange {
	return interval.IntRange{Start: b.OldStart, End: b.OldEnd}
}

// position is a 1-based coordinate query. It overlaps a half-open
// zero-based range when the base it names lies within the range.
// A position must be at least one.
type position int

func (p position) Overlap(r interval.IntRange) bool {
	z := feat.OneToZero(int(p))
	return r.Start <= z && z < r.End
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
