// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/biogo/biogo/feat"
	"github.com/biogo/hts/fai"
)

// Region is the extent of a new sequence covered by alignment blocks.
// Start and End are 1-based and closed.
type Region struct {
	ID    string
	Start int
	End   int
}

// String returns the GFF3 sequence-region directive for r.
func (r Region) String() string {
	return fmt.Sprintf("##sequence-region %s %d %d", r.ID, r.Start, r.End)
}

// Regions returns the extent of each new sequence named in the index,
// spanning the smallest and largest coordinate of all blocks mapping to it.
func (idx *Index) Regions() map[string]Region {
	type extent struct{ lo, hi int }
	ext := make(map[string]extent)
	for _, r := range idx.records {
		lo := min(r.NewStart, r.NewEnd)
		hi := max(r.NewStart, r.NewEnd)
		e, ok := ext[r.NewID]
		if ok {
			lo = min(lo, e.lo)
			hi = max(hi, e.hi)
		}
		ext[r.NewID] = extent{lo: lo, hi: hi}
	}
	regions := make(map[string]Region, len(ext))
	for id, e := range ext {
		// Block coordinates are zero-based.
		regions[id] = Region{ID: id, Start: feat.ZeroToOne(e.lo), End: e.hi}
	}
	return regions
}

// ReadLengths returns a FASTA index for the new sequences. If path has a .fai
// extension it is read as a samtools FASTA index, otherwise it is read as a
// FASTA file and indexed.
func ReadLengths(path string) (fai.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if filepath.Ext(path) == ".fai" {
		return fai.ReadFrom(f)
	}
	return fai.NewIndex(f)
}

// CheckRegions returns an error for each region that names a sequence absent
// from lengths or that extends past the end of its sequence. The errors are
// ordered by sequence name.
func CheckRegions(regions map[string]Region, lengths fai.Index) []error {
	ids := make([]string, 0, len(regions))
	for id := range regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		r := regions[id]
		rec, ok := lengths[id]
		if !ok {
			errs = append(errs, fmt.Errorf("sequence %q not found in new assembly", id))
			continue
		}
		if r.End > rec.Length {
			errs = append(errs, fmt.Errorf("region %s extends past end of sequence: %d > %d", id, r.End, rec.Length))
		}
	}
	return errs
}
