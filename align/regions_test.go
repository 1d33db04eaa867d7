// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/fai"
)

func TestCheckRegions(t *testing.T) {
	regions := map[string]Region{
		"a": {ID: "a", Start: 1, End: 100},
		"b": {ID: "b", Start: 1, End: 200},
		"c": {ID: "c", Start: 5, End: 10},
	}
	lengths := fai.Index{
		"a": {Name: "a", Length: 100},
		"b": {Name: "b", Length: 150},
	}
	errs := CheckRegions(regions, lengths)
	if len(errs) != 2 {
		t.Fatalf("unexpected number of errors: got:%d want:2 %v", len(errs), errs)
	}
	want := []string{
		"region b extends past end of sequence: 200 > 150",
		`sequence "c" not found in new assembly`,
	}
	for i, err := range errs {
		if err.Error() != want[i] {
			t.Errorf("unexpected error %d: got:%q want:%q", i, err, want[i])
		}
	}
}

func TestReadLengths(t *testing.T) {
	dir, err := ioutil.TempDir("", "align-test-*")
	if err != nil {
		t.Fatalf("failed to make temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "new.fa")
	err = ioutil.WriteFile(path, []byte(">a\nACGTACGTAC\nGT\n>b\nACGT\n"), 0o664)
	if err != nil {
		t.Fatalf("failed to write fasta: %v", err)
	}
	idx, err := ReadLengths(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, want := range map[string]int{"a": 12, "b": 4} {
		if got := idx[name].Length; got != want {
			t.Errorf("unexpected length for %s: got:%d want:%d", name, got, want)
		}
	}
}
