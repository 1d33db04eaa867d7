// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lift

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const gff = `##gff-version 3
##sequence-region chr1 1 1000

chr1	.	gene	150	180	.	+	.	ID=g1
chr1	.	mRNA	150	180	.	+	.	ID=m1;Parent=g1
chr1	.	exon	150	160	.	+	.	ID=e1;Parent=m1
chr1	.	gene	90	150	.	+	.	ID=g2
# a comment
chr1	.	exon	170	180	.	+	.	Parent=m1
chr1	.	mRNA	90	150	.	+	.	ID=m2;Parent=g2
chrX	.	gene	10	20	.	-	.	ID=g3
##FASTA
>chr1
ACGT
`

func TestBuild(t *testing.T) {
	tree, err := Build(strings.NewReader(gff))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantRoot := []int{0, 1, 2, 2, 2, 5, 6, 2, 5, 9}
	if !reflect.DeepEqual(tree.Root, wantRoot) {
		t.Errorf("unexpected roots:\ngot: %v\nwant:%v", tree.Root, wantRoot)
	}
	wantParent := []int{-1, -1, -1, 2, 3, -1, -1, 3, 5, -1}
	if !reflect.DeepEqual(tree.Parent, wantParent) {
		t.Errorf("unexpected parents:\ngot: %v\nwant:%v", tree.Parent, wantParent)
	}
	wantMembers := map[int][]int{
		0: {0},
		1: {1},
		2: {2, 3, 4, 7},
		5: {5, 8},
		6: {6},
		9: {9},
	}
	if !reflect.DeepEqual(tree.Members, wantMembers) {
		t.Errorf("unexpected members:\ngot: %v\nwant:%v", tree.Members, wantMembers)
	}
	if tree.Features != 7 {
		t.Errorf("unexpected feature count: got:%d want:7", tree.Features)
	}
	if tree.FASTA != 10 {
		t.Errorf("unexpected FASTA line: got:%d want:10", tree.FASTA)
	}

	// Every line belongs to exactly one group.
	seen := make(map[int]bool)
	for root, members := range tree.Members {
		for _, m := range members {
			if seen[m] {
				t.Errorf("line %d in more than one group", m)
			}
			seen[m] = true
			if tree.Root[m] != root {
				t.Errorf("line %d in group %d but has root %d", m, root, tree.Root[m])
			}
		}
	}
	if len(seen) != tree.Len() {
		t.Errorf("unexpected number of grouped lines: got:%d want:%d", len(seen), tree.Len())
	}
}

func TestBuildNoFASTA(t *testing.T) {
	tree, err := Build(strings.NewReader("chr1\t.\tgene\t1\t2\t.\t+\t.\tID=a\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.FASTA != -1 {
		t.Errorf("unexpected FASTA line: got:%d want:-1", tree.FASTA)
	}
	if tree.Len() != 1 {
		t.Errorf("unexpected tree length: got:%d want:1", tree.Len())
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		in     string
		line   int
		parent string
	}{
		{
			in:     "chr1\t.\tgene\t1\t2\t.\t+\t.\tID=a\n\nchr1\t.\tmRNA\t1\t2\t.\t+\t.\tID=b;Parent=c\n",
			line:   3,
			parent: "c",
		},
		{
			// Children must follow their parents.
			in:     "chr1\t.\tmRNA\t1\t2\t.\t+\t.\tID=b;Parent=a\nchr1\t.\tgene\t1\t2\t.\t+\t.\tID=a\n",
			line:   1,
			parent: "a",
		},
		{
			in:     "chr1\t.\tgene\t1\t2\t.\t+\t.\tID=a;Parent=a\n",
			line:   1,
			parent: "a",
		},
		{
			// Multiple parents are not split.
			in:     "chr1\t.\tgene\t1\t2\t.\t+\t.\tID=a\nchr1\t.\tgene\t1\t2\t.\t+\t.\tID=b\nchr1\t.\texon\t1\t2\t.\t+\t.\tParent=a,b\n",
			line:   3,
			parent: "a,b",
		},
	}
	for i, test := range tests {
		_, err := Build(strings.NewReader(test.in))
		var herr *HierarchyError
		if !errors.As(err, &herr) {
			t.Errorf("expected HierarchyError for test %d: got:%v", i, err)
			continue
		}
		if herr.Line != test.line || herr.Parent != test.parent {
			t.Errorf("unexpected error for test %d: got:%+v want:{Line:%d Parent:%s}",
				i, *herr, test.line, test.parent)
		}
	}

	_, err := Build(strings.NewReader("chr1\t.\tgene\t1\t2\n"))
	var ferr *FeatureError
	if !errors.As(err, &ferr) {
		t.Errorf("expected FeatureError for short line: got:%v", err)
	}
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]string
	}{
		{in: "ID=g1", want: map[string]string{"ID": "g1"}},
		{in: "ID=g1;Parent=p1;Name=x y", want: map[string]string{"ID": "g1", "Parent": "p1", "Name": "x y"}},
		{in: "ID=a;ID=b", want: map[string]string{"ID": "b"}},
		{in: ".", want: map[string]string{}},
		{in: "ID=g1;", want: map[string]string{"ID": "g1"}},
	}
	for _, test := range tests {
		got := attributes(test.in)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("unexpected attributes for %q: got:%v want:%v", test.in, got, test.want)
		}
	}
}
