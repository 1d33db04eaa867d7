// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lift rewrites GFF3 annotations onto a new assembly using the
// alignment blocks of package align.
//
// A file is processed in three passes. Build reads the parent/child
// hierarchy, Classify decides the fate of every line and Result.Emit writes
// the updated and removed lines. Features whose start and end cannot both
// be mapped are removed together with every feature sharing their root.
package lift

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// column indices for GFF3 feature lines.
const (
	seqIDField = iota
	_          // source
	_          // type
	startField
	endField
	_ // score
	_ // strand
	_ // phase
	attributesField

	numFields
)

const (
	fastaDirective  = "##FASTA"
	regionDirective = "##sequence-region"
)

// HierarchyError is the error returned when a feature names a Parent
// that has not been declared by an earlier feature.
type HierarchyError struct {
	// Line is the 1-based line number in the file.
	Line   int
	Parent string
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("undeclared parent %q at line %d", e.Parent, e.Line)
}

// FeatureError is the error returned for a feature line that cannot be parsed.
type FeatureError struct {
	// Line is the 1-based line number in the file.
	Line int
	Text string
	Err  error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("malformed feature at line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// Tree is the feature hierarchy of a GFF3 file. Lines are identified by their
// zero-based position among the non-blank lines of the file, and comment lines
// are roots of their own single member group.
type Tree struct {
	// Root is the root line of each line.
	Root []int
	// Parent is the parent line of each line, or -1 for a root.
	Parent []int
	// Members holds the lines sharing each root in file order.
	Members map[int][]int

	// Features is the number of feature lines.
	Features int

	// FASTA is the line number of a ##FASTA directive,
	// or -1 if the file has none. Lines from the directive
	// on are not part of the tree.
	FASTA int
}

// Build reads the GFF3 data in r and returns its feature hierarchy. A feature
// with a Parent attribute belongs to the group of the feature declaring the
// matching ID, which must appear earlier in the file.
func Build(r io.Reader) (*Tree, error) {
	t := &Tree{Members: make(map[int][]int), FASTA: -1}
	ids := make(map[string]int)
	err := lines(r, func(n, line int, text string) (bool, error) {
		if isComment(text) {
			if strings.TrimSpace(text) == fastaDirective {
				t.FASTA = n
				return true, nil
			}
			t.add(n, n, -1)
			return false, nil
		}

		f := strings.Split(text, "\t")
		if len(f) < numFields {
			return false, &FeatureError{Line: line, Text: text, Err: fmt.Errorf("%d fields", len(f))}
		}
		attrs := attributes(f[attributesField])
		if id, ok := attrs["ID"]; ok {
			ids[id] = n
		}
		root, parent := n, -1
		if p, ok := attrs["Parent"]; ok {
			pl, ok := ids[p]
			if !ok || pl >= n {
				return false, &HierarchyError{Line: line, Parent: p}
			}
			root, parent = t.Root[pl], pl
		}
		t.add(n, root, parent)
		t.Features++
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) add(n, root, parent int) {
	t.Root = append(t.Root, root)
	t.Parent = append(t.Parent, parent)
	t.Members[root] = append(t.Members[root], n)
}

// Len returns the number of lines in the tree.
func (t *Tree) Len() int { return len(t.Root) }

// Group returns the lines sharing a root with line n.
func (t *Tree) Group(n int) []int { return t.Members[t.Root[n]] }

// attrPair matches key=value pairs in a GFF3 attribute column.
var attrPair = regexp.MustCompile(`([^=;]+)=([^=;\n]+)`)

// attributes returns the key=value pairs in the GFF3 attribute column s.
// Later pairs replace earlier pairs with the same key.
func attributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPair.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}

func isComment(s string) bool { return strings.HasPrefix(s, "#") }

// maxLine is the longest GFF3 line that will be read.
const maxLine = 1 << 24

// lines calls fn for each non-blank line read from r. The number n counts
// non-blank lines from zero and line is the 1-based line number in the input.
// Reading stops when fn returns true or a non-nil error.
func lines(r io.Reader, fn func(n, line int, text string) (stop bool, err error)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLine)
	n := 0
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		stop, err := fn(n, line, text)
		if err != nil || stop {
			return err
		}
		n++
	}
	return sc.Err()
}
