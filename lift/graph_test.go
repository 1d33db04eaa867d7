// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lift

import (
	"strings"
	"testing"
)

func TestGraph(t *testing.T) {
	res := classify(t, gff, mustIndex(t, alignments))
	g := res.Graph()

	if n := g.Nodes().Len(); n != 7 {
		t.Errorf("unexpected number of nodes: got:%d want:7", n)
	}
	for _, e := range [][2]int64{{2, 3}, {3, 4}, {3, 7}, {5, 8}} {
		if !g.HasEdgeFromTo(e[0], e[1]) {
			t.Errorf("missing edge %d->%d", e[0], e[1])
		}
	}
	if g.HasEdgeFromTo(2, 4) {
		t.Error("unexpected edge from root to grandchild")
	}
	if n := g.Edges().Len(); n != 4 {
		t.Errorf("unexpected number of edges: got:%d want:4", n)
	}

	b, err := res.DOT("annot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"digraph annot", "L2", "L8"} {
		if !strings.Contains(string(b), want) {
			t.Errorf("DOT output missing %q:\n%s", want, b)
		}
	}
}

func TestGraphName(t *testing.T) {
	for in, want := range map[string]string{
		"annot.gff": "annot_gff",
		"1.gff":     "_1_gff",
		"a-b c":     "a_b_c",
	} {
		if got := graphName(in); got != want {
			t.Errorf("unexpected graph name for %q: got:%q want:%q", in, got, want)
		}
	}
}
