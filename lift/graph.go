// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lift

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph returns the feature hierarchy of r as a directed graph with edges
// from parent to child features. Node IDs are line numbers. Comment lines
// are not included.
func (r *Result) Graph() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for n, text := range r.Lines {
		if isComment(text) {
			continue
		}
		g.AddNode(featureNode{id: int64(n), name: featureName(n, text), disp: r.Disposition[n]})
	}
	for n, p := range r.Tree.Parent {
		if p < 0 || n >= len(r.Lines) {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(int64(p)), g.Node(int64(n))))
	}
	return g
}

// DOT returns a DOT description of the feature hierarchy of r.
func (r *Result) DOT(name string) ([]byte, error) {
	return dot.Marshal(r.Graph(), name, "", "\t")
}

func writeDOTFile(path, name string, r *Result) error {
	b, err := r.DOT(graphName(filepath.Base(name)))
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, b, 0o664)
}

// graphName returns s with all characters that are not
// valid in an unquoted DOT ID replaced by underscores
// and a leading underscore if it starts with a digit.
func graphName(s string) string {
	if s != "" && '0' <= s[0] && s[0] <= '9' {
		s = "_" + s
	}
	return strings.Map(func(r rune) rune {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			return r
		}
		return '_'
	}, s)
}

// featureName returns the ID attribute of a feature line,
// or a name derived from n if it has none.
func featureName(n int, text string) string {
	f := strings.Split(text, "\t")
	if len(f) > attributesField {
		if id, ok := attributes(f[attributesField])["ID"]; ok {
			return id
		}
	}
	return fmt.Sprintf("line %d", n)
}

type featureNode struct {
	id   int64
	name string
	disp Disposition
}

func (n featureNode) ID() int64     { return n.id }
func (n featureNode) DOTID() string { return fmt.Sprintf("L%d", n.id) }
func (n featureNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{
		{Key: "label", Value: strconv.Quote(n.name)},
		{Key: "tooltip", Value: strconv.Quote(n.disp.String())},
	}
	if n.disp.Removed() {
		attrs = append(attrs, encoding.Attribute{Key: "style", Value: "dashed"})
	}
	return attrs
}

var _ graph.Node = featureNode{}
