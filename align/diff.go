// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/biogo/external"
)

// FastaDiff is the program that compares two assemblies and writes the
// alignment table consumed by Read on its standard output.
type FastaDiff struct {
	// Usage: fasta_diff.py <old.fa> <new.fa>
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}fasta_diff.py{{end}}"` // fasta_diff.py

	Old string `buildarg:"{{.}}"` // <old.fa>
	New string `buildarg:"{{.}}"` // <new.fa>

	// ExtraFlags will be passed through to fasta_diff as flags.
	ExtraFlags string
}

func (d FastaDiff) BuildCommand() (*exec.Cmd, error) {
	if d.Old == "" {
		return nil, errors.New("fasta_diff: missing old sequence file")
	}
	if d.New == "" {
		return nil, errors.New("fasta_diff: missing new sequence file")
	}
	var extra []string
	if d.ExtraFlags != "" {
		extra = strings.Split(d.ExtraFlags, " ")
	}
	cl := external.Must(external.Build(d))
	return exec.Command(cl[0], append(cl[1:], extra...)...), nil
}
