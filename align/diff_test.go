// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"path/filepath"
	"testing"
)

func TestFastaDiffBuildCommand(t *testing.T) {
	_, err := FastaDiff{New: "new.fa"}.BuildCommand()
	if err == nil {
		t.Error("expected error for missing old file")
	}
	_, err = FastaDiff{Old: "old.fa"}.BuildCommand()
	if err == nil {
		t.Error("expected error for missing new file")
	}

	cmd, err := FastaDiff{Old: "old.fa", New: "new.fa"}.BuildCommand()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmd.Args) == 0 || filepath.Base(cmd.Args[0]) != "fasta_diff.py" {
		t.Errorf("unexpected command: %q", cmd.Args)
	}
	var old, new bool
	for _, a := range cmd.Args[1:] {
		old = old || a == "old.fa"
		new = new || a == "new.fa"
	}
	if !old || !new {
		t.Errorf("missing sequence file arguments: %q", cmd.Args)
	}
}
